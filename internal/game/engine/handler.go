package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mverett/driftmark/internal/game/diagnostics"
	"github.com/mverett/driftmark/internal/game/domain/aggregate"
	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/journal"
	"github.com/mverett/driftmark/internal/game/domain/narrative"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/replay"
	"github.com/mverett/driftmark/internal/game/domain/run"
	apperrors "github.com/mverett/driftmark/internal/platform/errors"
	"github.com/mverett/driftmark/internal/platform/id"
)

var (
	// ErrCommandRegistryRequired indicates a missing command registry.
	ErrCommandRegistryRequired = errors.New("command registry is required")
	// ErrEventRegistryRequired indicates a missing event registry.
	ErrEventRegistryRequired = errors.New("event registry is required")
	// ErrJournalRequired indicates a missing journal.
	ErrJournalRequired = errors.New("journal is required")
	// ErrContentRequired indicates missing content lookups.
	ErrContentRequired = errors.New("content lookups are required")
)

const (
	rejectionCodePhaseNotAllowed = string(apperrors.CodeCommandPhaseNotAllowed)
	rejectionCodeRunEnded        = string(apperrors.CodeRunEnded)
	rejectionCodeUnrouted        = string(apperrors.CodeCommandUnrouted)
)

// Content is the read surface the handler needs from loaded content.
type Content interface {
	quest.ContentLookup
	narrative.GraphLookup
}

// Handler executes commands against one journal.
//
// Execution is serialized per session: a command's decision reads a
// projection that must reflect every previously appended event, so two
// commands may never interleave validation and append on the same session.
// Distinct sessions proceed in parallel.
type Handler struct {
	Commands *command.Registry
	Events   *event.Registry
	Journal  journal.EventLog
	Content  Content
	// Checkpoints, when set, advances replay checkpoints after appends.
	Checkpoints replay.CheckpointStore
	// Now supplies decision timestamps; nil means wall clock.
	Now func() time.Time
	// NewRequestID mints correlation ids for trigger requests; nil uses the
	// default id generator.
	NewRequestID func() string
	Logger       *slog.Logger
	// Diagnostics, when set, records rejections and failures.
	Diagnostics *diagnostics.Recorder
	// TracerProvider overrides the global provider; nil uses the global one.
	TracerProvider trace.TracerProvider

	folder aggregate.Folder
	locks  sessionLocks
}

// Result captures execution outcomes.
type Result struct {
	Decision command.Decision
	State    aggregate.State
	// LastSeq is the journal length after any appends.
	LastSeq uint64
}

// Handle validates a command, replays state, decides, and appends accepted
// events. Domain rejections return in the decision with a nil error; an
// error return means infrastructure failure and an unchanged journal.
func (h *Handler) Handle(ctx context.Context, cmd command.Command) (Result, error) {
	if h.Commands == nil {
		return Result{}, ErrCommandRegistryRequired
	}
	if h.Events == nil {
		return Result{}, ErrEventRegistryRequired
	}
	if h.Journal == nil {
		return Result{}, ErrJournalRequired
	}
	if h.Content == nil {
		return Result{}, ErrContentRequired
	}
	validated, err := h.Commands.ValidateForDecision(cmd)
	if err != nil {
		return Result{}, err
	}
	cmd = validated

	ctx, span := h.tracer().Start(ctx, "engine.handle", trace.WithAttributes(
		attribute.String("session.id", cmd.SessionID),
		attribute.String("command.type", string(cmd.Type)),
	))
	defer span.End()

	result, err := h.execute(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return result, err
	}
	if len(result.Decision.Rejections) > 0 {
		span.SetAttributes(attribute.String("rejection.code", result.Decision.Rejections[0].Code))
	} else {
		span.SetAttributes(
			attribute.Int("events.appended", len(result.Decision.Events)),
			attribute.Int64("journal.last_seq", int64(result.LastSeq)),
		)
	}
	return result, nil
}

// execute runs the serialized replay-gate-decide-append cycle for one command.
func (h *Handler) execute(ctx context.Context, cmd command.Command) (Result, error) {
	unlock := h.locks.lock(cmd.SessionID)
	defer unlock()

	replayCtx, replaySpan := h.tracer().Start(ctx, "engine.replay")
	replayed, err := replay.ReplayAll(replayCtx, h.Journal, &h.folder, cmd.SessionID)
	replaySpan.SetAttributes(attribute.Int64("journal.last_seq", int64(replayed.LastSeq)))
	replaySpan.End()
	if err != nil {
		return Result{}, err
	}
	state := replayed.State

	if rejection, ok := h.gate(state, cmd); ok {
		h.log(ctx, cmd, command.Reject(rejection), replayed.LastSeq)
		return Result{Decision: command.Reject(rejection), State: state, LastSeq: replayed.LastSeq}, nil
	}

	decision := h.decide(state, cmd)
	if len(decision.Events) == 0 {
		h.log(ctx, cmd, decision, replayed.LastSeq)
		return Result{Decision: decision, State: state, LastSeq: replayed.LastSeq}, nil
	}

	vetted := make([]event.Event, 0, len(decision.Events))
	for _, evt := range decision.Events {
		validated, err := h.Events.ValidateForAppend(evt)
		if err != nil {
			return Result{}, err
		}
		vetted = append(vetted, validated)
	}
	stored, lastSeq, err := journal.AppendAll(ctx, h.Journal, vetted)
	if err != nil {
		return Result{}, err
	}
	decision.Events = stored

	state, err = replay.FoldEvents(&h.folder, state, replayed.LastSeq, stored)
	if err != nil {
		return Result{}, err
	}
	if h.Checkpoints != nil {
		checkpoint := replay.Checkpoint{SessionID: cmd.SessionID, LastSeq: lastSeq, UpdatedAt: time.Now().UTC()}
		if err := h.Checkpoints.Save(ctx, checkpoint); err != nil {
			return Result{}, err
		}
	}
	if h.Diagnostics != nil && cmd.Type == run.CommandTypeStart {
		// A fresh run starts with empty failure history.
		h.Diagnostics.Reset()
	}
	h.log(ctx, cmd, decision, lastSeq)
	return Result{Decision: decision, State: state, LastSeq: lastSeq}, nil
}

// gate rejects commands whose phase constraints do not match current state.
// run.start is the only command valid before the run exists.
func (h *Handler) gate(state aggregate.State, cmd command.Command) (command.Rejection, bool) {
	def, ok := h.Commands.Definition(cmd.Type)
	if !ok || len(def.Phases) == 0 {
		return command.Rejection{}, false
	}
	if state.Run.Ended {
		return command.Rejection{
			Code:    rejectionCodeRunEnded,
			Message: "run has ended",
		}, true
	}
	for _, phase := range def.Phases {
		if phase == state.Run.Phase {
			return command.Rejection{}, false
		}
	}
	return command.Rejection{
		Code:    rejectionCodePhaseNotAllowed,
		Message: "command not allowed in phase: " + state.Run.Phase,
	}, true
}

// decide routes a validated, gated command to its slice decider.
func (h *Handler) decide(state aggregate.State, cmd command.Command) command.Decision {
	now := h.Now
	if now == nil {
		now = time.Now
	}
	switch cmd.Type {
	case run.CommandTypeStart:
		return run.Decide(state.Run, cmd, now)
	case quest.CommandTypeAccept, quest.CommandTypeSummaryAcknowledge:
		return quest.Decide(questState(state), cmd, h.Content, now)
	case narrative.CommandTypeEnter, narrative.CommandTypeChoose:
		newRequestID := h.NewRequestID
		if newRequestID == nil {
			newRequestID = id.NewID
		}
		env := narrative.Env{
			Graphs: h.Content,
			Counters: narrative.Counters{
				Reputation: state.Reputation.Values,
				Bounty:     state.Bounty.Value,
			},
			CompletedQuests: state.Quest.CompletedCount,
			NewRequestID:    newRequestID,
		}
		return narrative.Decide(state.Narrative, env, cmd, now)
	case battle.CommandTypeResolve:
		return battle.Decide(state.Battle, cmd, now)
	}
	return command.Reject(command.Rejection{
		Code:    rejectionCodeUnrouted,
		Message: "no decider for command type: " + string(cmd.Type),
	})
}

// questState narrows aggregate state to the quest decider's read model.
func questState(state aggregate.State) quest.State {
	return quest.State{
		RunInProgress:    state.Run.InProgress(),
		Phase:            state.Run.Phase,
		ActiveQuestID:    state.Quest.ActiveQuestID,
		ActiveGraphID:    state.Quest.ActiveGraphID,
		CompletedCount:   state.Quest.CompletedCount,
		TotalQuests:      state.Run.TotalQuests,
		SummaryPresented: state.Quest.SummaryPresented,
	}
}

func (h *Handler) tracer() trace.Tracer {
	provider := h.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return provider.Tracer("driftmark/engine")
}

func (h *Handler) log(ctx context.Context, cmd command.Command, decision command.Decision, lastSeq uint64) {
	if len(decision.Rejections) > 0 {
		rejection := decision.Rejections[0]
		if h.Diagnostics != nil {
			h.Diagnostics.RecordRejection(ctx, cmd.SessionID, string(cmd.Type), rejection.Code, rejection.Message)
		}
		if h.Logger != nil {
			h.Logger.InfoContext(ctx, "command rejected",
				"session_id", cmd.SessionID,
				"command", string(cmd.Type),
				"code", rejection.Code,
			)
		}
		return
	}
	if h.Logger == nil {
		return
	}
	h.Logger.InfoContext(ctx, "command accepted",
		"session_id", cmd.SessionID,
		"command", string(cmd.Type),
		"events", len(decision.Events),
		"last_seq", lastSeq,
	)
}
