package driftmark

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mverett/driftmark/internal/game/domain/aggregate"
	"github.com/mverett/driftmark/internal/game/domain/battle"
	"github.com/mverett/driftmark/internal/game/domain/command"
	"github.com/mverett/driftmark/internal/game/domain/narrative"
	"github.com/mverett/driftmark/internal/game/domain/quest"
	"github.com/mverett/driftmark/internal/game/domain/run"
	"github.com/mverett/driftmark/internal/game/engine"
	"github.com/mverett/driftmark/internal/game/projection"
	"github.com/mverett/driftmark/internal/platform/id"
)

func newPlayCmd(cfg *Config, logger *slog.Logger) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a run interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cfg, logger)
			if err != nil {
				return err
			}
			defer d.close()
			if sessionID == "" {
				sessionID = id.NewID()
			}
			session := playSession{
				deps:      d,
				cfg:       cfg,
				sessionID: sessionID,
				in:        bufio.NewScanner(cmd.InOrStdin()),
				out:       cmd.OutOrStdout(),
			}
			return session.loop(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to resume (empty starts a new session)")
	return cmd
}

// playSession drives one interactive run against the handler.
type playSession struct {
	deps      *deps
	cfg       *Config
	sessionID string
	in        *bufio.Scanner
	out       io.Writer
}

func (p *playSession) loop(ctx context.Context) error {
	fmt.Fprintf(p.out, "session %s\n", p.sessionID)
	state, err := p.currentState(ctx)
	if err != nil {
		return err
	}
	if !state.Run.Started {
		payload, _ := json.Marshal(run.StartPayload{TotalQuests: p.cfg.TotalQuests})
		result, err := p.dispatch(ctx, run.CommandTypeStart, payload)
		if err != nil {
			return err
		}
		state = result.State
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch state.Run.Phase {
		case run.PhaseQuestHub:
			state, err = p.questHub(ctx, state)
		case run.PhaseNarrative:
			state, err = p.narrative(ctx, state)
		case run.PhaseBattle:
			state, err = p.battle(ctx, state)
		case run.PhaseQuestSummary:
			state, err = p.questSummary(ctx, state)
		case run.PhaseEnding:
			return p.ending(ctx, state)
		default:
			return fmt.Errorf("unknown phase: %q", state.Run.Phase)
		}
		if err != nil {
			return err
		}
	}
}

func (p *playSession) questHub(ctx context.Context, state aggregate.State) (aggregate.State, error) {
	fmt.Fprintf(p.out, "\n== quest hub (%d/%d complete) ==\n", state.Quest.CompletedCount, state.Run.TotalQuests)
	for _, questID := range p.deps.library.QuestIDs() {
		info, _ := p.deps.library.QuestByID(questID)
		fmt.Fprintf(p.out, "  %s  %s\n", info.QuestID, info.Title)
	}
	questID, ok := p.prompt("accept quest")
	if !ok {
		return state, io.EOF
	}
	payload, _ := json.Marshal(quest.AcceptPayload{QuestID: questID})
	result, err := p.dispatch(ctx, quest.CommandTypeAccept, payload)
	if err != nil {
		return state, err
	}
	if rejected(p.out, result) {
		return state, nil
	}
	return result.State, nil
}

func (p *playSession) narrative(ctx context.Context, state aggregate.State) (aggregate.State, error) {
	if !state.Narrative.Active {
		info, ok := p.deps.library.QuestByID(state.Quest.ActiveQuestID)
		if !ok {
			return state, fmt.Errorf("active quest missing from content: %s", state.Quest.ActiveQuestID)
		}
		payload, _ := json.Marshal(narrative.EnterPayload{
			GraphID: info.GraphID,
			QuestID: info.QuestID,
		})
		result, err := p.dispatch(ctx, narrative.CommandTypeEnter, payload)
		if err != nil {
			return state, err
		}
		if rejected(p.out, result) {
			return state, fmt.Errorf("cannot enter narrative graph: %s", info.GraphID)
		}
		return result.State, nil
	}

	graph, ok := p.deps.library.GraphByID(state.Narrative.GraphID)
	if !ok {
		return state, fmt.Errorf("active graph missing from content: %s", state.Narrative.GraphID)
	}
	node, ok := graph.NodeByID(state.Narrative.CurrentNodeID)
	if !ok {
		return state, fmt.Errorf("current node missing from graph: %s", state.Narrative.CurrentNodeID)
	}
	fmt.Fprintf(p.out, "\n%s\n", node.Content.Text)
	for _, line := range node.Content.Dialogue {
		fmt.Fprintf(p.out, "  %s: %s\n", line.Speaker, line.Line)
	}
	for _, transition := range narrative.EligibleTransitions(node, state.Narrative) {
		if transition.Presentation.Hidden {
			continue
		}
		hint := ""
		if transition.Presentation.PreviewHint != "" {
			hint = "  (" + transition.Presentation.PreviewHint + ")"
		}
		fmt.Fprintf(p.out, "  [%s] %s%s\n", transition.TransitionID, transition.Presentation.Label, hint)
	}
	transitionID, ok := p.prompt("choose")
	if !ok {
		return state, io.EOF
	}
	payload, _ := json.Marshal(narrative.ChoosePayload{TransitionID: transitionID})
	result, err := p.dispatch(ctx, narrative.CommandTypeChoose, payload)
	if err != nil {
		return state, err
	}
	if rejected(p.out, result) {
		return state, nil
	}
	return result.State, nil
}

func (p *playSession) battle(ctx context.Context, state aggregate.State) (aggregate.State, error) {
	fmt.Fprintf(p.out, "\n== battle: %s (difficulty %d) ==\n", state.Battle.OpponentType, state.Battle.Difficulty)
	outcome, ok := p.prompt("outcome (victory/defeat/retreat)")
	if !ok {
		return state, io.EOF
	}
	payload, _ := json.Marshal(battle.ResolvePayload{
		RequestID: state.Battle.RequestID,
		Outcome:   battle.Outcome(outcome),
	})
	result, err := p.dispatch(ctx, battle.CommandTypeResolve, payload)
	if err != nil {
		return state, err
	}
	if rejected(p.out, result) {
		return state, nil
	}
	return result.State, nil
}

func (p *playSession) questSummary(ctx context.Context, state aggregate.State) (aggregate.State, error) {
	events, err := p.deps.store.ListEvents(ctx, p.sessionID, 0, 0)
	if err != nil {
		return state, err
	}
	summary := projection.BuildQuestSummary(events, state.Quest.ActiveQuestID)
	fmt.Fprintf(p.out, "\n== quest summary: %s ==\n", summary.Title)
	for _, change := range summary.ReputationChanges {
		fmt.Fprintf(p.out, "  %s %+d (now %d)\n", change.FactionID, change.Net, change.FinalValue)
	}
	if summary.BountyNet != 0 {
		fmt.Fprintf(p.out, "  bounty %+d\n", summary.BountyNet)
	}
	for _, cardID := range summary.CardsGained {
		fmt.Fprintf(p.out, "  gained card %s\n", cardID)
	}
	for _, cardID := range summary.CardsLost {
		fmt.Fprintf(p.out, "  lost card %s\n", cardID)
	}
	if summary.BattlesFought > 0 {
		fmt.Fprintf(p.out, "  battles %d (won %d, lost %d)\n", summary.BattlesFought, summary.BattlesWon, summary.BattlesLost)
	}
	if _, ok := p.prompt("press enter to continue"); !ok {
		return state, io.EOF
	}
	result, err := p.dispatch(ctx, quest.CommandTypeSummaryAcknowledge, nil)
	if err != nil {
		return state, err
	}
	if rejected(p.out, result) {
		return state, nil
	}
	return result.State, nil
}

func (p *playSession) ending(ctx context.Context, state aggregate.State) error {
	events, err := p.deps.store.ListEvents(ctx, p.sessionID, 0, 0)
	if err != nil {
		return err
	}
	overview := projection.OverviewFromState(state)
	reputationSummary := projection.BuildReputationSummary(events)
	record := projection.BuildBattleRecord(events)

	fmt.Fprintf(p.out, "\n== run complete: %d/%d quests ==\n", overview.CompletedQuests, overview.TotalQuests)
	for _, standing := range reputationSummary.Standings {
		fmt.Fprintf(p.out, "  %s: %d (%s)\n", standing.FactionID, standing.Value, standing.Band)
	}
	fmt.Fprintf(p.out, "  bounty: %d\n", overview.BountyValue)
	if len(overview.Cards) > 0 {
		fmt.Fprintf(p.out, "  cards: %s\n", strings.Join(overview.Cards, ", "))
	}
	if record.Fought > 0 {
		fmt.Fprintf(p.out, "  battles: %d (won %d, lost %d)\n", record.Fought, record.Won, record.Lost)
	}
	return nil
}

func (p *playSession) dispatch(ctx context.Context, commandType command.Type, payload []byte) (engine.Result, error) {
	return p.deps.handler.Handle(ctx, command.Command{
		SessionID:   p.sessionID,
		Type:        commandType,
		ActorType:   command.ActorTypePlayer,
		PayloadJSON: payload,
	})
}

func (p *playSession) currentState(ctx context.Context) (aggregate.State, error) {
	events, err := p.deps.store.ListEvents(ctx, p.sessionID, 0, 0)
	if err != nil {
		return aggregate.State{}, err
	}
	var folder aggregate.Folder
	state := aggregate.State{}
	for _, evt := range events {
		state, err = folder.Fold(state, evt)
		if err != nil {
			return aggregate.State{}, err
		}
	}
	return state, nil
}

// prompt reads one trimmed input line; ok is false on EOF.
func (p *playSession) prompt(label string) (string, bool) {
	fmt.Fprintf(p.out, "%s> ", label)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// rejected prints the first rejection and reports whether any exists.
func rejected(out io.Writer, result engine.Result) bool {
	if len(result.Decision.Rejections) == 0 {
		return false
	}
	rejection := result.Decision.Rejections[0]
	fmt.Fprintf(out, "rejected: %s (%s)\n", rejection.Message, rejection.Code)
	return true
}
