// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code. The domain deciders and the engine
// boundary define their rejection codes in terms of these constants, so the
// code vocabulary has one home.
type Code string

const (
	// Run codes
	CodeRunAlreadyStarted     Code = "RUN_ALREADY_STARTED"
	CodeRunTotalQuestsInvalid Code = "RUN_TOTAL_QUESTS_INVALID"
	CodeRunNotInProgress      Code = "RUN_NOT_IN_PROGRESS"
	CodeRunPhaseMismatch      Code = "RUN_PHASE_MISMATCH"
	CodeRunEnded              Code = "RUN_ENDED"

	// Quest codes
	CodeQuestIDRequired     Code = "QUEST_ID_REQUIRED"
	CodeQuestAlreadyActive  Code = "QUEST_ALREADY_ACTIVE"
	CodeQuestNotFound       Code = "QUEST_NOT_FOUND"
	CodeQuestNoEntryDilemma Code = "QUEST_NO_ENTRY_DILEMMA"
	CodeQuestNoActiveQuest  Code = "QUEST_NO_ACTIVE_QUEST"

	// Narrative codes
	CodeNarrativeAlreadyActive         Code = "NARRATIVE_ALREADY_ACTIVE"
	CodeNarrativeNotActive             Code = "NARRATIVE_NOT_ACTIVE"
	CodeNarrativeGraphNotFound         Code = "NARRATIVE_GRAPH_NOT_FOUND"
	CodeNarrativeEntryPointUnknown     Code = "NARRATIVE_ENTRY_POINT_UNKNOWN"
	CodeNarrativeRequirementsNotMet    Code = "NARRATIVE_REQUIREMENTS_NOT_MET"
	CodeNarrativeTransitionIDRequired  Code = "NARRATIVE_TRANSITION_ID_REQUIRED"
	CodeNarrativeInvalidTransition     Code = "NARRATIVE_INVALID_TRANSITION"
	CodeNarrativeNodeNotRevisitable    Code = "NARRATIVE_NODE_NOT_REVISITABLE"
	CodeNarrativeCurrentNodeUnresolved Code = "NARRATIVE_CURRENT_NODE_UNRESOLVED"
	CodeNarrativeGraphInvalid          Code = "NARRATIVE_GRAPH_INVALID"

	// Battle codes
	CodeBattleNotPending      Code = "BATTLE_NOT_PENDING"
	CodeBattleInvalidOutcome  Code = "BATTLE_INVALID_OUTCOME"
	CodeBattleRequestRequired Code = "BATTLE_REQUEST_ID_REQUIRED"

	// Engine boundary codes
	CodeCommandPhaseNotAllowed Code = "COMMAND_PHASE_NOT_ALLOWED"
	CodeCommandUnrouted        Code = "COMMAND_UNROUTED"
)

// Kind groups codes into the coarse taxonomy surfaced to callers.
type Kind string

const (
	// KindValidation marks recoverable business-rule failures.
	KindValidation Kind = "validation"
	// KindNotFound marks missing content or records.
	KindNotFound Kind = "not_found"
	// KindStructural marks content-authoring defects.
	KindStructural Kind = "structural"
	// KindBoundary marks commands blocked at the dispatch boundary.
	KindBoundary Kind = "boundary"
	// KindInternal marks unexpected failures.
	KindInternal Kind = "internal"
)

// ErrKind maps a code to its taxonomy kind.
func (c Code) ErrKind() Kind {
	switch c {
	case CodeRunAlreadyStarted,
		CodeRunTotalQuestsInvalid,
		CodeRunNotInProgress,
		CodeRunPhaseMismatch,
		CodeRunEnded,
		CodeQuestIDRequired,
		CodeQuestAlreadyActive,
		CodeQuestNoActiveQuest,
		CodeNarrativeAlreadyActive,
		CodeNarrativeNotActive,
		CodeNarrativeRequirementsNotMet,
		CodeNarrativeTransitionIDRequired,
		CodeNarrativeInvalidTransition,
		CodeNarrativeNodeNotRevisitable,
		CodeBattleNotPending,
		CodeBattleInvalidOutcome,
		CodeBattleRequestRequired:
		return KindValidation

	case CodeQuestNotFound,
		CodeNarrativeGraphNotFound,
		CodeNarrativeEntryPointUnknown:
		return KindNotFound

	case CodeQuestNoEntryDilemma,
		CodeNarrativeCurrentNodeUnresolved,
		CodeNarrativeGraphInvalid:
		return KindStructural

	case CodeCommandPhaseNotAllowed, CodeCommandUnrouted:
		return KindBoundary

	default:
		return KindInternal
	}
}
