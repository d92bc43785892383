package tournament

import "errors"

// Root error kinds. Every domain error wraps exactly one of them so callers can
// classify failures with errors.Is without knowing the specific error.
var (
	ErrNotFound      = errors.New("not found")
	ErrConfiguration = errors.New("configuration error")
	ErrPrecondition  = errors.New("precondition failed")
)

type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}

var (
	ErrTournamentNotFound = newError(ErrNotFound, "tournament not found")
	ErrStageNotFound      = newError(ErrNotFound, "stage not found")
	ErrGroupNotFound      = newError(ErrNotFound, "group not found")
	ErrFixtureNotFound    = newError(ErrNotFound, "fixture not found")
	ErrAuditNotFound      = newError(ErrNotFound, "promotion audit not found")
)

var (
	ErrMissingPromotionRule    = newError(ErrConfiguration, "stage has no promotion rule")
	ErrMissingNextStage        = newError(ErrConfiguration, "promotion rule has no next stage")
	ErrNextStageMismatch       = newError(ErrConfiguration, "next stage belongs to another tournament")
	ErrUnknownStageType        = newError(ErrConfiguration, "unknown stage type")
	ErrUnknownRuleType         = newError(ErrConfiguration, "unknown promotion rule type")
	ErrUnknownTieBreaker       = newError(ErrConfiguration, "unknown tie-break rule")
	ErrUnknownTournamentType   = newError(ErrConfiguration, "unknown tournament type")
	ErrInvalidRuleConfig       = newError(ErrConfiguration, "invalid promotion rule config")
	ErrManualSelectionRequired = newError(ErrConfiguration, "manual promotion requires a team list")
	ErrInvalidStageSettings    = newError(ErrConfiguration, "invalid stage settings")
	ErrInvalidTournament       = newError(ErrConfiguration, "invalid tournament definition")
)

var (
	ErrIncompleteFixtures       = newError(ErrPrecondition, "stage has fixtures that are not completed or cancelled")
	ErrFixturesAlreadyGenerated = newError(ErrPrecondition, "fixtures already generated for stage")
	ErrRoundIncomplete          = newError(ErrPrecondition, "previous round is not finished")
	ErrNoRoundsRemaining        = newError(ErrPrecondition, "no rounds remaining for stage")
	ErrUndecidedTie             = newError(ErrPrecondition, "knockout tie has no winner")
	ErrInvalidStageStatus       = newError(ErrPrecondition, "stage status does not allow this operation")
	ErrActiveStageExists        = newError(ErrPrecondition, "tournament already has an active stage")
	ErrRankingsUnavailable      = newError(ErrPrecondition, "stage has no rankings to promote from")
	ErrTeamNotInStage           = newError(ErrPrecondition, "team is not part of stage")
	ErrDuplicateTeam            = newError(ErrPrecondition, "team listed more than once")
	ErrStageHasFixtures         = newError(ErrPrecondition, "stage already has fixtures")
	ErrFixtureNotUpcoming       = newError(ErrPrecondition, "fixture is not upcoming")
	ErrTieNotCancellable        = newError(ErrPrecondition, "knockout ties must be decided, not cancelled")
	ErrDuplicateSeed            = newError(ErrPrecondition, "seed is already taken in the next stage")
	ErrByeNotScorable           = newError(ErrPrecondition, "bye fixtures have no result")
	ErrInvalidScore             = newError(ErrPrecondition, "scores must not be negative")
	ErrAuditAlreadyRolledBack   = newError(ErrPrecondition, "promotion was already rolled back")
	ErrAuditNotRollbackable     = newError(ErrPrecondition, "only the latest executed promotion can be rolled back")
	ErrAlreadyPromoted          = newError(ErrPrecondition, "stage promotion already executed, roll it back first")
	ErrTournamentFinished       = newError(ErrPrecondition, "tournament is completed or cancelled")
)
