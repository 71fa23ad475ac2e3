package coordinator

import "github.com/pkg/errors"

// Rejection reasons, grouped the way callers should react to them: structural
// errors need corrected input, authorization errors need a different identity,
// state-machine errors mean the caller's view of the session is stale. All are
// synchronous and non-retryable as-is.
var (
	// Structural.
	ErrEmptyCIDs        = errors.New("candidate list is empty")
	ErrDuplicateCID     = errors.New("duplicate candidate cid")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrInvalidVoteIndex = errors.New("candidate index out of range")

	// Authorization.
	ErrUnauthorized      = errors.New("unauthorized caller")
	ErrUnauthorizedVoter = errors.New("voter does not pass the session gate")

	// State machine.
	ErrVoteNotFound          = errors.New("vote session not found")
	ErrVoteAlreadyClosed     = errors.New("vote session already closed")
	ErrVoteNotClosed         = errors.New("vote session still open")
	ErrVoteExpired           = errors.New("vote session expired")
	ErrAlreadyFinalized      = errors.New("vote session already finalized")
	ErrWinnerMismatch        = errors.New("winner cid mismatch")
	ErrUnsupportedVoteMethod = errors.New("unsupported vote method")
)
