package issuer

import "github.com/pkg/errors"

// All issuer rejections are synchronous; no partial state survives a failed
// call.
var (
	// ErrUnauthorized rejects a restricted call from anyone but the
	// configured party (admin for configuration, authorized caller for
	// minting).
	ErrUnauthorized = errors.New("unauthorized caller")
	// ErrInvalidLocator rejects an empty token locator or one missing the
	// content-addressing prefix.
	ErrInvalidLocator = errors.New("invalid token locator")
	// ErrBatchMismatch rejects a batch whose recipient and uri lists do not
	// line up, or that is empty.
	ErrBatchMismatch = errors.New("batch arrays mismatch")
	// ErrTokenNotFound rejects a read for an id that was never minted.
	ErrTokenNotFound = errors.New("token not found")
)
