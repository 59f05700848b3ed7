package models

import "errors"

// Sentinel errors returned by the jar engine and repositories.
// Callers should use errors.Is to match these values.
var (
	// Validation errors. No state change, recoverable by retry with corrected input.
	ErrInvalidHandle      = errors.New("invalid handle")
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrMessageTooLong     = errors.New("message too long")
	ErrBelowMinimum       = errors.New("tip below minimum")
	ErrInvalidLinkKey     = errors.New("link key not allowed")
	ErrLinkValueTooLong   = errors.New("link value too long")
	ErrTooManyLinks       = errors.New("too many links")

	// State-conflict errors. A precondition is violated by current state.
	ErrAlreadyRegistered = errors.New("identity already holds a handle")
	ErrHandleTaken       = errors.New("handle already taken")
	ErrNotRegistered     = errors.New("identity holds no handle")
	ErrHandleNotFound    = errors.New("handle not found")
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	ErrNothingToCancel   = errors.New("nothing to cancel")
	ErrAlreadyPending    = errors.New("withdrawal already pending")
	ErrNotInitiated      = errors.New("withdrawal not initiated")
	ErrStillLocked       = errors.New("withdrawal still locked")
	ErrAlreadyPaused     = errors.New("already paused")
	ErrNotPaused         = errors.New("not paused")
	ErrPaused            = errors.New("paused")

	// Authority errors. Security-critical, never downgraded.
	ErrUnauthorized = errors.New("unauthorized")
	ErrReentrant    = errors.New("reentrant call")

	// Delivery errors. The outbound value transfer itself failed.
	ErrTransferFailed = errors.New("transfer failed")

	// Fatal errors. The whole operation aborts with no partial state change.
	ErrAmountOverflow = errors.New("amount overflow")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
)
