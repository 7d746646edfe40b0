package timelock

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidState       = errors.New("invalid operation state")
	ErrDuplicateOperation = errors.New("duplicate operation")
	ErrDelayTooShort      = errors.New("delay below minimum")
	ErrNotReady           = errors.New("operation not ready")
	ErrOrderingViolation  = errors.New("predecessor not done")
	ErrActionFailure      = errors.New("action failure")
	ErrInvalidRole        = errors.New("invalid role")
)
