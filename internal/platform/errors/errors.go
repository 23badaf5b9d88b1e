package apperrors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrNoState         = errors.New("no stored session state")
	ErrCorruptState    = errors.New("corrupt session state")
	ErrAlreadyRunning  = errors.New("session is already running")
	ErrNotRunning      = errors.New("session is not running")
	ErrSessionEnded    = errors.New("session has ended")
	ErrUnknownCategory = errors.New("unknown violation category")
)
