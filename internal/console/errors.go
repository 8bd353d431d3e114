package console

import "errors"

// Console errors.
var (
	ErrAuthFailure      = errors.New("AUTH_FAILURE")
	ErrNotAuthenticated = errors.New("NOT_AUTHENTICATED")
	ErrUnknownCommand   = errors.New("UNKNOWN_COMMAND")
	ErrInvalidChoice    = errors.New("INVALID_CHOICE")
	ErrForbidden        = errors.New("FORBIDDEN")
)
