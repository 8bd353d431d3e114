package tag

import (
	"errors"
	"fmt"
)

// Normalized tag store errors.
var (
	ErrTagNotFound   = errors.New("TAG_NOT_FOUND")
	ErrStaleRead     = errors.New("STALE_READ")
	ErrWriteRejected = errors.New("WRITE_REJECTED")
)

// TransportError wraps a failed store operation with the tag it touched.
type TransportError struct {
	Op  string // "read" or "write"
	Tag ID
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Tag, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Code returns the normalized code for err, or "INTERNAL" for anything that is
// not a tag store error.
func Code(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ErrTagNotFound):
		return ErrTagNotFound.Error()
	case errors.Is(err, ErrStaleRead):
		return ErrStaleRead.Error()
	case errors.Is(err, ErrWriteRejected):
		return ErrWriteRejected.Error()
	default:
		return "INTERNAL"
	}
}

// FromCode maps a normalized code back to its sentinel. Unknown codes map to nil
// for "OK" and to a generic error otherwise.
func FromCode(code string) error {
	switch code {
	case "", "OK":
		return nil
	case ErrTagNotFound.Error():
		return ErrTagNotFound
	case ErrStaleRead.Error():
		return ErrStaleRead
	case ErrWriteRejected.Error():
		return ErrWriteRejected
	default:
		return fmt.Errorf("remote store error: %s", code)
	}
}
