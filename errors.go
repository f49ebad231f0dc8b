package ambient

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady          = errors.New("engine not ready")
	ErrNotConfigured     = errors.New("engine has no blueprint")
	ErrOutputUnavailable = errors.New("audio output unavailable")
	ErrClosed            = errors.New("engine closed")
	ErrInvalidBlueprint  = errors.New("invalid blueprint")
)

// FieldError reports a blueprint field rejected at the boundary.
type FieldError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s = %v: %s", ErrInvalidBlueprint, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidBlueprint }
