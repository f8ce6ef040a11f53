package requests

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotFound      = errors.New("request not found")
	ErrUnauthorized  = errors.New("unauthorized")

	// ErrConflict: el update condicional perdió la carrera; el estado actual
	// ya no es el que el actor observó. Reintenta releyendo.
	ErrConflict = errors.New("request status changed concurrently, retry")
)

// IllegalTransitionError lleva el par from->to rechazado.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition: %s to %s", e.From, e.To)
}

// IsIllegalTransition es azúcar para los handlers.
func IsIllegalTransition(err error) bool {
	var it *IllegalTransitionError
	return errors.As(err, &it)
}
