package rpn

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is against an *EvalError.
var (
	ErrInvalidSyntax  = errors.New("invalid syntax")
	ErrInvalidToken   = errors.New("invalid token")
	ErrDivisionByZero = errors.New("division by zero")
)

// EvalError describes why a formula could not be evaluated.
// Position is the 1-based index of the offending token, or 0 when the
// failure concerns the formula as a whole (wrong final stack size).
type EvalError struct {
	Kind     error
	Position int
}

func (e *EvalError) Error() string {
	if e.Position == 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s at %d", e.Kind, e.Position)
}

func (e *EvalError) Unwrap() error {
	return e.Kind
}

// KindName returns a short machine-readable name for err's kind, suitable
// for metric attributes and JSON bodies. Unknown errors map to "internal".
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSyntax):
		return "invalid_syntax"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	default:
		return "internal"
	}
}

// PositionOf returns the token position carried by err, or 0.
func PositionOf(err error) int {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Position
	}
	return 0
}
