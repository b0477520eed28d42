package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrBackend            = errors.New("backend error")
	ErrTransport          = errors.New("transport failure")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrResultShown        = errors.New("a result is shown, start a new analysis first")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
