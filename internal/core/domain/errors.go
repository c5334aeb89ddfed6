package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTurnInFlight     = errors.New("chat turn already in flight")
	ErrTemporary        = errors.New("temporary failure")
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

// userMessenger is implemented by errors that carry a human-readable message
// from the backend envelope.
type userMessenger interface {
	UserMessage() string
}

// UserMessage extracts the backend's human-readable message from err, or
// returns fallback when the failure has no presentable text (transport
// errors, timeouts).
func UserMessage(err error, fallback string) string {
	var um userMessenger
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}
