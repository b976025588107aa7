// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Repository errors.
	ErrAlreadyPersisted = errors.New("record already has a primary key")
	ErrNotFound         = errors.New("not found")
	ErrMissingKey       = errors.New("record has no primary key")
	ErrMultipleMatches  = errors.New("multiple rows match")
	ErrUnknownColumn    = errors.New("unknown column")

	// Domain errors.
	ErrIndentationMismatch = errors.New("unindent does not match any outer indentation level")
	ErrValidationFailed    = errors.New("validation failed")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Describe returns the message a user should see for err.
func Describe(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return "nothing matched the given identifier"
	case errors.Is(err, ErrIndentationMismatch):
		return "category outline is not indented consistently"
	default:
		return err.Error()
	}
}
