package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidSchema = errors.New("invalid schema")
)

var identifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateIdentifier ensures a name is safe to splice into SQL.
func validateIdentifier(name string, kind string) error {
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %s name %q", ErrInvalidSchema, kind, name)
	}
	return nil
}

// validateRecord ensures a record pointer is usable.
func validateRecord[T any](rec *T) error {
	if rec == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	return nil
}
