package common

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer

	h, err := newHandler(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)
	slog.New(h).Info("hello", "key", "value")
	assert.Contains(t, buf.String(), `"key":"value"`)

	_, err = newHandler(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestUserError(t *testing.T) {
	base := fmt.Errorf("update expense 7: %w", ErrNotFound)
	err := NewUserError("Expense 7 does not exist", base)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Expense 7 does not exist", Describe(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "nothing matched the given identifier", Describe(fmt.Errorf("get: %w", ErrNotFound)))
	assert.Equal(t, "category outline is not indented consistently", Describe(ErrIndentationMismatch))
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
