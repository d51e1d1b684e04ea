package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    &AppError{Type: ErrTypeSchema, Message: "missing required columns [Close]"},
			wantMessage: "[SCHEMA] missing required columns [Close]",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "row 3: close",
				Cause:   fmt.Errorf("bad digit"),
			},
			wantMessage: "[PARSING] row 3: close: bad digit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_IsMatchesByType(t *testing.T) {
	err := fmt.Errorf("load: %w", NewMalformedTimeError(4, "9:15"))

	assert.True(t, errors.Is(err, ErrMalformedTime))
	assert.False(t, errors.Is(err, ErrSchema))
	assert.Equal(t, ErrTypeMalformedTime, TypeOf(err))
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root")
	err := NewParsingError("wrap", cause)

	assert.Same(t, cause, errors.Unwrap(err))
}

func TestAppError_Fatal(t *testing.T) {
	tests := []struct {
		err   *AppError
		fatal bool
	}{
		{NewSchemaError([]string{"Time"}), true},
		{NewMalformedTimeError(1, "x"), true},
		{NewParsingError("close", nil), true},
		{NewDateParseError("FOO", nil), false},
		{NewNoAnchorError("2024-01-15"), false},
		{NewNoSeedError(), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.fatal, tt.err.Fatal())
		})
	}
}

func TestErrorHelpers_Context(t *testing.T) {
	err := NewMalformedTimeError(7, "25:00")
	require.NotNil(t, err.Context)
	assert.Equal(t, 7, err.Context["row"])
	assert.Equal(t, "25:00", err.Context["value"])

	schema := NewSchemaError([]string{"Ticker", "Close"})
	assert.Equal(t, []string{"Ticker", "Close"}, schema.Context["missing"])

	anchor := NewNoAnchorError("2024-01-15")
	assert.Equal(t, "2024-01-15", anchor.Context["date"])

	var nilCtx AppError
	nilCtx.WithContext("k", "v")
	assert.Equal(t, "v", nilCtx.Context["k"])
}
