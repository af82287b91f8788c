package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeParsing,
				Message: "invalid JSON syntax",
				Err:     nil,
			},
			expected: "parsing: invalid JSON syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{
		Type:    ErrorTypeInput,
		Message: "test message",
		Err:     wrappedErr,
	}

	result := appErr.Unwrap()
	assert.Equal(t, wrappedErr, result)
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name: "same type",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "test message",
				Err:     nil,
			},
			target: &AppError{
				Type:    ErrorTypeInput,
				Message: "different message",
				Err:     errors.New("some error"),
			},
			expected: true,
		},
		{
			name: "different type",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "test message",
				Err:     nil,
			},
			target: &AppError{
				Type:    ErrorTypeParsing,
				Message: "test message",
				Err:     nil,
			},
			expected: false,
		},
		{
			name: "not an AppError",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "test message",
				Err:     nil,
			},
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Is(tt.target)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "parsing error",
			err:      NewParsingError("invalid JSON syntax", nil),
			expected: "JSON parsing error: invalid JSON syntax",
		},
		{
			name:     "repair error",
			err:      NewRepairError(errors.New("invalid character")),
			expected: "Repair failed: unable to repair automatically, please check the syntax",
		},
		{
			name:     "escape error",
			err:      NewEscapeError(nil),
			expected: "Escaped string error: invalid escaped string or malformed inner JSON",
		},
		{
			name:     "path error",
			err:      NewPathError("key \"a\" not found", ErrPathNotFound),
			expected: "Path error: key \"a\" not found",
		},
		{
			name:     "storage error",
			err:      NewStorageError("failed to open database", nil),
			expected: "Storage error: failed to open database",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide valid JSON data.",
		},
		{
			name:     "standard error - invalid JSON",
			err:      ErrInvalidJSON,
			expected: "Error: The input contains invalid JSON. Please check your JSON syntax.",
		},
		{
			name:     "standard error - no JSON found",
			err:      ErrNoJSONFound,
			expected: "Error: No JSON object or array could be found in the input.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UserFriendlyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("mutation failed: %w", NewPathError("index 9 out of range", ErrIndexOutOfRange))

	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypePath}))
	assert.False(t, errors.Is(err, &AppError{Type: ErrorTypeRepair}))
	assert.True(t, IsType(err, ErrorTypePath))
	assert.False(t, IsType(errors.New("plain"), ErrorTypePath))
}

func TestNewRepairError_KeepsCause(t *testing.T) {
	cause := errors.New("invalid character '}' looking for beginning of object key string")
	err := NewRepairError(cause)

	assert.Equal(t, ErrorTypeRepair, err.Type)
	assert.Equal(t, MsgRepairFailed, err.Message)
	assert.ErrorIs(t, err, cause)
}
