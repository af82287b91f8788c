package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrNoJSONFound     = errors.New("no JSON fragment found in input")
	ErrPathNotFound    = errors.New("path does not exist in document")
	ErrIndexOutOfRange = errors.New("array index out of range")
	ErrNotContainer    = errors.New("path crosses a value that is not an object or array")
	ErrNoDocument      = errors.New("no parsed document available")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrHistoryNotFound = errors.New("history entry not found")
	ErrFileNotFound    = errors.New("file not found")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
)

// Fixed user-facing messages for the repair and escape failures.
const (
	MsgRepairFailed  = "unable to repair automatically, please check the syntax"
	MsgInvalidEscape = "invalid escaped string or malformed inner JSON"
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeRepair  ErrorType = "repair"
	ErrorTypeEscape  ErrorType = "escape"
	ErrorTypePath    ErrorType = "path"
	ErrorTypeState   ErrorType = "state"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeStorage ErrorType = "storage"
	ErrorTypeOutput  ErrorType = "output"
	ErrorTypeUnknown ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: message,
		Err:     err,
	}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error for a strict JSON parse failure
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewRepairError creates the error returned once every repair step has failed.
// The message is fixed; err is the last parser failure.
func NewRepairError(err error) *AppError {
	return newError(ErrorTypeRepair, MsgRepairFailed, err)
}

// NewEscapeError creates the error for escaped-string content that cannot be decoded
func NewEscapeError(err error) *AppError {
	return newError(ErrorTypeEscape, MsgInvalidEscape, err)
}

// NewPathError creates a new error for a path that cannot be resolved
func NewPathError(message string, err error) *AppError {
	return newError(ErrorTypePath, message, err)
}

// NewStateError creates a new error for an action the current document state refuses
func NewStateError(message string, err error) *AppError {
	return newError(ErrorTypeState, message, err)
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return newError(ErrorTypeConfig, message, err)
}

// NewStorageError creates a new error related to history persistence
func NewStorageError(message string, err error) *AppError {
	return newError(ErrorTypeStorage, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// IsType reports whether err is an AppError of type t
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeRepair:
			return fmt.Sprintf("Repair failed: %s", appErr.Message)
		case ErrorTypeEscape:
			return fmt.Sprintf("Escaped string error: %s", appErr.Message)
		case ErrorTypePath:
			return fmt.Sprintf("Path error: %s", appErr.Message)
		case ErrorTypeState:
			return fmt.Sprintf("Action refused: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeStorage:
			return fmt.Sprintf("Storage error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrNoJSONFound) {
		return "Error: No JSON object or array could be found in the input."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}

	return fmt.Sprintf("Error: %v", err)
}
