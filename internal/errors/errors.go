package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Rolo error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrDecodeFailure      ErrorCode = "DECODE_FAILURE"      // 422
	ErrCancelled          ErrorCode = "CANCELLED"           // 499
	ErrInternal           ErrorCode = "INTERNAL"            // 500
	ErrStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE" // 503
)

// DecodeFailureMessage is the single user-facing message for a failed import.
const DecodeFailureMessage = "import failed, check file format"

// RoloError represents a structured error with code, status, and details.
type RoloError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *RoloError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *RoloError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RoloError {
	return &RoloError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a contact cannot be found.
func NewNotFound(id string) *RoloError {
	return &RoloError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("contact not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *RoloError {
	return &RoloError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewDecodeFailure creates a 422 error for an unreadable spreadsheet.
// The message is fixed; the parser error is kept as the cause.
func NewDecodeFailure(err error) *RoloError {
	details := map[string]any{}
	if err != nil {
		details["decode_error"] = err.Error()
	}
	return &RoloError{
		Code:    ErrDecodeFailure,
		Status:  422,
		Message: DecodeFailureMessage,
		Details: details,
		cause:   err,
	}
}

// NewCancelled creates a 499 error for an operation cancelled by its context.
func NewCancelled(operation string) *RoloError {
	return &RoloError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewStorageUnavailable creates a 503 error when the persistent store cannot be read or written.
func NewStorageUnavailable(err error) *RoloError {
	msg := "contact storage unavailable"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &RoloError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the original error is kept in Details for logging.
func NewInternal(err error) *RoloError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &RoloError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if an error (or anything it wraps) is a RoloError with the given code.
func Is(err error, code ErrorCode) bool {
	var rErr *RoloError
	if stderrors.As(err, &rErr) {
		return rErr.Code == code
	}
	return false
}

// As reports whether err wraps a RoloError and returns it.
func As(err error) (*RoloError, bool) {
	var rErr *RoloError
	if stderrors.As(err, &rErr) {
		return rErr, true
	}
	return nil, false
}
