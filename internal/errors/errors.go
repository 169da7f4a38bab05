package errors

import "fmt"

// ErrorCode represents a halo error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrCapacityReached ErrorCode = "CAPACITY_REACHED" // 409
	ErrSampleTooLarge  ErrorCode = "SAMPLE_TOO_LARGE" // 413
	ErrInvalidPattern  ErrorCode = "INVALID_PATTERN"  // 422
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// HaloError represents a structured error with code, status, and details.
// The engine core itself degrades to no-ops instead of failing; these errors
// exist so the CLI, MCP and web surfaces can report rejected requests.
type HaloError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *HaloError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *HaloError {
	return &HaloError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a bubble cannot be found.
func NewNotFound(id string) *HaloError {
	return &HaloError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("bubble not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewPatternNotFound creates a 404 error for when a library pattern cannot
// be found.
func NewPatternNotFound(id string) *HaloError {
	return &HaloError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("pattern not found: %s", id),
		Details: map[string]any{"pattern_id": id},
	}
}

// NewCapacityReached creates a 409 error for when a type's instance cap
// rejected an add.
func NewCapacityReached(typeID string, max int) *HaloError {
	return &HaloError{
		Code:    ErrCapacityReached,
		Status:  409,
		Message: fmt.Sprintf("bubble type %q is at its instance cap (%d)", typeID, max),
		Details: map[string]any{"type": typeID, "max_instances": max},
	}
}

// NewSampleTooLarge creates a 413 error when a content sample exceeds the
// configured size limit.
func NewSampleTooLarge(max, actual int) *HaloError {
	return &HaloError{
		Code:    ErrSampleTooLarge,
		Status:  413,
		Message: fmt.Sprintf("sample exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewInvalidPattern creates a 422 error for a regex that does not compile.
func NewInvalidPattern(expr string) *HaloError {
	return &HaloError{
		Code:    ErrInvalidPattern,
		Status:  422,
		Message: fmt.Sprintf("pattern does not compile: %s", expr),
		Details: map[string]any{"expr": expr},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *HaloError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &HaloError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a HaloError with the given code.
func Is(err error, code ErrorCode) bool {
	if hErr, ok := err.(*HaloError); ok {
		return hErr.Code == code
	}
	return false
}
