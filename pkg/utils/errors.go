package utils

import "fmt"

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// NewConfigurationError covers operations referencing an unknown node id.
// This is the only error class surfaced directly to callers; everything else
// is folded into a well-formed CommandResult or metric result.
func NewConfigurationError(nodeID string) *APIError {
	return &APIError{
		Code:    1001,
		Message: "unknown node",
		Details: fmt.Sprintf("no node registered with id %q", nodeID),
	}
}

// NewConnectionError covers transport establishment failures.
func NewConnectionError(nodeID string, err error) *APIError {
	return &APIError{
		Code:    2001,
		Message: fmt.Sprintf("connection to node %s failed", nodeID),
		Details: err.Error(),
	}
}

// NewExecutionError covers commands that could not be dispatched.
func NewExecutionError(command string, err error) *APIError {
	return &APIError{
		Code:    3001,
		Message: fmt.Sprintf("command execution failed: %s", command),
		Details: err.Error(),
	}
}

func NewValidationError(field string, value interface{}) *APIError {
	return &APIError{
		Code:    4001,
		Message: fmt.Sprintf("invalid field: %s", field),
		Details: fmt.Sprintf("invalid value: %v", value),
	}
}
