package flow

import (
	"errors"
	"fmt"
)

// Error codes for the flow engine. Every failed operation reports one of
// these; nothing in this package panics across the public surface.
const (
	CodeNotFound          = "not_found"
	CodeInvalidTransition = "invalid_transition"
	CodeInvalidInput      = "invalid_input"
)

// FlowError carries a machine-readable code alongside the message so the
// embedding application can map failures without string matching.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newNotFoundError(kind, id string) error {
	return &FlowError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", kind, id)}
}

func newInvalidTransitionError(from, to string) error {
	return &FlowError{Code: CodeInvalidTransition, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

func newInvalidInputError(msg string) error {
	return &FlowError{Code: CodeInvalidInput, Message: msg}
}

// ErrorCode extracts the flow error code, or "" for nil/foreign errors.
func ErrorCode(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsNotFound reports whether err is a not_found flow error.
func IsNotFound(err error) bool { return ErrorCode(err) == CodeNotFound }
