package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Workflow-specific error types
const (
	ErrorTypeMalformedMetadata    ErrorType = "malformed_metadata"
	ErrorTypeUnauthorizedAction   ErrorType = "unauthorized_action"
	ErrorTypeInvalidTransition    ErrorType = "invalid_transition"
	ErrorTypeMissingRequiredField ErrorType = "missing_required_field"
	ErrorTypeOptimisticConflict   ErrorType = "optimistic_conflict"
	ErrorTypeSequenceExhaustion   ErrorType = "sequence_exhaustion"
)

// WorkflowError carries workflow-specific context on top of AppError so that
// callers can render distinct messages for authorization failures versus
// structurally impossible transitions.
type WorkflowError struct {
	*AppError
	// FromState and ToState are set for transition-related failures.
	FromState string
	ToState   string
	// Field names the first missing required field, if any.
	Field string
}

// Error implements the error interface
func (e *WorkflowError) Error() string {
	return e.AppError.Error()
}

// Unwrap allows errors.Is and errors.As to work correctly
func (e *WorkflowError) Unwrap() error {
	return e.AppError
}

// NewMalformedMetadataError creates an error for a metadata definition that
// failed to parse or validate. The store operation must not be applied.
func NewMalformedMetadataError(details string) *WorkflowError {
	return &WorkflowError{
		AppError: &AppError{
			Type:    ErrorTypeMalformedMetadata,
			Message: "metadata definition is malformed",
			Code:    http.StatusBadRequest,
			Details: details,
		},
	}
}

// NewUnauthorizedActionError creates an error for a user lacking the role
// required for a transition or mutation.
func NewUnauthorizedActionError(fromState, toState string) *WorkflowError {
	return &WorkflowError{
		AppError: &AppError{
			Type:    ErrorTypeUnauthorizedAction,
			Message: "user is not authorized for this action",
			Code:    http.StatusForbidden,
			Details: fmt.Sprintf("transition %s -> %s", fromState, toState),
		},
		FromState: fromState,
		ToState:   toState,
	}
}

// NewInvalidTransitionError creates an error for a target state that is not
// reachable from the current state regardless of role.
func NewInvalidTransitionError(fromState, toState string) *WorkflowError {
	return &WorkflowError{
		AppError: &AppError{
			Type:    ErrorTypeInvalidTransition,
			Message: "transition is not defined by the workflow",
			Code:    http.StatusConflict,
			Details: fmt.Sprintf("transition %s -> %s", fromState, toState),
		},
		FromState: fromState,
		ToState:   toState,
	}
}

// NewMissingRequiredFieldError creates an error naming the first required
// field without a value for the attempted transition.
func NewMissingRequiredFieldError(field, fromState, toState string) *WorkflowError {
	return &WorkflowError{
		AppError: &AppError{
			Type:    ErrorTypeMissingRequiredField,
			Message: fmt.Sprintf("required field %q has no value", field),
			Code:    http.StatusBadRequest,
			Details: fmt.Sprintf("transition %s -> %s", fromState, toState),
		},
		FromState: fromState,
		ToState:   toState,
		Field:     field,
	}
}

// NewOptimisticConflictError creates an error for a concurrent modification
// detected at commit time. Callers should reload and retry.
func NewOptimisticConflictError(details string) *WorkflowError {
	return &WorkflowError{
		AppError: &AppError{
			Type:    ErrorTypeOptimisticConflict,
			Message: "item was modified concurrently",
			Code:    http.StatusConflict,
			Details: details,
		},
	}
}

// NewSequenceExhaustionError creates an error for an exhausted space sequence.
// This is unreachable under normal integer ranges and is fatal when it occurs;
// the allocator never silently wraps.
func NewSequenceExhaustionError(details string) *WorkflowError {
	return &WorkflowError{
		AppError: &AppError{
			Type:    ErrorTypeSequenceExhaustion,
			Message: "space sequence exhausted",
			Code:    http.StatusInternalServerError,
			Details: details,
		},
	}
}

// GetWorkflowError extracts WorkflowError from error
func GetWorkflowError(err error) *WorkflowError {
	var wfErr *WorkflowError
	if stderrors.As(err, &wfErr) {
		return wfErr
	}
	return nil
}

func isWorkflowErrorType(err error, t ErrorType) bool {
	wfErr := GetWorkflowError(err)
	return wfErr != nil && wfErr.Type == t
}

// IsMalformedMetadataError checks if the error is a metadata parse failure
func IsMalformedMetadataError(err error) bool {
	return isWorkflowErrorType(err, ErrorTypeMalformedMetadata)
}

// IsUnauthorizedActionError checks if the error is an authorization failure
func IsUnauthorizedActionError(err error) bool {
	return isWorkflowErrorType(err, ErrorTypeUnauthorizedAction)
}

// IsInvalidTransitionError checks if the error is an undefined transition
func IsInvalidTransitionError(err error) bool {
	return isWorkflowErrorType(err, ErrorTypeInvalidTransition)
}

// IsMissingRequiredFieldError checks if the error is a missing field failure
func IsMissingRequiredFieldError(err error) bool {
	return isWorkflowErrorType(err, ErrorTypeMissingRequiredField)
}

// IsOptimisticConflictError checks if the error is a concurrent modification
func IsOptimisticConflictError(err error) bool {
	return isWorkflowErrorType(err, ErrorTypeOptimisticConflict)
}

// IsSequenceExhaustionError checks if the error is an exhausted sequence
func IsSequenceExhaustionError(err error) bool {
	return isWorkflowErrorType(err, ErrorTypeSequenceExhaustion)
}
