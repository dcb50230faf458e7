package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details string       `json:"details,omitempty"`
	Rules   []RuleResult `json:"rules,omitempty"`
}

// AppError represents a custom application error. Every failure path in the
// engine returns one, distinguishable by Code, so callers map to transport
// status codes without string parsing.
type AppError struct {
	Code    string
	Message string
	Err     error
	// Rules carries the unsatisfied rules when Code is VALIDATION_FAILED.
	Rules []RuleResult
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

// NewForbiddenError indicates an ownership or role mismatch.
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
	}
}

// NewInvalidStateError indicates a status-machine precondition failed. The
// message always reports the current status so callers can refresh stale UI.
func NewInvalidStateError(operation string, current PromotionStatus) *AppError {
	return &AppError{
		Code:    "INVALID_STATE",
		Message: fmt.Sprintf("cannot %s promotion in status %q", operation, current),
	}
}

// NewConflictError indicates a reservation race was lost or a badge is not
// reservable. It names the offending badge application so batch callers know
// which id aborted the whole operation.
func NewConflictError(badgeApplicationID uint, reason string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: fmt.Sprintf("badge application %d: %s", badgeApplicationID, reason),
	}
}

// NewValidationFailedError indicates the eligibility gate failed at submit
// time. It carries exactly the unsatisfied rules.
func NewValidationFailedError(unsatisfied []RuleResult) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Message: fmt.Sprintf("promotion does not satisfy %d template rule(s)", len(unsatisfied)),
		Rules:   unsatisfied,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
			Rules: appErr.Rules,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
