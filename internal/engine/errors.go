package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrRuleTooDeep is returned when a rule tree nests deeper than the
	// evaluator's MaxDepth.
	ErrRuleTooDeep = errors.New("rule tree exceeds maximum depth")
	// ErrRuleCycle is returned by ValidateRule when a node is its own ancestor.
	ErrRuleCycle = errors.New("rule tree contains a cycle")
	// ErrUnknownForm is returned when a form id is not registered.
	ErrUnknownForm = errors.New("unknown form")
)

type AppError struct {
	Code    string        `json:"code"`
	Status  int           `json:"-"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func UnknownFieldError(field string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_FIELD",
		Status:  400,
		Message: fmt.Sprintf("Unknown filter field: %s", field),
	}
}

func InvalidFilterError(field string, err error) *AppError {
	return &AppError{
		Code:    "INVALID_FILTER",
		Status:  400,
		Message: fmt.Sprintf("Invalid filter for %s: %v", field, err),
	}
}

func ValidationError(details []ErrorDetail) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Status:  422,
		Message: "Validation failed",
		Details: details,
	}
}
