// Package apperrors defines the error kinds surfaced by the predictor, the
// trainer and the web boundary.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code identifies an error kind.
type Code string

const (
	CodeModelUnavailable    Code = "MODEL_UNAVAILABLE"
	CodeInputOutOfRange     Code = "INPUT_OUT_OF_RANGE"
	CodeSchemaMismatch      Code = "SCHEMA_MISMATCH"
	CodeTrainingDataInvalid Code = "TRAINING_DATA_INVALID"
)

var (
	// Sentinels for errors.Is. An *AppError matches the sentinel with the same code.
	ErrModelUnavailable    = &AppError{Code: CodeModelUnavailable}
	ErrInputOutOfRange     = &AppError{Code: CodeInputOutOfRange}
	ErrSchemaMismatch      = &AppError{Code: CodeSchemaMismatch}
	ErrTrainingDataInvalid = &AppError{Code: CodeTrainingDataInvalid}
)

// FieldError describes a single offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is a classified application error.
type AppError struct {
	Code    Code         `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`

	cause error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.cause }

// Is matches any *AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewModelUnavailable reports a missing, unreadable or invalid model artifact.
func NewModelUnavailable(location string, cause error) *AppError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &AppError{
		Code:    CodeModelUnavailable,
		Message: fmt.Sprintf("model artifact %q is not available", location),
		Details: details,
		cause:   cause,
	}
}

// NewInputOutOfRange reports profile fields outside their declared ranges.
func NewInputOutOfRange(fields []FieldError) *AppError {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return &AppError{
		Code:    CodeInputOutOfRange,
		Message: "input values are out of range",
		Details: strings.Join(names, ", "),
		Fields:  fields,
	}
}

// NewSchemaMismatch reports a feature vector that does not match the model schema.
func NewSchemaMismatch(details string) *AppError {
	return &AppError{
		Code:    CodeSchemaMismatch,
		Message: "feature vector does not match the model schema",
		Details: details,
	}
}

// NewTrainingDataInvalid reports an unusable training dataset.
func NewTrainingDataInvalid(details string, cause error) *AppError {
	if cause != nil {
		details = fmt.Sprintf("%s: %v", details, cause)
	}
	return &AppError{
		Code:    CodeTrainingDataInvalid,
		Message: "training data is invalid",
		Details: details,
		cause:   cause,
	}
}

// HTTPStatus maps an error to the status code used by the web boundary.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInputOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrSchemaMismatch):
		return http.StatusConflict
	case errors.Is(err, ErrTrainingDataInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// As returns the *AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
