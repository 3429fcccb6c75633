package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"clinsample/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an inner AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is or wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeDomainError      = "DOMAIN_ERROR"
	CodeDegenerateEffect = "DEGENERATE_EFFECT"
	CodeComputationError = "COMPUTATION_ERROR"
	CodePlanError        = "PLAN_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func PlanError(source string, cause error) *AppError {
	return &AppError{
		Code:    CodePlanError,
		Message: fmt.Sprintf("plan %s", source),
		Cause:   cause,
	}
}

// FromCalculation classifies a calculator failure. Errors that already carry
// an AppError are returned unchanged; anything outside the calculation
// taxonomy becomes INTERNAL_ERROR.
func FromCalculation(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	code := CodeInternalError
	switch {
	case core.IsDomainError(err):
		code = CodeDomainError
	case core.IsDegenerateEffectError(err):
		code = CodeDegenerateEffect
	case core.IsComputationError(err):
		code = CodeComputationError
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// HTTPStatus maps an error to the status code the API responds with
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidInput, CodePlanError:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDomainError, CodeDegenerateEffect:
		return http.StatusUnprocessableEntity
	}
	if core.IsDomainError(err) || core.IsDegenerateEffectError(err) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
