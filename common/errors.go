package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"oauth2-token-store/logger"

	"github.com/sirupsen/logrus"
)

// ErrDuplicateToken is returned when a token's fingerprint is already stored.
// Callers should re-issue with a fresh token.
var ErrDuplicateToken = errors.New("duplicate token")

// ValidationError reports malformed input rejected before touching the database.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InfrastructureError wraps a backing-store failure: connectivity, timeout,
// cancellation or a rejected query.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("infrastructure error: %s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// NewInfrastructureError wraps err as a failure of operation op.
func NewInfrastructureError(op string, err error) *InfrastructureError {
	return &InfrastructureError{Op: op, Err: err}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInfrastructure reports whether err wraps an *InfrastructureError.
func IsInfrastructure(err error) bool {
	var ie *InfrastructureError
	return errors.As(err, &ie)
}

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates an AppError. err is logged but never sent to the client.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FromDomainError maps store errors onto HTTP responses. Infrastructure
// details stay in the logs.
func FromDomainError(err error) *AppError {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return NewAppError(http.StatusBadRequest, ve.Error(), nil)
	case errors.Is(err, ErrDuplicateToken):
		return NewAppError(http.StatusConflict, "Token already exists, re-issue with a new token", err)
	case IsInfrastructure(err):
		return NewAppError(http.StatusServiceUnavailable, "Service temporarily unavailable", err)
	default:
		return NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}

// Send logs the internal error, if any, and writes e as the JSON response.
func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}
