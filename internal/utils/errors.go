package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors shared by repositories and services.
var (
	ErrRowVersionConflict     = errors.New("row_version_conflict")
	ErrNoRowsUpdated          = errors.New("no_rows_updated")
	ErrExternalServiceFailure = errors.New("external_service_failure")
	ErrEmailExists            = errors.New("email_exists")
	ErrInvalidCredentials     = errors.New("invalid_credentials")
)

// AppError carries a public status/code/message from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError is shorthand for the common four-field literal.
func NewAppError(status int, code, msg string, err error) *AppError {
	return &AppError{StatusCode: status, Code: code, Message: msg, Err: err}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
