package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload         = "invalid_payload"
	ErrCodeValidation             = "validation_error"
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeInvalidCredentials     = "invalid_credentials"
	ErrCodeInternal               = "internal_server_error"
	ErrCodeNotFound               = "not_found"
	ErrCodeConflict               = "conflict"
	ErrCodeRowVersionConflict     = "row_version_conflict"
	ErrCodeExternalServiceFailure = "external_service_failure"
	ErrCodeFileTooLarge           = "file_too_large"
	ErrCodeEmailExists            = "email_exists"
)

// ErrorResponse is the body of every non-2xx reply. Details holds
// field-level validation output when there is any.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RespondErrorWithCode writes an ErrorResponse and logs it. Only the
// first devErr is logged and it never reaches the client.
func RespondErrorWithCode(w http.ResponseWriter, status int, errorCode, publicMessage string, details any, devErrs ...error) {
	writeJSON(w, status, ErrorResponse{Code: errorCode, Message: publicMessage, Details: details})

	entry := Logger.WithFields(logrus.Fields{"status": status, "code": errorCode})
	if len(devErrs) > 0 && devErrs[0] != nil {
		entry = entry.WithError(devErrs[0])
	}
	entry.Log(levelForStatus(status), publicMessage)
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// 4xx replies are the caller's fault and only warrant a warning.
func levelForStatus(status int) logrus.Level {
	if status >= http.StatusInternalServerError {
		return logrus.ErrorLevel
	}
	return logrus.WarnLevel
}
