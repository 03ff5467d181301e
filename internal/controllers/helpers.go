package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/middleware"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

const (
	// multipart parts above this size spill to temp files
	maxMultipartMemory = 32 << 20
	// raw uploads may be larger than the stored 1 MiB; they are optimized first
	maxMultipartBytes = 120 << 20
	maxRawImageBytes  = 10 << 20
)

var validate = validator.New()

// formatValidationErrors converts validator errors into a user-friendly format.
func formatValidationErrors(errs validator.ValidationErrors) []dtos.ValidationErrorDetail {
	var details []dtos.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "email":
			message = fmt.Sprintf("Field '%s' must be a valid email address", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must be at least %s in length", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field '%s' must not exceed %s in length", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("Field '%s' must be at least %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("Field '%s' must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, dtos.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

// validateRequest writes a 400 and returns false when req fails its tags.
func validateRequest(w http.ResponseWriter, req any) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(validationErrs), err)
	} else {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
	}
	return false
}

// decodeJSON writes a 400 and returns false on a malformed body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return false
	}
	return true
}

func getUserID(r *http.Request) (uuid.UUID, error) {
	raw, ok := middleware.UserID(r.Context())
	if !ok {
		return uuid.Nil, &utils.AppError{StatusCode: http.StatusUnauthorized, Code: utils.ErrCodeUnauthorized, Message: "Missing userID in context"}
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: "Invalid userID format", Err: err}
	}
	return userID, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: fmt.Sprintf("Invalid %s", name), Err: err}
	}
	return id, nil
}

// readUploads loads every file part under field into memory.
func readUploads(form *multipart.Form, field string) ([]services.Upload, error) {
	var uploads []services.Upload
	for _, fh := range form.File[field] {
		if fh.Size > maxRawImageBytes {
			return nil, utils.NewAppError(http.StatusRequestEntityTooLarge, utils.ErrCodeFileTooLarge,
				fmt.Sprintf("%s exceeds the %d MB upload limit", fh.Filename, maxRawImageBytes>>20), nil)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Unreadable upload", err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Unreadable upload", err)
		}
		uploads = append(uploads, services.Upload{Filename: fh.Filename, Data: data})
	}
	return uploads, nil
}

// formValue returns the trimmed first value of key, or "" if absent.
func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func formPtr(form *multipart.Form, key string) *string {
	if _, ok := form.Value[key]; !ok {
		return nil
	}
	v := formValue(form, key)
	return &v
}

func parseOptionalFloat(raw, field string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeInvalidPayload, fmt.Sprintf("Field '%s' must be a number", field), err)
	}
	return &v, nil
}

func parseOptionalInt(raw, field string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeInvalidPayload, fmt.Sprintf("Field '%s' must be an integer", field), err)
	}
	return &v, nil
}
