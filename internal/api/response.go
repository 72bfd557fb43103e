package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloo-solutions/dupefinder/internal/domain"
)

// GenericErrorMessage is returned for failures without a client-safe message
const GenericErrorMessage = "An unexpected error occurred"

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var statusByCode = map[string]int{
	domain.ErrCodeValidation:    http.StatusBadRequest,
	domain.ErrCodeNotFound:      http.StatusNotFound,
	domain.ErrCodeAlreadyExists: http.StatusConflict,
}

// JSON writes data with the given status. The body is encoded before the
// header is sent so an unencodable value becomes a 500 instead of a
// truncated 200.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		w.WriteHeader(status)
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: GenericErrorMessage, Code: domain.ErrCodeInternalError})
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Error writes an error body with no code
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP maps err to a status code. Anything that is not a
// caller mistake or a missing record is a 500.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		if status, ok := statusByCode[domainErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// ErrorMessage returns the client-facing message for err. Causes are never
// exposed; non-domain errors get the generic message.
func ErrorMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) && domainErr.Code != domain.ErrCodeInternalError {
		return domainErr.Message
	}
	return GenericErrorMessage
}

// HandleError writes the status, message and code for err.
func HandleError(w http.ResponseWriter, err error) {
	code := domain.ErrCodeInternalError
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	JSON(w, DomainErrorToHTTP(err), ErrorResponse{Error: ErrorMessage(err), Code: code})
}
