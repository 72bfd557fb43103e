package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches DomainErrors by code and message so wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithCause returns a copy of a sentinel carrying the underlying cause.
func WithCause(sentinel *DomainError, err error) *DomainError {
	return NewDomainErrorWithCause(sentinel.Code, sentinel.Message, err)
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidQueryType     = NewDomainError(ErrCodeValidation, "invalid query type")
	ErrMissingIngredients   = NewDomainError(ErrCodeValidation, "one or both products do not have ingredients lists")
	ErrSelfDupe             = NewDomainError(ErrCodeValidation, "a product cannot be a dupe of itself")
)

// Not found errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeNotFound, "product not found")
	ErrDupeNotFound    = NewDomainError(ErrCodeNotFound, "dupe relationship not found")
)

// Already exists errors
var (
	ErrProductAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "product already exists")
)

// Upstream errors
var (
	ErrExtractionFailed = NewDomainError(ErrCodeUpstream, "failed to extract product information")
	ErrComparisonFailed = NewDomainError(ErrCodeUpstream, "failed to compare ingredients")
	ErrPageFetchFailed  = NewDomainError(ErrCodeUpstream, "failed to fetch product page")
)

// Partial-data conditions. Callers degrade instead of failing the request.
var (
	ErrPricesUnavailable   = NewDomainError(ErrCodeNotFound, "prices unavailable")
	ErrIngredientsNotFound = NewDomainError(ErrCodeNotFound, "ingredients not found on page")
)
