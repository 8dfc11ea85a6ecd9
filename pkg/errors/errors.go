// Package errors provides structured error handling for librakeep
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/librakeep/librakeep/pkg/types"
)

// ErrorCode represents specific error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Authentication/Authorization errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Resource errors
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Borrow lifecycle errors
	ErrCodeUnavailable           ErrorCode = "UNAVAILABLE"
	ErrCodeDuplicateActiveBorrow ErrorCode = "DUPLICATE_ACTIVE_BORROW"
	ErrCodeAlreadyReturned       ErrorCode = "ALREADY_RETURNED"

	// Availability ledger invariant guards
	ErrCodeOverReturn      ErrorCode = "OVER_RETURN"
	ErrCodeInvalidCapacity ErrorCode = "INVALID_CAPACITY"
	ErrCodeHasActiveLoans  ErrorCode = "HAS_ACTIVE_LOANS"

	// Persistence errors
	ErrCodeStoreFailure ErrorCode = "STORE_FAILURE"

	// System errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// Error represents a structured error in librakeep. Every error carries a
// stable code and a human-readable message; internal causes are wrapped but
// never part of the JSON contract.
type Error struct {
	Type    types.ErrorType        `json:"type"`
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (caused by: %v)", e.Code, e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new structured error
func New(errType types.ErrorType, code ErrorCode, message string) *Error {
	return &Error{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new structured error wrapping a cause
func Wrap(errType types.ErrorType, code ErrorCode, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Validation error constructors

func NewValidationError(message string) *Error {
	return New(types.ErrorTypeValidation, ErrCodeValidation, message)
}

func NewInvalidInputError(message string) *Error {
	return New(types.ErrorTypeValidation, ErrCodeInvalidInput, message)
}

func NewAlreadyExistsError(resource string) *Error {
	return New(types.ErrorTypeConflict, ErrCodeAlreadyExists,
		fmt.Sprintf("%s already exists", resource)).WithDetail("resource", resource)
}

// Authentication/Authorization error constructors

func NewUnauthorizedError(message string) *Error {
	return New(types.ErrorTypeUnauthorized, ErrCodeUnauthorized, message)
}

func NewForbiddenError(message string) *Error {
	return New(types.ErrorTypeForbidden, ErrCodeForbidden, message)
}

func NewInvalidTokenError() *Error {
	return New(types.ErrorTypeUnauthorized, ErrCodeInvalidToken, "invalid or expired token")
}

// Resource error constructors

func NewNotFoundError(resource string) *Error {
	return New(types.ErrorTypeNotFound, ErrCodeNotFound,
		fmt.Sprintf("%s not found", resource)).WithDetail("resource", resource)
}

// Borrow lifecycle error constructors

func NewUnavailableError(bookID string) *Error {
	return New(types.ErrorTypeValidation, ErrCodeUnavailable,
		"book is not available for borrowing").WithDetail("book_id", bookID)
}

func NewDuplicateActiveBorrowError(memberID, bookID string) *Error {
	return New(types.ErrorTypeValidation, ErrCodeDuplicateActiveBorrow,
		"member already has an active borrow for this book").
		WithDetail("member_id", memberID).WithDetail("book_id", bookID)
}

func NewAlreadyReturnedError(borrowID string) *Error {
	return New(types.ErrorTypeValidation, ErrCodeAlreadyReturned,
		"book has already been returned").WithDetail("borrow_id", borrowID)
}

// Availability ledger error constructors

func NewOverReturnError(bookID string) *Error {
	return New(types.ErrorTypeValidation, ErrCodeOverReturn,
		"all copies are already checked in").WithDetail("book_id", bookID)
}

func NewInvalidCapacityError(message string) *Error {
	return New(types.ErrorTypeValidation, ErrCodeInvalidCapacity, message)
}

func NewHasActiveLoansError(bookID string, borrowed int) *Error {
	return New(types.ErrorTypeValidation, ErrCodeHasActiveLoans,
		"cannot delete book with borrowed copies").
		WithDetail("book_id", bookID).WithDetail("borrowed_copies", borrowed)
}

// Persistence error constructors

func NewStoreFailureError(message string, cause error) *Error {
	return Wrap(types.ErrorTypeInternal, ErrCodeStoreFailure, message, cause)
}

// Internal error constructors

func NewInternalError(message string, cause error) *Error {
	return Wrap(types.ErrorTypeInternal, ErrCodeInternal, message, cause)
}

// Configuration error constructors

func NewConfigInvalidError(message string) *Error {
	return New(types.ErrorTypeValidation, ErrCodeConfigInvalid, message)
}

// Get extracts a structured *Error from an error chain, or nil
func Get(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return nil
}

// HasCode reports whether err carries the given error code
func HasCode(err error, code ErrorCode) bool {
	if e := Get(err); e != nil {
		return e.Code == code
	}
	return false
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	if e := Get(err); e != nil {
		return e.Type == types.ErrorTypeNotFound
	}
	return false
}

// HTTPStatus maps an error to the status code the HTTP layer should return.
// NotFound maps to 404, business-rule violations to 400, auth failures to
// 401/403, everything else to 500.
func HTTPStatus(err error) int {
	e := Get(err)
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Type {
	case types.ErrorTypeNotFound:
		return http.StatusNotFound
	case types.ErrorTypeValidation:
		return http.StatusBadRequest
	case types.ErrorTypeConflict:
		return http.StatusConflict
	case types.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case types.ErrorTypeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
