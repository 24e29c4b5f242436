package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrPersistence indicates that the storage layer failed mid unit of work.
// The unit of work has been rolled back and the caller may retry.
var ErrPersistence = errors.New("persistence failure")

// AppError carries an HTTP-ish status code and a caller-safe message alongside the wrapped
// cause. Only Message is ever shown to callers; Error() also includes the cause for logs.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewStoreError classifies a storage error under kind (ErrDuplicate, ErrNotFound or
// ErrValidation) with a caller-safe message. The driver error is kept as the cause only.
func NewStoreError(code int, kind error, message string, cause error) error {
	return NewAppError(code, message, errors.Join(kind, cause))
}

// PublicMessage returns the text of err that may be shown to a caller. Errors classified
// by the store expose only their AppError message.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// NewNotFoundError creates an error that matches ErrNotFound.
func NewNotFoundError(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}

// NewValidationError creates an error that matches ErrValidation.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewPersistenceError wraps a storage failure so that it matches ErrPersistence.
func NewPersistenceError(message string, err error) error {
	return NewAppError(http.StatusServiceUnavailable, message, errors.Join(ErrPersistence, err))
}

// UnbalancedEntriesError is returned when a transaction has fewer than two entries
// or its debit and credit totals differ. Both totals are carried for the caller.
type UnbalancedEntriesError struct {
	EntryCount   int
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
}

func (e *UnbalancedEntriesError) Error() string {
	if e.EntryCount < 2 {
		return fmt.Sprintf("transaction must have at least two entries, got %d", e.EntryCount)
	}
	return fmt.Sprintf("entries do not balance: total debits %s, total credits %s",
		e.TotalDebits.StringFixed(8), e.TotalCredits.StringFixed(8))
}

// Is makes errors.Is(err, ErrValidation) hold for unbalanced entries.
func (e *UnbalancedEntriesError) Is(target error) bool {
	return target == ErrValidation
}

// IsRetryable reports whether err is a rolled-back storage failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}
