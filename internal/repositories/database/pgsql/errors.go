package pgsql

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes and classes the store maps onto caller errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
	pgDataExceptionClass  = "22"
)

// Caller-facing messages for known unique constraints.
var duplicateMessages = map[string]string{
	"accounts_code_key":               "account code already exists",
	"uq_transactions_single_reversal": "transaction has already been reversed",
}

// classifyError maps a driver error onto the application error taxonomy. Constraint
// violations and data exceptions are caller errors with a fixed message; the operation
// and constraint stay in the wrapped cause. Everything else (serialization failures,
// deadlocks, dropped connections, cancelled statements) is a retryable persistence failure.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detail := op
		if pgErr.ConstraintName != "" {
			detail += " (" + pgErr.ConstraintName + ")"
		}
		cause := fmt.Errorf("%s: %w", detail, err)
		switch {
		case pgErr.Code == pgUniqueViolation:
			msg, ok := duplicateMessages[pgErr.ConstraintName]
			if !ok {
				msg = "resource already exists"
			}
			return apperrors.NewStoreError(http.StatusConflict, apperrors.ErrDuplicate, msg, cause)
		case pgErr.Code == pgForeignKeyViolation:
			msg := "referenced record not found"
			if strings.Contains(pgErr.ConstraintName, "account_id") {
				msg = "referenced account not found"
			}
			return apperrors.NewStoreError(http.StatusNotFound, apperrors.ErrNotFound, msg, cause)
		case pgErr.Code == pgCheckViolation:
			return apperrors.NewStoreError(http.StatusBadRequest, apperrors.ErrValidation, "value violates a ledger constraint", cause)
		case pgErr.Code == pgNumericOutOfRange:
			return apperrors.NewStoreError(http.StatusBadRequest, apperrors.ErrValidation, "amount out of range", cause)
		case strings.HasPrefix(pgErr.Code, pgDataExceptionClass):
			return apperrors.NewStoreError(http.StatusBadRequest, apperrors.ErrValidation, "invalid input value", cause)
		}
	}
	return apperrors.NewPersistenceError(op, err)
}
