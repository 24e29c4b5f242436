package pgsql

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		target     error
		retryable  bool
		wantPublic string
	}{
		{"unique violation on account code", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_code_key"}, apperrors.ErrDuplicate, false, "account code already exists"},
		{"second reversal", &pgconn.PgError{Code: "23505", ConstraintName: "uq_transactions_single_reversal"}, apperrors.ErrDuplicate, false, "transaction has already been reversed"},
		{"unique violation elsewhere", &pgconn.PgError{Code: "23505", ConstraintName: "ledger_entries_pkey"}, apperrors.ErrDuplicate, false, "resource already exists"},
		{"foreign key on account", &pgconn.PgError{Code: "23503", ConstraintName: "ledger_entries_account_id_fkey"}, apperrors.ErrNotFound, false, "referenced account not found"},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, apperrors.ErrNotFound, false, "referenced record not found"},
		{"check violation", &pgconn.PgError{Code: "23514", ConstraintName: "chk_ledger_entries_nonzero"}, apperrors.ErrValidation, false, "value violates a ledger constraint"},
		{"numeric out of range", &pgconn.PgError{Code: "22003"}, apperrors.ErrValidation, false, "amount out of range"},
		{"invalid text representation", &pgconn.PgError{Code: "22P02"}, apperrors.ErrValidation, false, "invalid input value"},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, apperrors.ErrPersistence, true, ""},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, apperrors.ErrPersistence, true, ""},
		{"context cancelled", context.Canceled, apperrors.ErrPersistence, true, ""},
		{"unknown", errors.New("broken pipe"), apperrors.ErrPersistence, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError("failed to insert account CASH", tt.err)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.retryable, apperrors.IsRetryable(err))
			if tt.wantPublic != "" {
				assert.Equal(t, tt.wantPublic, apperrors.PublicMessage(err))
				assert.Contains(t, err.Error(), "failed to insert account CASH", "operation is kept for the logs")
			}
		})
	}
	assert.NoError(t, classifyError("op", nil))
}

func TestClassifyError_PublicMessageHidesConstraint(t *testing.T) {
	err := classifyError("failed to insert account CASH", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_code_key"})

	assert.Contains(t, err.Error(), "accounts_code_key")
	assert.NotContains(t, apperrors.PublicMessage(err), "accounts_code_key")
	assert.NotContains(t, apperrors.PublicMessage(err), "CASH")
}
