package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxBalanceRepository reads the maintained running balances.
type PgxBalanceRepository struct {
	BaseRepository
}

func newPgxBalanceRepository(pool *pgxpool.Pool) *PgxBalanceRepository {
	return &PgxBalanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BalanceRepositoryFacade = (*PgxBalanceRepository)(nil)

func scanBalance(row pgx.Row, key domain.BalanceKey) (domain.AccountBalance, error) {
	bal := domain.ZeroBalance(key)
	err := row.Scan(&bal.DebitBalance, &bal.CreditBalance, &bal.LastUpdated)
	return bal, err
}

// FindBalance returns the balance for a key, or apperrors.ErrNotFound when the key has no activity.
func (r *PgxBalanceRepository) FindBalance(ctx context.Context, key domain.BalanceKey) (*domain.AccountBalance, error) {
	query := `
		SELECT debit_balance, credit_balance, last_updated
		FROM account_balances
		WHERE account_id = $1 AND user_key = $2;
	`
	bal, err := scanBalance(r.Pool.QueryRow(ctx, query, key.AccountID, key.UserKey), key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("balance %s", key))
		}
		return nil, classifyError("failed to find balance "+key.String(), err)
	}
	return &bal, nil
}

// ApplyBalanceDelta implements portsrepo.BalanceTxSupport. The upsert takes the row lock,
// so concurrent units of work touching the same key serialize on it.
func (t *pgxLedgerTx) ApplyBalanceDelta(ctx context.Context, delta domain.BalanceDelta, now time.Time) (domain.BalanceChange, error) {
	query := `
		INSERT INTO account_balances (account_id, user_key, debit_balance, credit_balance, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, user_key) DO UPDATE
		SET debit_balance  = account_balances.debit_balance + EXCLUDED.debit_balance,
		    credit_balance = account_balances.credit_balance + EXCLUDED.credit_balance,
		    last_updated   = EXCLUDED.last_updated
		RETURNING debit_balance, credit_balance, last_updated, (xmax = 0) AS inserted;
	`
	key := delta.Key
	after := domain.ZeroBalance(key)
	var inserted bool
	err := t.tx.QueryRow(ctx, query, key.AccountID, key.UserKey, delta.Debit, delta.Credit, now).
		Scan(&after.DebitBalance, &after.CreditBalance, &after.LastUpdated, &inserted)
	if err != nil {
		return domain.BalanceChange{}, classifyError("failed to apply balance delta "+key.String(), err)
	}

	before := after
	before.DebitBalance = after.DebitBalance.Sub(delta.Debit)
	before.CreditBalance = after.CreditBalance.Sub(delta.Credit)
	if inserted {
		before.LastUpdated = time.Time{}
	}
	return domain.BalanceChange{Before: before, After: after}, nil
}

// LockBalance implements portsrepo.BalanceTxSupport.
func (t *pgxLedgerTx) LockBalance(ctx context.Context, key domain.BalanceKey, now time.Time) (domain.AccountBalance, error) {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO account_balances (account_id, user_key, debit_balance, credit_balance, last_updated)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (account_id, user_key) DO NOTHING;
	`, key.AccountID, key.UserKey, now)
	if err != nil {
		return domain.AccountBalance{}, classifyError("failed to create balance row "+key.String(), err)
	}

	query := `
		SELECT debit_balance, credit_balance, last_updated
		FROM account_balances
		WHERE account_id = $1 AND user_key = $2
		FOR UPDATE;
	`
	bal, err := scanBalance(t.tx.QueryRow(ctx, query, key.AccountID, key.UserKey), key)
	if err != nil {
		return domain.AccountBalance{}, classifyError("failed to lock balance "+key.String(), err)
	}
	return bal, nil
}

// SumEntriesByKey implements portsrepo.BalanceTxSupport.
func (t *pgxLedgerTx) SumEntriesByKey(ctx context.Context, key domain.BalanceKey) (decimal.Decimal, decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(debit_amount), 0), COALESCE(SUM(credit_amount), 0), COUNT(*)
		FROM ledger_entries
		WHERE account_id = $1 AND user_key = $2;
	`
	var debit, credit decimal.Decimal
	var count int
	if err := t.tx.QueryRow(ctx, query, key.AccountID, key.UserKey).Scan(&debit, &credit, &count); err != nil {
		return decimal.Zero, decimal.Zero, 0, classifyError("failed to sum entries "+key.String(), err)
	}
	return debit, credit, count, nil
}

// ReplaceBalance implements portsrepo.BalanceTxSupport.
func (t *pgxLedgerTx) ReplaceBalance(ctx context.Context, key domain.BalanceKey, debit, credit decimal.Decimal, now time.Time) (domain.AccountBalance, error) {
	query := `
		UPDATE account_balances
		SET debit_balance = $3, credit_balance = $4, last_updated = $5
		WHERE account_id = $1 AND user_key = $2
		RETURNING debit_balance, credit_balance, last_updated;
	`
	bal, err := scanBalance(t.tx.QueryRow(ctx, query, key.AccountID, key.UserKey, debit, credit, now), key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AccountBalance{}, apperrors.NewNotFoundError(fmt.Sprintf("balance %s", key))
		}
		return domain.AccountBalance{}, classifyError("failed to replace balance "+key.String(), err)
	}
	return bal, nil
}
