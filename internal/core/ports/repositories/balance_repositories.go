package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceReader defines read operations for account balances.
type BalanceReader interface {
	// FindBalance returns the balance for a key, or apperrors.ErrNotFound when the key has
	// no activity.
	FindBalance(ctx context.Context, key domain.BalanceKey) (*domain.AccountBalance, error)
}

// BalanceTxSupport defines balance operations available inside a unit of work.
type BalanceTxSupport interface {
	// ApplyBalanceDelta atomically adds the delta to the key's running totals, creating the
	// row if absent, and returns the balance before and after. Before has a zero LastUpdated
	// when the row was created by this call. Concurrent callers on the same key never lose an
	// update.
	ApplyBalanceDelta(ctx context.Context, delta domain.BalanceDelta, now time.Time) (domain.BalanceChange, error)

	// LockBalance returns the key's balance with the row locked until the unit of work ends,
	// creating a zero row when absent.
	LockBalance(ctx context.Context, key domain.BalanceKey, now time.Time) (domain.AccountBalance, error)

	// SumEntriesByKey replays every ledger entry of the key and returns the debit and credit sums.
	SumEntriesByKey(ctx context.Context, key domain.BalanceKey) (debit decimal.Decimal, credit decimal.Decimal, count int, err error)

	// ReplaceBalance overwrites the key's totals. Only reconciliation uses it; the row must be
	// locked first through LockBalance.
	ReplaceBalance(ctx context.Context, key domain.BalanceKey, debit, credit decimal.Decimal, now time.Time) (domain.AccountBalance, error)
}

// BalanceRepositoryFacade combines balance reads with the unit of work that owns writes.
type BalanceRepositoryFacade interface {
	BalanceReader
	UnitOfWork
}
