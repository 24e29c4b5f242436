package repositories

import (
	"context"
)

// LedgerTx groups the writes allowed inside one unit of work. Every method observes the
// writes already made through the same LedgerTx.
type LedgerTx interface {
	AccountTxSupport
	TransactionWriter
	BalanceTxSupport
	AuditWriter
}

// UnitOfWork runs fn inside one atomic unit of work. If fn returns an error, or the commit
// fails, nothing written through the LedgerTx persists.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
