package services

import (
	"context"

	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
)

// BalanceMaintainerSvc owns the running debit/credit totals.
type BalanceMaintainerSvc interface {
	// ApplyDelta adds the delta to the key's totals inside the caller's unit of work and
	// records the change in the audit trail.
	ApplyDelta(ctx context.Context, tx portsrepo.LedgerTx, delta domain.BalanceDelta, actorID string) (domain.AccountBalance, error)

	// GetBalance returns the key's balance, zeros when it has no activity.
	GetBalance(ctx context.Context, accountID string, userID *string) (*domain.AccountBalance, error)

	// ReconcileBalance rebuilds the key's balance by replaying all of its ledger entries.
	ReconcileBalance(ctx context.Context, accountID string, userID *string, actorID string) (*domain.Reconciliation, error)
}
