package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
	"github.com/SscSPs/ledger_service/internal/middleware"
)

// balanceService maintains the per-key running totals.
type balanceService struct {
	BaseService
	balanceRepo portsrepo.BalanceRepositoryFacade
	accountRepo portsrepo.AccountReader
	auditSvc    portssvc.AuditRecorderSvc
}

// NewBalanceService creates a new BalanceMaintainerSvc.
func NewBalanceService(balanceRepo portsrepo.BalanceRepositoryFacade, accountRepo portsrepo.AccountReader, auditSvc portssvc.AuditRecorderSvc, options ...ServiceOption) portssvc.BalanceMaintainerSvc {
	return &balanceService{
		BaseService: newBaseService(options),
		balanceRepo: balanceRepo,
		accountRepo: accountRepo,
		auditSvc:    auditSvc,
	}
}

var _ portssvc.BalanceMaintainerSvc = (*balanceService)(nil)

// balanceSnapshot is the audit representation of an AccountBalance row.
type balanceSnapshot struct {
	AccountID     string  `json:"accountId"`
	UserID        *string `json:"userId,omitempty"`
	DebitBalance  string  `json:"debitBalance"`
	CreditBalance string  `json:"creditBalance"`
	NetBalance    string  `json:"netBalance"`
}

func snapshotBalance(b domain.AccountBalance) *balanceSnapshot {
	return &balanceSnapshot{
		AccountID:     b.AccountID,
		UserID:        b.UserID,
		DebitBalance:  domain.FormatAmount(b.DebitBalance),
		CreditBalance: domain.FormatAmount(b.CreditBalance),
		NetBalance:    domain.FormatAmount(b.NetBalance()),
	}
}

func (s *balanceService) ApplyDelta(ctx context.Context, tx portsrepo.LedgerTx, delta domain.BalanceDelta, actorID string) (domain.AccountBalance, error) {
	if delta.Debit.IsNegative() || delta.Credit.IsNegative() {
		return domain.AccountBalance{}, apperrors.NewValidationError("balance deltas must not be negative for %s", delta.Key)
	}

	change, err := tx.ApplyBalanceDelta(ctx, delta, s.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to apply balance delta", slog.String("balance_key", delta.Key.String()))
		return domain.AccountBalance{}, err
	}

	var before *balanceSnapshot
	if !change.Before.LastUpdated.IsZero() {
		before = snapshotBalance(change.Before)
	}
	if err := s.auditSvc.Append(ctx, tx, domain.AuditTableAccountBalances, delta.Key.String(),
		auditActor(actorID, delta.Key.UserID()), before, snapshotBalance(change.After)); err != nil {
		return domain.AccountBalance{}, err
	}

	s.LogDebug(ctx, "Balance delta applied",
		slog.String("balance_key", delta.Key.String()),
		slog.String("debit_delta", domain.FormatAmount(delta.Debit)),
		slog.String("credit_delta", domain.FormatAmount(delta.Credit)))
	return change.After, nil
}

func (s *balanceService) GetBalance(ctx context.Context, accountID string, userID *string) (*domain.AccountBalance, error) {
	key := domain.NewBalanceKey(accountID, userID)
	balance, err := s.balanceRepo.FindBalance(ctx, key)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to retrieve balance", slog.String("balance_key", key.String()))
		return nil, fmt.Errorf("failed to retrieve balance: %w", err)
	}

	// No activity yet: zeros, as long as the account exists.
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	zero := domain.ZeroBalance(key)
	return &zero, nil
}

func (s *balanceService) ReconcileBalance(ctx context.Context, accountID string, userID *string, actorID string) (*domain.Reconciliation, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	key := domain.NewBalanceKey(accountID, userID)
	var result domain.Reconciliation
	err := s.balanceRepo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		now := s.Now()
		before, err := tx.LockBalance(ctx, key, now)
		if err != nil {
			return err
		}
		debit, credit, count, err := tx.SumEntriesByKey(ctx, key)
		if err != nil {
			return err
		}

		result = domain.Reconciliation{
			Before:      before,
			After:       before,
			DebitDrift:  before.DebitBalance.Sub(debit),
			CreditDrift: before.CreditBalance.Sub(credit),
			EntryCount:  count,
		}
		if !result.HasDrift() {
			return nil
		}

		after, err := tx.ReplaceBalance(ctx, key, debit, credit, now)
		if err != nil {
			return err
		}
		result.After = after
		return s.auditSvc.Append(ctx, tx, domain.AuditTableAccountBalances, key.String(),
			auditActor(actorID, userID), snapshotBalance(before), snapshotBalance(after))
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reconcile balance", slog.String("balance_key", key.String()))
		return nil, err
	}

	if result.HasDrift() {
		s.GetLogger(ctx).Warn("Balance drift corrected by replay",
			slog.String("balance_key", key.String()),
			slog.String("debit_drift", domain.FormatAmount(result.DebitDrift)),
			slog.String("credit_drift", domain.FormatAmount(result.CreditDrift)),
			slog.Int("entry_count", result.EntryCount))
	} else {
		s.LogInfo(ctx, "Balance reconciled without drift", slog.String("balance_key", key.String()), slog.Int("entry_count", result.EntryCount))
	}
	return &result, nil
}

// auditActor returns the user recorded on an audit row: the authenticated actor, or the
// affected user when the call was made by the system.
func auditActor(actorID string, fallback *string) *string {
	if actorID != "" && actorID != middleware.AnonymousActor {
		return &actorID
	}
	return fallback
}
