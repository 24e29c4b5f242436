package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// ReportingService defines the interface for financial reports.
type ReportingService interface {
	// TrialBalance reports every active account with its totals. A nil asOf uses the
	// maintained balances.
	TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalanceReport, error)
}
