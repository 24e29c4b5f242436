package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// ReportingRepository defines read-only aggregations for reports.
type ReportingRepository interface {
	// GetTrialBalanceData returns one row per active account ordered by code. Without asOf the
	// rows come from the maintained balances; with asOf they are summed from ledger entries of
	// transactions dated on or before asOf. Accounts without activity get zero rows.
	GetTrialBalanceData(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error)
}
