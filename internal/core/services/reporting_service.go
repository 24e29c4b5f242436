package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService:   newBaseService(options),
		reportingRepo: repo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance generates a trial balance report, optionally as of a specific time.
// An unbalanced ledger is reported, never turned into an error.
func (s *reportingService) TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalanceReport, error) {
	asOfAttr := slog.String("asOf", "latest")
	if asOf != nil {
		asOfAttr = slog.String("asOf", asOf.Format(time.RFC3339))
	}

	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data", asOfAttr)
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}
	if rows == nil {
		rows = []domain.TrialBalanceRow{}
	}

	report := &domain.TrialBalanceReport{
		AsOf:     asOf,
		Accounts: rows,
		Totals:   domain.ComputeTrialBalanceTotals(rows),
	}

	if !report.Totals.IsBalanced {
		s.GetLogger(ctx).Warn("Trial balance does not balance",
			asOfAttr,
			slog.String("total_debits", domain.FormatAmount(report.Totals.TotalDebits)),
			slog.String("total_credits", domain.FormatAmount(report.Totals.TotalCredits)),
			slog.String("difference", domain.FormatAmount(report.Totals.Difference)))
	}
	s.LogInfo(ctx, "Trial balance report generated successfully", asOfAttr, slog.Int("row_count", len(rows)))
	return report, nil
}
