package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
	"github.com/google/uuid"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// auditService records and queries the append-only audit trail.
type auditService struct {
	BaseService
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewAuditService creates a new AuditRecorderSvc.
func NewAuditService(repo portsrepo.AuditRepositoryFacade, options ...ServiceOption) portssvc.AuditRecorderSvc {
	return &auditService{
		BaseService: newBaseService(options),
		auditRepo:   repo,
	}
}

var _ portssvc.AuditRecorderSvc = (*auditService)(nil)

func (s *auditService) Append(ctx context.Context, w portsrepo.AuditWriter, tableName, recordID string, userID *string, oldValues, newValues any) error {
	oldJSON, err := marshalAuditValues(oldValues)
	if err != nil {
		return fmt.Errorf("failed to marshal old audit values for %s/%s: %w", tableName, recordID, err)
	}
	newJSON, err := marshalAuditValues(newValues)
	if err != nil {
		return fmt.Errorf("failed to marshal new audit values for %s/%s: %w", tableName, recordID, err)
	}

	entry := domain.AuditTrailEntry{
		AuditID:   uuid.NewString(),
		TableName: tableName,
		RecordID:  recordID,
		UserID:    userID,
		OldValues: oldJSON,
		NewValues: newJSON,
		Timestamp: s.Now(),
	}
	entry.Checksum = entry.ComputeChecksum()

	if err := w.AppendAudit(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to append audit record",
			slog.String("table_name", tableName),
			slog.String("record_id", recordID))
		return err
	}
	return nil
}

func (s *auditService) Query(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditTrailEntry, error) {
	filter = normalizeAuditFilter(filter)
	entries, err := s.auditRepo.QueryAudit(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to query audit trail", slog.Int("page", filter.Page), slog.Int("limit", filter.Limit))
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}
	return entries, nil
}

func (s *auditService) Verify(ctx context.Context, page, limit int) (*domain.AuditVerification, error) {
	entries, err := s.Query(ctx, domain.AuditFilter{Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}

	result := &domain.AuditVerification{Checked: len(entries), Mismatched: []string{}}
	for _, e := range entries {
		if e.ComputeChecksum() != e.Checksum {
			result.Mismatched = append(result.Mismatched, e.AuditID)
		}
	}
	if len(result.Mismatched) > 0 {
		s.GetLogger(ctx).Warn("Audit checksum mismatches found",
			slog.Int("checked", result.Checked),
			slog.Int("mismatched", len(result.Mismatched)))
	}
	return result, nil
}

func normalizeAuditFilter(f domain.AuditFilter) domain.AuditFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultAuditLimit
	}
	if f.Limit > maxAuditLimit {
		f.Limit = maxAuditLimit
	}
	return f
}

func marshalAuditValues(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.NewValidationError("audit values are not serializable: %v", err)
	}
	if string(b) == "null" {
		return nil, nil
	}
	return b, nil
}
