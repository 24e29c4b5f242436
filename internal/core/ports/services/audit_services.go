package services

import (
	"context"

	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
)

// AuditRecorderSvc appends to and queries the audit trail.
type AuditRecorderSvc interface {
	// Append records a mutation through the caller's unit of work. oldValues and newValues are
	// marshalled to JSON; nil means absent.
	Append(ctx context.Context, w portsrepo.AuditWriter, tableName, recordID string, userID *string, oldValues, newValues any) error

	// Query returns audit entries matching the filter, newest first.
	Query(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditTrailEntry, error)

	// Verify recomputes checksums for one page of the trail.
	Verify(ctx context.Context, page, limit int) (*domain.AuditVerification, error)
}
