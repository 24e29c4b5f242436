package repositories

import (
	"context"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// AuditReader defines queries over the audit trail.
type AuditReader interface {
	// QueryAudit returns entries matching the filter, newest first.
	QueryAudit(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditTrailEntry, error)
}

// AuditWriter appends to the audit trail. There is deliberately no update or delete.
type AuditWriter interface {
	AppendAudit(ctx context.Context, entry domain.AuditTrailEntry) error
}

// AuditRepositoryFacade combines audit reads with the unit of work that owns appends.
type AuditRepositoryFacade interface {
	AuditReader
	UnitOfWork
}
