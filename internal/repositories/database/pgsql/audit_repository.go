package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auditColumns = `audit_id, table_name, record_id, user_id, old_values, new_values, audit_timestamp, checksum`

// PgxAuditRepository queries the append-only audit trail.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// QueryAudit returns entries matching the filter, newest first.
func (r *PgxAuditRepository) QueryAudit(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditTrailEntry, error) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 5)
	addCondition := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addCondition("table_name", filter.TableName)
	addCondition("record_id", filter.RecordID)
	addCondition("user_id", filter.UserID)

	query := `SELECT ` + auditColumns + ` FROM audit_trail`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY audit_timestamp DESC, seq DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	args = append(args, filter.Offset())
	query += fmt.Sprintf(" OFFSET $%d;", len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyError("failed to query audit trail", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditTrailEntry, 0)
	for rows.Next() {
		var e domain.AuditTrailEntry
		var oldValues, newValues []byte
		if err := rows.Scan(
			&e.AuditID,
			&e.TableName,
			&e.RecordID,
			&e.UserID,
			&oldValues,
			&newValues,
			&e.Timestamp,
			&e.Checksum,
		); err != nil {
			return nil, classifyError("failed to scan audit row", err)
		}
		e.OldValues = oldValues
		e.NewValues = newValues
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("error iterating audit rows", err)
	}
	return entries, nil
}

// AppendAudit implements portsrepo.AuditWriter.
func (t *pgxLedgerTx) AppendAudit(ctx context.Context, entry domain.AuditTrailEntry) error {
	query := `
		INSERT INTO audit_trail (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := t.tx.Exec(ctx, query,
		entry.AuditID,
		entry.TableName,
		entry.RecordID,
		entry.UserID,
		nullableJSON(entry.OldValues),
		nullableJSON(entry.NewValues),
		entry.Timestamp,
		entry.Checksum,
	)
	if err != nil {
		return classifyError("failed to append audit entry for "+entry.TableName+" "+entry.RecordID, err)
	}
	return nil
}
