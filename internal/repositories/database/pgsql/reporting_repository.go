package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxReportingRepository runs read-only aggregations.
type PgxReportingRepository struct {
	BaseRepository
}

func newPgxReportingRepository(pool *pgxpool.Pool) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

const trialBalanceLiveQuery = `
	SELECT a.account_id, a.code, a.name, a.account_type, a.normal_balance,
	       COALESCE(SUM(b.debit_balance), 0), COALESCE(SUM(b.credit_balance), 0)
	FROM accounts a
	LEFT JOIN account_balances b ON b.account_id = a.account_id
	WHERE a.is_active = TRUE
	GROUP BY a.account_id, a.code, a.name, a.account_type, a.normal_balance
	ORDER BY a.code;
`

const trialBalanceAsOfQuery = `
	SELECT a.account_id, a.code, a.name, a.account_type, a.normal_balance,
	       COALESCE(s.debit_total, 0), COALESCE(s.credit_total, 0)
	FROM accounts a
	LEFT JOIN (
		SELECT e.account_id, SUM(e.debit_amount) AS debit_total, SUM(e.credit_amount) AS credit_total
		FROM ledger_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE t.transaction_date <= $1
		GROUP BY e.account_id
	) s ON s.account_id = a.account_id
	WHERE a.is_active = TRUE
	ORDER BY a.code;
`

// GetTrialBalanceData returns one row per active account ordered by code.
func (r *PgxReportingRepository) GetTrialBalanceData(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if asOf == nil {
		rows, err = r.Pool.Query(ctx, trialBalanceLiveQuery)
	} else {
		rows, err = r.Pool.Query(ctx, trialBalanceAsOfQuery, *asOf)
	}
	if err != nil {
		return nil, classifyError("failed to query trial balance", err)
	}
	defer rows.Close()

	result := make([]domain.TrialBalanceRow, 0)
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType, normalBalance string
		if err := rows.Scan(
			&row.AccountID,
			&row.Code,
			&row.Name,
			&accountType,
			&normalBalance,
			&row.DebitBalance,
			&row.CreditBalance,
		); err != nil {
			return nil, classifyError("failed to scan trial balance row", err)
		}
		row.AccountType = domain.AccountType(accountType)
		row.NormalBalance = domain.NormalBalance(normalBalance)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("error iterating trial balance rows", err)
	}
	return result, nil
}
