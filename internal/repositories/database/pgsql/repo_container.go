package pgsql

import (
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every repository onto one connection pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		BalanceRepo:     newPgxBalanceRepository(dbPool),
		AuditRepo:       newPgxAuditRepository(dbPool),
		ReportingRepo:   newPgxReportingRepository(dbPool),
		Health:          &BaseRepository{Pool: dbPool},
	}
}
