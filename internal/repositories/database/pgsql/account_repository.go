package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, code, name, account_type, normal_balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxAccountRepository reads the chart of accounts.
type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (domain.Account, error) {
	var acc domain.Account
	var accountType, normalBalance string
	err := row.Scan(
		&acc.AccountID,
		&acc.Code,
		&acc.Name,
		&accountType,
		&normalBalance,
		&acc.IsActive,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	acc.AccountType = domain.AccountType(accountType)
	acc.NormalBalance = domain.NormalBalance(normalBalance)
	return acc, err
}

func collectAccounts(rows pgx.Rows, op string) ([]domain.Account, error) {
	defer rows.Close()
	accounts := make([]domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, classifyError("failed to scan account row: "+op, err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("error iterating account rows: "+op, err)
	}
	return accounts, nil
}

// FindAccountByID retrieves a specific account by its unique identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s", accountID))
		}
		return nil, classifyError("failed to find account "+accountID, err)
	}
	return &acc, nil
}

// ListAccounts retrieves accounts matching the filter, ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 1)
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conditions = append(conditions, fmt.Sprintf("account_type = $%d", len(args)))
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY code;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyError("failed to list accounts", err)
	}
	return collectAccounts(rows, "list accounts")
}

// FindAccountsByIDsForShare implements portsrepo.AccountTxSupport. Rows are locked in
// account_id order.
func (t *pgxLedgerTx) FindAccountsByIDsForShare(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR SHARE;`
	rows, err := t.tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, classifyError("failed to lock accounts", err)
	}
	accounts, err := collectAccounts(rows, "lock accounts")
	if err != nil {
		return nil, err
	}

	result := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		result[acc.AccountID] = acc
	}
	return result, nil
}

// SaveAccountInTx implements portsrepo.AccountTxSupport.
func (t *pgxLedgerTx) SaveAccountInTx(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := t.tx.Exec(ctx, query,
		account.AccountID,
		account.Code,
		account.Name,
		string(account.AccountType),
		string(account.NormalBalance),
		account.IsActive,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return classifyError("failed to insert account "+account.Code, err)
	}
	return nil
}

// DeactivateAccountInTx implements portsrepo.AccountTxSupport.
func (t *pgxLedgerTx) DeactivateAccountInTx(ctx context.Context, accountID string, userID string, now time.Time) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`
	prev, err := scanAccount(t.tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s", accountID))
		}
		return nil, classifyError("failed to lock account "+accountID, err)
	}
	if !prev.IsActive {
		return &prev, nil
	}

	_, err = t.tx.Exec(ctx, `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1;
	`, accountID, now, userID)
	if err != nil {
		return nil, classifyError("failed to deactivate account "+accountID, err)
	}
	return &prev, nil
}
