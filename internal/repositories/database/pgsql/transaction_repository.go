package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_service/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, description, type, user_id, total_amount, reference_id,
	metadata, transaction_date, created_at, created_by`

const entryColumns = `e.entry_id, e.transaction_id, e.account_id, e.user_id, e.debit_amount, e.credit_amount,
	e.description, e.reference_type, e.reference_id, e.metadata, e.line_no, e.created_at`

// PgxTransactionRepository reads committed transactions and their ledger entries.
type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var txn domain.Transaction
	var metadata []byte
	err := row.Scan(
		&txn.TransactionID,
		&txn.Description,
		&txn.Type,
		&txn.UserID,
		&txn.TotalAmount,
		&txn.ReferenceID,
		&metadata,
		&txn.TransactionDate,
		&txn.CreatedAt,
		&txn.CreatedBy,
	)
	txn.Metadata = metadata
	return txn, err
}

// scanEntry scans entryColumns, followed by any extra destinations.
func scanEntry(row pgx.Row, extra ...any) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var metadata []byte
	dest := []any{
		&e.EntryID,
		&e.TransactionID,
		&e.AccountID,
		&e.UserID,
		&e.DebitAmount,
		&e.CreditAmount,
		&e.Description,
		&e.ReferenceType,
		&e.ReferenceID,
		&metadata,
		&e.LineNo,
		&e.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	e.Metadata = metadata
	return e, err
}

// FindTransactionByID retrieves a transaction header.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s", transactionID))
		}
		return nil, classifyError("failed to find transaction "+transactionID, err)
	}
	return &txn, nil
}

// FindEntriesByTransactionID retrieves the entries of a transaction in submission order.
func (r *PgxTransactionRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries e WHERE e.transaction_id = $1 ORDER BY e.line_no;`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, classifyError("failed to query entries for transaction "+transactionID, err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, classifyError("failed to scan entry row for transaction "+transactionID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("error iterating entry rows for transaction "+transactionID, err)
	}
	return entries, nil
}

// FindTransactionsByReference retrieves transactions carrying the given reference id and type.
func (r *PgxTransactionRepository) FindTransactionsByReference(ctx context.Context, referenceID string, txnType string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference_id = $1 AND type = $2 ORDER BY created_at;`
	rows, err := r.Pool.Query(ctx, query, referenceID, txnType)
	if err != nil {
		return nil, classifyError("failed to query transactions by reference "+referenceID, err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, classifyError("failed to scan transaction row", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("error iterating transaction rows", err)
	}
	return txns, nil
}

// ListEntriesByAccount retrieves a page of an account's entries using token-based pagination.
func (r *PgxTransactionRepository) ListEntriesByAccount(ctx context.Context, accountID string, userID *string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `
		SELECT ` + entryColumns + `, t.transaction_date
		FROM ledger_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $1`
	args := []any{accountID}

	if userID != nil {
		args = append(args, *userID)
		query += " AND e.user_id = $" + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeEntryCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid nextToken: %v", err)
		}
		// Tuple comparison matches the ORDER BY below.
		args = append(args, cursor.CreatedAt, cursor.TransactionID, cursor.LineNo)
		n := len(args)
		query += fmt.Sprintf(` AND (e.created_at, e.transaction_id COLLATE "C", e.line_no) < ($%d::timestamptz, $%d::text COLLATE "C", $%d::int)`, n-2, n-1, n)
	}
	args = append(args, fetchLimit)
	query += ` ORDER BY e.created_at DESC, e.transaction_id COLLATE "C" DESC, e.line_no DESC LIMIT $` + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, classifyError("failed to query entries for account "+accountID, err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, fetchLimit)
	for rows.Next() {
		var txnDate time.Time
		e, err := scanEntry(rows, &txnDate)
		if err != nil {
			return nil, nil, classifyError("failed to scan entry row for account "+accountID, err)
		}
		e.TransactionDate = txnDate
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, classifyError("error iterating entry rows for account "+accountID, err)
	}

	if len(entries) <= limit {
		return entries, nil, nil
	}
	entries = entries[:limit]
	last := entries[len(entries)-1]
	token := pagination.EncodeEntryCursor(pagination.EntryCursor{
		CreatedAt:     last.CreatedAt,
		TransactionID: last.TransactionID,
		LineNo:        last.LineNo,
	})
	return entries, &token, nil
}

// InsertTransaction implements portsrepo.TransactionWriter.
func (t *pgxLedgerTx) InsertTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := t.tx.Exec(ctx, query,
		txn.TransactionID,
		txn.Description,
		txn.Type,
		txn.UserID,
		txn.TotalAmount,
		txn.ReferenceID,
		nullableJSON(txn.Metadata),
		txn.TransactionDate,
		txn.CreatedAt,
		txn.CreatedBy,
	)
	if err != nil {
		return classifyError("failed to insert transaction "+txn.TransactionID, err)
	}
	return nil
}

// InsertEntries implements portsrepo.TransactionWriter using a single batch round trip.
func (t *pgxLedgerTx) InsertEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO ledger_entries (entry_id, transaction_id, account_id, user_id, debit_amount, credit_amount,
			description, reference_type, reference_id, metadata, line_no, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, e := range entries {
		batch.Queue(query,
			e.EntryID,
			e.TransactionID,
			e.AccountID,
			e.UserID,
			e.DebitAmount,
			e.CreditAmount,
			e.Description,
			e.ReferenceType,
			e.ReferenceID,
			nullableJSON(e.Metadata),
			e.LineNo,
			e.CreatedAt,
		)
	}

	br := t.tx.SendBatch(ctx, batch)
	for i := range entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return classifyError(fmt.Sprintf("failed to insert entry %d of transaction %s", i+1, entries[i].TransactionID), err)
		}
	}
	if err := br.Close(); err != nil {
		return classifyError("failed to close entry batch", err)
	}
	return nil
}

// nullableJSON turns an empty document into SQL NULL.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
