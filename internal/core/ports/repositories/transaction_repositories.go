package repositories

import (
	"context"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// TransactionReader defines read operations for committed transactions and their entries.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction header.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindEntriesByTransactionID retrieves the entries of a transaction in submission order.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)

	// FindTransactionsByReference retrieves transactions carrying the given reference id and type.
	FindTransactionsByReference(ctx context.Context, referenceID string, txnType string) ([]domain.Transaction, error)

	// ListEntriesByAccount retrieves a page of an account's entries, newest first, and a token
	// for the next page. A nil userID lists entries of every user.
	ListEntriesByAccount(ctx context.Context, accountID string, userID *string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// TransactionWriter defines the append-only writes for transactions.
type TransactionWriter interface {
	// InsertTransaction writes a transaction header.
	InsertTransaction(ctx context.Context, txn domain.Transaction) error

	// InsertEntries writes the entries of one transaction.
	InsertEntries(ctx context.Context, entries []domain.LedgerEntry) error
}

// TransactionRepositoryFacade combines transaction reads with the unit of work that owns writes.
type TransactionRepositoryFacade interface {
	TransactionReader
	UnitOfWork
}
