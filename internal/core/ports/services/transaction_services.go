package services

import (
	"context"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// TransactionProcessorSvc validates and commits balanced transactions.
type TransactionProcessorSvc interface {
	// CreateTransaction validates the debit=credit invariant and commits the header, entries,
	// balance deltas and audit records as one unit of work.
	CreateTransaction(ctx context.Context, req domain.TransactionRequest, actorID string) (*domain.PostedTransaction, error)

	// ReverseTransaction commits a new transaction that offsets an earlier one.
	ReverseTransaction(ctx context.Context, transactionID string, description string, actorID string) (*domain.PostedTransaction, error)
}

// TransactionReaderSvc defines reads over committed transactions.
type TransactionReaderSvc interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.PostedTransaction, error)
	ListAccountEntries(ctx context.Context, accountID string, userID *string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// TransactionSvcFacade combines all transaction service interfaces.
type TransactionSvcFacade interface {
	TransactionProcessorSvc
	TransactionReaderSvc
}
