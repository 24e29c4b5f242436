package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultEntriesLimit = 50
	maxEntriesLimit     = 500
)

// transactionService validates and commits balanced transactions.
type transactionService struct {
	BaseService
	txnRepo    portsrepo.TransactionRepositoryFacade
	accountSvc portssvc.AccountReaderSvc
	balanceSvc portssvc.BalanceMaintainerSvc
	auditSvc   portssvc.AuditRecorderSvc
}

// NewTransactionService creates a new TransactionSvcFacade.
func NewTransactionService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	accountSvc portssvc.AccountReaderSvc,
	balanceSvc portssvc.BalanceMaintainerSvc,
	auditSvc portssvc.AuditRecorderSvc,
	options ...ServiceOption,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		BaseService: newBaseService(options),
		txnRepo:     txnRepo,
		accountSvc:  accountSvc,
		balanceSvc:  balanceSvc,
		auditSvc:    auditSvc,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// validateTransactionRequest checks every precondition that does not need storage.
// It runs before the unit of work starts so a rejected request writes nothing.
func validateTransactionRequest(req domain.TransactionRequest) error {
	debits, credits := req.Totals()
	if len(req.Entries) < 2 {
		return &apperrors.UnbalancedEntriesError{EntryCount: len(req.Entries), TotalDebits: debits, TotalCredits: credits}
	}
	if strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("transaction description is required")
	}
	if strings.TrimSpace(req.Type) == "" {
		return apperrors.NewValidationError("transaction type is required")
	}
	if req.UserID != nil && strings.TrimSpace(*req.UserID) == "" {
		return apperrors.NewValidationError("transaction userId must not be empty")
	}
	if req.Metadata != nil && !json.Valid(req.Metadata) {
		return apperrors.NewValidationError("transaction metadata must be valid JSON")
	}

	for i, e := range req.Entries {
		if strings.TrimSpace(e.AccountID) == "" {
			return apperrors.NewValidationError("entry %d: accountId is required", i)
		}
		if e.UserID != nil && strings.TrimSpace(*e.UserID) == "" {
			return apperrors.NewValidationError("entry %d: userId must not be empty", i)
		}
		for _, amt := range []decimal.Decimal{e.DebitAmount, e.CreditAmount} {
			if err := domain.CheckAmount(amt); err != nil {
				return apperrors.NewValidationError("entry %d: amount %v", i, err)
			}
		}
		if e.DebitAmount.IsZero() && e.CreditAmount.IsZero() {
			return apperrors.NewValidationError("entry %d: debitAmount or creditAmount must be positive", i)
		}
		if e.Metadata != nil && !json.Valid(e.Metadata) {
			return apperrors.NewValidationError("entry %d: metadata must be valid JSON", i)
		}
	}

	if err := domain.CheckAmount(debits); err != nil {
		return apperrors.NewValidationError("total debits %v", err)
	}
	if err := domain.CheckAmount(credits); err != nil {
		return apperrors.NewValidationError("total credits %v", err)
	}
	if !debits.Equal(credits) {
		return &apperrors.UnbalancedEntriesError{EntryCount: len(req.Entries), TotalDebits: debits, TotalCredits: credits}
	}
	return nil
}

// aggregateDeltas nets the entries per balance key and returns the deltas in key order.
func aggregateDeltas(entries []domain.LedgerEntry) []domain.BalanceDelta {
	byKey := make(map[domain.BalanceKey]*domain.BalanceDelta)
	for _, e := range entries {
		k := e.Key()
		d, ok := byKey[k]
		if !ok {
			d = &domain.BalanceDelta{Key: k, Debit: decimal.Zero, Credit: decimal.Zero}
			byKey[k] = d
		}
		d.Debit = d.Debit.Add(e.DebitAmount)
		d.Credit = d.Credit.Add(e.CreditAmount)
	}

	deltas := make([]domain.BalanceDelta, 0, len(byKey))
	for _, d := range byKey {
		deltas = append(deltas, *d)
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Key.Less(deltas[j].Key) })
	return deltas
}

func distinctAccountIDs(req domain.TransactionRequest) []string {
	seen := make(map[string]struct{}, len(req.Entries))
	ids := make([]string, 0, len(req.Entries))
	for _, e := range req.Entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}
	sort.Strings(ids)
	return ids
}

// CreateTransaction implements portssvc.TransactionProcessorSvc.
func (s *transactionService) CreateTransaction(ctx context.Context, req domain.TransactionRequest, actorID string) (*domain.PostedTransaction, error) {
	logger := s.GetLogger(ctx)

	if err := validateTransactionRequest(req); err != nil {
		logger.Warn("Transaction rejected", slog.String("error", err.Error()), slog.Int("entry_count", len(req.Entries)))
		return nil, err
	}

	now := s.Now()
	totalDebits, _ := req.Totals()
	txnDate := now
	if req.TransactionDate != nil {
		txnDate = req.TransactionDate.UTC().Truncate(time.Microsecond)
	}

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		Description:     strings.TrimSpace(req.Description),
		Type:            strings.TrimSpace(req.Type),
		UserID:          req.UserID,
		TotalAmount:     totalDebits,
		ReferenceID:     req.ReferenceID,
		Metadata:        req.Metadata,
		TransactionDate: txnDate,
		CreatedAt:       now,
		CreatedBy:       actorID,
	}
	entries := make([]domain.LedgerEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = domain.LedgerEntry{
			EntryID:       uuid.NewString(),
			TransactionID: txn.TransactionID,
			AccountID:     e.AccountID,
			UserID:        e.UserID,
			DebitAmount:   e.DebitAmount,
			CreditAmount:  e.CreditAmount,
			Description:   e.Description,
			ReferenceType: e.ReferenceType,
			ReferenceID:   e.ReferenceID,
			Metadata:      e.Metadata,
			CreatedAt:     now,
			LineNo:        i + 1,
		}
	}
	posted := &domain.PostedTransaction{Transaction: txn, Entries: entries}

	err := s.txnRepo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		accountIDs := distinctAccountIDs(req)
		accounts, err := tx.FindAccountsByIDsForShare(ctx, accountIDs)
		if err != nil {
			return err
		}
		for _, id := range accountIDs {
			acc, ok := accounts[id]
			if !ok {
				return apperrors.NewNotFoundError(fmt.Sprintf("account %s", id))
			}
			if !acc.IsActive {
				return apperrors.NewValidationError("account %s (%s) is inactive", acc.AccountID, acc.Code)
			}
		}

		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		if err := tx.InsertEntries(ctx, entries); err != nil {
			return err
		}
		for _, delta := range aggregateDeltas(entries) {
			if _, err := s.balanceSvc.ApplyDelta(ctx, tx, delta, actorID); err != nil {
				return err
			}
		}
		return s.auditSvc.Append(ctx, tx, domain.AuditTableTransactions, txn.TransactionID,
			auditActor(actorID, txn.UserID), nil, posted)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to commit transaction",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("type", txn.Type))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction committed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", txn.Type),
		slog.String("total_amount", domain.FormatAmount(txn.TotalAmount)),
		slog.Int("entry_count", len(entries)))
	return posted, nil
}

// GetTransaction implements portssvc.TransactionReaderSvc.
func (s *transactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.PostedTransaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	entries, err := s.txnRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transaction entries", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to load transaction entries: %w", err)
	}
	return &domain.PostedTransaction{Transaction: *txn, Entries: entries}, nil
}

// ReverseTransaction implements portssvc.TransactionProcessorSvc.
func (s *transactionService) ReverseTransaction(ctx context.Context, transactionID string, description string, actorID string) (*domain.PostedTransaction, error) {
	original, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Transaction.Type == domain.TransactionTypeReversal {
		return nil, apperrors.NewValidationError("transaction %s is itself a reversal", transactionID)
	}

	existing, err := s.txnRepo.FindTransactionsByReference(ctx, transactionID, domain.TransactionTypeReversal)
	if err != nil {
		return nil, fmt.Errorf("failed to look up reversals: %w", err)
	}
	if len(existing) > 0 {
		return nil, apperrors.NewValidationError("transaction %s has already been reversed by %s", transactionID, existing[0].TransactionID)
	}

	if strings.TrimSpace(description) == "" {
		description = "Reversal of " + transactionID
	}
	metadata, err := json.Marshal(map[string]string{"reversedTransactionId": transactionID})
	if err != nil {
		return nil, err
	}

	refID := transactionID
	req := domain.TransactionRequest{
		Description: description,
		Type:        domain.TransactionTypeReversal,
		UserID:      original.Transaction.UserID,
		ReferenceID: &refID,
		Metadata:    metadata,
		Entries:     make([]domain.EntryRequest, len(original.Entries)),
	}
	for i, e := range original.Entries {
		req.Entries[i] = domain.EntryRequest{
			AccountID:     e.AccountID,
			UserID:        e.UserID,
			DebitAmount:   e.CreditAmount,
			CreditAmount:  e.DebitAmount,
			Description:   e.Description,
			ReferenceType: e.ReferenceType,
			ReferenceID:   e.ReferenceID,
			Metadata:      e.Metadata,
		}
	}

	reversal, err := s.CreateTransaction(ctx, req, actorID)
	if errors.Is(err, apperrors.ErrDuplicate) {
		// A concurrent reversal won the race.
		return nil, apperrors.NewValidationError("transaction %s has already been reversed", transactionID)
	}
	if err != nil {
		return nil, err
	}
	return reversal, nil
}

// ListAccountEntries implements portssvc.TransactionReaderSvc.
func (s *transactionService) ListAccountEntries(ctx context.Context, accountID string, userID *string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if _, err := s.accountSvc.GetAccountByID(ctx, accountID); err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = defaultEntriesLimit
	}
	if limit > maxEntriesLimit {
		limit = maxEntriesLimit
	}

	entries, next, err := s.txnRepo.ListEntriesByAccount(ctx, accountID, userID, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account entries", slog.String("account_id", accountID))
		return nil, nil, fmt.Errorf("failed to list account entries: %w", err)
	}
	return entries, next, nil
}
