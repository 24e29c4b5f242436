// Package memory is an in-process implementation of the ledger repositories. Units of work are
// serialized by a single writer lock and their writes are staged until commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_service/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// Store holds the whole ledger in memory.
type Store struct {
	// writeMu serializes units of work; mu guards the committed state.
	writeMu sync.Mutex
	mu      sync.RWMutex

	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	txnOrder     []string
	entries      []domain.LedgerEntry
	balances     map[domain.BalanceKey]domain.AccountBalance
	audit        []domain.AuditTrailEntry
}

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
		entries:      make([]domain.LedgerEntry, 0),
		balances:     make(map[domain.BalanceKey]domain.AccountBalance),
		audit:        make([]domain.AuditTrailEntry, 0),
	}
}

var (
	_ portsrepo.AccountRepositoryFacade     = (*Store)(nil)
	_ portsrepo.TransactionRepositoryFacade = (*Store)(nil)
	_ portsrepo.BalanceRepositoryFacade     = (*Store)(nil)
	_ portsrepo.AuditRepositoryFacade       = (*Store)(nil)
	_ portsrepo.ReportingRepository         = (*Store)(nil)
	_ portsrepo.HealthChecker               = (*Store)(nil)
)

// Provider exposes the store through every repository port.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     s,
		TransactionRepo: s,
		BalanceRepo:     s,
		AuditRepo:       s,
		ReportingRepo:   s,
		Health:          s,
	}
}

// Ping implements portsrepo.HealthChecker.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// RunInTx implements portsrepo.UnitOfWork.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return apperrors.NewPersistenceError("unit of work cancelled", err)
	}

	tx := newMemTx(s)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperrors.NewPersistenceError("unit of work cancelled before commit", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx.commit()
	return nil
}

// Account reads

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s", accountID))
	}
	return &acc, nil
}

func (s *Store) ListAccounts(_ context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		if filter.ActiveOnly && !acc.IsActive {
			continue
		}
		if filter.Type != nil && acc.AccountType != *filter.Type {
			continue
		}
		result = append(result, acc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// Transaction reads

func (s *Store) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactions[transactionID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s", transactionID))
	}
	return &txn, nil
}

func (s *Store) FindEntriesByTransactionID(_ context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.LedgerEntry, 0)
	for _, e := range s.entries {
		if e.TransactionID == transactionID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LineNo < result[j].LineNo })
	return result, nil
}

func (s *Store) FindTransactionsByReference(_ context.Context, referenceID string, txnType string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, 0)
	for _, id := range s.txnOrder {
		txn := s.transactions[id]
		if txn.ReferenceID != nil && *txn.ReferenceID == referenceID && txn.Type == txnType {
			result = append(result, txn)
		}
	}
	return result, nil
}

func (s *Store) ListEntriesByAccount(_ context.Context, accountID string, userID *string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	var cursor *pagination.EntryCursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeEntryCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("%v", err)
		}
		cursor = &c
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.LedgerEntry, 0)
	for _, e := range s.entries {
		if e.AccountID != accountID {
			continue
		}
		if userID != nil && (e.UserID == nil || *e.UserID != *userID) {
			continue
		}
		if cursor != nil && !cursor.Follows(e.CreatedAt, e.TransactionID, e.LineNo) {
			continue
		}
		e.TransactionDate = s.transactions[e.TransactionID].TransactionDate
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.TransactionID != b.TransactionID {
			return a.TransactionID > b.TransactionID
		}
		return a.LineNo > b.LineNo
	})

	if limit <= 0 || len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeEntryCursor(pagination.EntryCursor{CreatedAt: last.CreatedAt, TransactionID: last.TransactionID, LineNo: last.LineNo})
	return page, &token, nil
}

// Balance reads

func (s *Store) FindBalance(_ context.Context, key domain.BalanceKey) (*domain.AccountBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.balances[key]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("balance %s", key))
	}
	return &b, nil
}

// Audit reads

func (s *Store) QueryAudit(_ context.Context, filter domain.AuditFilter) ([]domain.AuditTrailEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.AuditTrailEntry, 0)
	// Newest first; append order breaks timestamp ties.
	for i := len(s.audit) - 1; i >= 0; i-- {
		e := s.audit[i]
		if filter.TableName != nil && e.TableName != *filter.TableName {
			continue
		}
		if filter.RecordID != nil && e.RecordID != *filter.RecordID {
			continue
		}
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })

	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], nil
}

// Reporting

func (s *Store) GetTrialBalanceData(_ context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make(map[string]*domain.TrialBalanceRow)
	for _, acc := range s.accounts {
		if !acc.IsActive {
			continue
		}
		rows[acc.AccountID] = &domain.TrialBalanceRow{
			AccountID:     acc.AccountID,
			Code:          acc.Code,
			Name:          acc.Name,
			AccountType:   acc.AccountType,
			NormalBalance: acc.NormalBalance,
			DebitBalance:  decimal.Zero,
			CreditBalance: decimal.Zero,
		}
	}

	if asOf == nil {
		for _, b := range s.balances {
			if row, ok := rows[b.AccountID]; ok {
				row.DebitBalance = row.DebitBalance.Add(b.DebitBalance)
				row.CreditBalance = row.CreditBalance.Add(b.CreditBalance)
			}
		}
	} else {
		for _, e := range s.entries {
			row, ok := rows[e.AccountID]
			if !ok || s.transactions[e.TransactionID].TransactionDate.After(*asOf) {
				continue
			}
			row.DebitBalance = row.DebitBalance.Add(e.DebitAmount)
			row.CreditBalance = row.CreditBalance.Add(e.CreditAmount)
		}
	}

	result := make([]domain.TrialBalanceRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}
