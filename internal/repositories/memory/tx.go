package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// memTx stages the writes of one unit of work. It runs with Store.writeMu held, so the
// committed maps cannot change underneath it and may be read without Store.mu.
type memTx struct {
	s *Store

	accounts     map[string]domain.Account
	transactions []domain.Transaction
	entries      []domain.LedgerEntry
	balances     map[domain.BalanceKey]domain.AccountBalance
	audit        []domain.AuditTrailEntry
}

var _ portsrepo.LedgerTx = (*memTx)(nil)

func newMemTx(s *Store) *memTx {
	return &memTx{
		s:        s,
		accounts: make(map[string]domain.Account),
		balances: make(map[domain.BalanceKey]domain.AccountBalance),
	}
}

func (t *memTx) commit() {
	for id, acc := range t.accounts {
		t.s.accounts[id] = acc
	}
	for _, txn := range t.transactions {
		t.s.transactions[txn.TransactionID] = txn
		t.s.txnOrder = append(t.s.txnOrder, txn.TransactionID)
	}
	t.s.entries = append(t.s.entries, t.entries...)
	for k, b := range t.balances {
		t.s.balances[k] = b
	}
	t.s.audit = append(t.s.audit, t.audit...)
}

func (t *memTx) account(id string) (domain.Account, bool) {
	if acc, ok := t.accounts[id]; ok {
		return acc, true
	}
	acc, ok := t.s.accounts[id]
	return acc, ok
}

func (t *memTx) balance(key domain.BalanceKey) (domain.AccountBalance, bool) {
	if b, ok := t.balances[key]; ok {
		return b, true
	}
	b, ok := t.s.balances[key]
	return b, ok
}

func (t *memTx) FindAccountsByIDsForShare(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := t.account(id); ok {
			result[id] = acc
		}
	}
	return result, nil
}

func (t *memTx) SaveAccountInTx(_ context.Context, account domain.Account) error {
	if _, exists := t.account(account.AccountID); exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	for _, m := range []map[string]domain.Account{t.s.accounts, t.accounts} {
		for _, acc := range m {
			if acc.Code == account.Code {
				return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
			}
		}
	}
	t.accounts[account.AccountID] = account
	return nil
}

func (t *memTx) DeactivateAccountInTx(_ context.Context, accountID string, userID string, now time.Time) (*domain.Account, error) {
	acc, ok := t.account(accountID)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s", accountID))
	}
	prev := acc
	if acc.IsActive {
		acc.IsActive = false
		acc.LastUpdatedAt = now
		acc.LastUpdatedBy = userID
		t.accounts[accountID] = acc
	}
	return &prev, nil
}

func (t *memTx) InsertTransaction(_ context.Context, txn domain.Transaction) error {
	if _, exists := t.s.transactions[txn.TransactionID]; exists {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
	}
	if txn.Type == domain.TransactionTypeReversal && txn.ReferenceID != nil {
		for _, existing := range t.s.transactions {
			if existing.Type == domain.TransactionTypeReversal && existing.ReferenceID != nil && *existing.ReferenceID == *txn.ReferenceID {
				return fmt.Errorf("%w: reversal of %s", apperrors.ErrDuplicate, *txn.ReferenceID)
			}
		}
	}
	t.transactions = append(t.transactions, txn)
	return nil
}

func (t *memTx) InsertEntries(_ context.Context, entries []domain.LedgerEntry) error {
	for _, e := range entries {
		if _, ok := t.account(e.AccountID); !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("account %s", e.AccountID))
		}
	}
	t.entries = append(t.entries, entries...)
	return nil
}

func (t *memTx) ApplyBalanceDelta(_ context.Context, delta domain.BalanceDelta, now time.Time) (domain.BalanceChange, error) {
	before, ok := t.balance(delta.Key)
	if !ok {
		before = domain.ZeroBalance(delta.Key)
	}
	after := before.Apply(delta, now)
	t.balances[delta.Key] = after
	return domain.BalanceChange{Before: before, After: after}, nil
}

func (t *memTx) LockBalance(_ context.Context, key domain.BalanceKey, now time.Time) (domain.AccountBalance, error) {
	b, ok := t.balance(key)
	if !ok {
		b = domain.ZeroBalance(key)
		b.LastUpdated = now
		t.balances[key] = b
	}
	return b, nil
}

func (t *memTx) SumEntriesByKey(_ context.Context, key domain.BalanceKey) (decimal.Decimal, decimal.Decimal, int, error) {
	debit, credit, count := decimal.Zero, decimal.Zero, 0
	for _, list := range [][]domain.LedgerEntry{t.s.entries, t.entries} {
		for _, e := range list {
			if e.Key() != key {
				continue
			}
			debit = debit.Add(e.DebitAmount)
			credit = credit.Add(e.CreditAmount)
			count++
		}
	}
	return debit, credit, count, nil
}

func (t *memTx) ReplaceBalance(_ context.Context, key domain.BalanceKey, debit, credit decimal.Decimal, now time.Time) (domain.AccountBalance, error) {
	b := domain.ZeroBalance(key)
	b.DebitBalance = debit
	b.CreditBalance = credit
	b.LastUpdated = now
	t.balances[key] = b
	return b, nil
}

func (t *memTx) AppendAudit(_ context.Context, entry domain.AuditTrailEntry) error {
	t.audit = append(t.audit, entry)
	return nil
}
