package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, s *Store, id, code string, typ domain.AccountType) {
	t.Helper()
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.SaveAccountInTx(ctx, domain.Account{
			AccountID:     id,
			Code:          code,
			Name:          code,
			AccountType:   typ,
			NormalBalance: domain.DefaultNormalBalance(typ),
			IsActive:      true,
		})
	})
	require.NoError(t, err)
}

func postEntries(t *testing.T, s *Store, txnID string, at time.Time, entries ...domain.LedgerEntry) {
	t.Helper()
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.InsertTransaction(ctx, domain.Transaction{TransactionID: txnID, Type: "test", TransactionDate: at, CreatedAt: at}); err != nil {
			return err
		}
		for i := range entries {
			entries[i].TransactionID = txnID
			entries[i].CreatedAt = at
			entries[i].LineNo = i + 1
			entries[i].EntryID = txnID + "-" + string(rune('a'+i))
		}
		return tx.InsertEntries(ctx, entries)
	})
	require.NoError(t, err)
}

func TestRunInTx_RollbackDiscardsStagedWrites(t *testing.T) {
	s := New()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	key := domain.NewBalanceKey("cash", nil)
	boom := errors.New("boom")

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.InsertTransaction(ctx, domain.Transaction{TransactionID: "t1"}); err != nil {
			return err
		}
		if _, err := tx.ApplyBalanceDelta(ctx, domain.BalanceDelta{Key: key, Debit: decimal.NewFromInt(10), Credit: decimal.Zero}, time.Now()); err != nil {
			return err
		}
		if err := tx.AppendAudit(ctx, domain.AuditTrailEntry{AuditID: "a1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.FindTransactionByID(context.Background(), "t1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.FindBalance(context.Background(), key)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	audit, err := s.QueryAudit(context.Background(), domain.AuditFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, audit)
}

func TestRunInTx_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error { return nil })
	assert.True(t, apperrors.IsRetryable(err))
}

func TestApplyBalanceDelta_ReadsOwnWrites(t *testing.T) {
	s := New()
	key := domain.NewBalanceKey("revenue", nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		first, err := tx.ApplyBalanceDelta(ctx, domain.BalanceDelta{Key: key, Debit: decimal.Zero, Credit: decimal.NewFromInt(5)}, now)
		require.NoError(t, err)
		assert.True(t, first.Before.LastUpdated.IsZero(), "new row has no previous update time")

		second, err := tx.ApplyBalanceDelta(ctx, domain.BalanceDelta{Key: key, Debit: decimal.Zero, Credit: decimal.NewFromInt(5)}, now)
		require.NoError(t, err)
		assert.True(t, second.Before.CreditBalance.Equal(decimal.NewFromInt(5)))
		assert.True(t, second.After.CreditBalance.Equal(decimal.NewFromInt(10)))
		return nil
	})
	require.NoError(t, err)

	b, err := s.FindBalance(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, b.CreditBalance.Equal(decimal.NewFromInt(10)))
	assert.True(t, b.NetBalance().Equal(decimal.NewFromInt(-10)))
}

func TestSaveAccountInTx_DuplicateCode(t *testing.T) {
	s := New()
	seedAccount(t, s, "cash", "1000", domain.Asset)

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.SaveAccountInTx(ctx, domain.Account{AccountID: "other", Code: "1000", AccountType: domain.Asset})
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestInsertTransaction_SecondReversalIsDuplicate(t *testing.T) {
	s := New()
	ref := "original"
	insert := func(id string) error {
		return s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
			return tx.InsertTransaction(ctx, domain.Transaction{TransactionID: id, Type: domain.TransactionTypeReversal, ReferenceID: &ref})
		})
	}
	require.NoError(t, insert("r1"))
	assert.ErrorIs(t, insert("r2"), apperrors.ErrDuplicate)
}

func TestListAccounts_FilterAndOrder(t *testing.T) {
	s := New()
	seedAccount(t, s, "rev", "4000", domain.Revenue)
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "bank", "1100", domain.Asset)
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.DeactivateAccountInTx(ctx, "bank", "admin", time.Now())
		return err
	})
	require.NoError(t, err)

	all, err := s.ListAccounts(context.Background(), domain.AccountFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1000", "1100", "4000"}, []string{all[0].Code, all[1].Code, all[2].Code})

	asset := domain.Asset
	active, err := s.ListAccounts(context.Background(), domain.AccountFilter{Type: &asset, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "cash", active[0].AccountID)
}

func TestListEntriesByAccount_Paginates(t *testing.T) {
	s := New()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "rev", "4000", domain.Revenue)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		postEntries(t, s, id, base.Add(time.Duration(i)*time.Minute),
			domain.LedgerEntry{AccountID: "cash", DebitAmount: decimal.NewFromInt(1), CreditAmount: decimal.Zero},
			domain.LedgerEntry{AccountID: "rev", DebitAmount: decimal.Zero, CreditAmount: decimal.NewFromInt(1)},
		)
	}

	page1, next, err := s.ListEntriesByAccount(context.Background(), "cash", nil, 2, nil)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, "t3", page1[0].TransactionID)
	assert.Equal(t, "t2", page1[1].TransactionID)
	assert.True(t, page1[0].TransactionDate.Equal(base.Add(2*time.Minute)))

	page2, next, err := s.ListEntriesByAccount(context.Background(), "cash", nil, 2, next)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Nil(t, next)
	assert.Equal(t, "t1", page2[0].TransactionID)

	bad := "%%%"
	_, _, err = s.ListEntriesByAccount(context.Background(), "cash", nil, 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQueryAudit_NewestFirstWithFilters(t *testing.T) {
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		for i, table := range []string{domain.AuditTableAccounts, domain.AuditTableTransactions, domain.AuditTableAccounts} {
			if err := tx.AppendAudit(ctx, domain.AuditTrailEntry{
				AuditID:   string(rune('a' + i)),
				TableName: table,
				RecordID:  "r",
				Timestamp: base.Add(time.Duration(i) * time.Second),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	all, err := s.QueryAudit(context.Background(), domain.AuditFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].AuditID)
	assert.Equal(t, "a", all[2].AuditID)

	table := domain.AuditTableAccounts
	accounts, err := s.QueryAudit(context.Background(), domain.AuditFilter{TableName: &table, Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "a", accounts[0].AuditID)
}

func TestGetTrialBalanceData_AsOf(t *testing.T) {
	s := New()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "rev", "4000", domain.Revenue)
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	postEntries(t, s, "t1", jan,
		domain.LedgerEntry{AccountID: "cash", DebitAmount: decimal.NewFromInt(10), CreditAmount: decimal.Zero},
		domain.LedgerEntry{AccountID: "rev", DebitAmount: decimal.Zero, CreditAmount: decimal.NewFromInt(10)},
	)
	postEntries(t, s, "t2", feb,
		domain.LedgerEntry{AccountID: "cash", DebitAmount: decimal.NewFromInt(5), CreditAmount: decimal.Zero},
		domain.LedgerEntry{AccountID: "rev", DebitAmount: decimal.Zero, CreditAmount: decimal.NewFromInt(5)},
	)

	endOfJan := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	rows, err := s.GetTrialBalanceData(context.Background(), &endOfJan)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1000", rows[0].Code)
	assert.True(t, rows[0].DebitBalance.Equal(decimal.NewFromInt(10)))
	assert.True(t, rows[1].CreditBalance.Equal(decimal.NewFromInt(10)))

	// No balances were maintained by postEntries, so the live report is all zeros.
	live, err := s.GetTrialBalanceData(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.True(t, live[0].DebitBalance.IsZero())
}
