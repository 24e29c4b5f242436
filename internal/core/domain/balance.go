package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceKey identifies one AccountBalance row. UserKey is empty for the account-level balance.
type BalanceKey struct {
	AccountID string
	UserKey   string
}

// NewBalanceKey builds a key from an account and an optional user.
func NewBalanceKey(accountID string, userID *string) BalanceKey {
	k := BalanceKey{AccountID: accountID}
	if userID != nil {
		k.UserKey = *userID
	}
	return k
}

// UserID returns the user part of the key, nil for the account-level balance.
func (k BalanceKey) UserID() *string {
	if k.UserKey == "" {
		return nil
	}
	u := k.UserKey
	return &u
}

// Less orders keys by account then user. Balance rows are always touched in this order.
func (k BalanceKey) Less(o BalanceKey) bool {
	if k.AccountID != o.AccountID {
		return k.AccountID < o.AccountID
	}
	return k.UserKey < o.UserKey
}

func (k BalanceKey) String() string {
	if k.UserKey == "" {
		return k.AccountID
	}
	return k.AccountID + "/" + k.UserKey
}

// AccountBalance is the running debit/credit total for one key.
// It is a derived cache of the ledger entries, never a source of truth.
type AccountBalance struct {
	AccountID     string          `json:"accountID"`
	UserID        *string         `json:"userID,omitempty"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

// ZeroBalance returns the balance of a key with no activity.
func ZeroBalance(key BalanceKey) AccountBalance {
	return AccountBalance{
		AccountID:     key.AccountID,
		UserID:        key.UserID(),
		DebitBalance:  decimal.Zero,
		CreditBalance: decimal.Zero,
	}
}

// NetBalance is always derived as debit minus credit.
func (b AccountBalance) NetBalance() decimal.Decimal {
	return b.DebitBalance.Sub(b.CreditBalance)
}

// Key returns the BalanceKey of this row.
func (b AccountBalance) Key() BalanceKey {
	return NewBalanceKey(b.AccountID, b.UserID)
}

// Apply returns the balance after adding the deltas.
func (b AccountBalance) Apply(d BalanceDelta, at time.Time) AccountBalance {
	b.DebitBalance = b.DebitBalance.Add(d.Debit)
	b.CreditBalance = b.CreditBalance.Add(d.Credit)
	b.LastUpdated = at
	return b
}

// BalanceDelta is the net change a transaction applies to one key.
type BalanceDelta struct {
	Key    BalanceKey
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// BalanceChange pairs the balance before and after a delta was applied.
type BalanceChange struct {
	Before AccountBalance
	After  AccountBalance
}

// Reconciliation reports the result of replaying a key's ledger entries.
type Reconciliation struct {
	Before      AccountBalance  `json:"before"`
	After       AccountBalance  `json:"after"`
	DebitDrift  decimal.Decimal `json:"debitDrift"`
	CreditDrift decimal.Decimal `json:"creditDrift"`
	EntryCount  int             `json:"entryCount"`
}

// HasDrift reports whether the cached balance differed from the replayed one.
func (r Reconciliation) HasDrift() bool {
	return !r.DebitDrift.IsZero() || !r.CreditDrift.IsZero()
}
