package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionTypeReversal tags transactions created to offset an earlier one.
const TransactionTypeReversal = "reversal"

// Transaction is the immutable header of a balanced set of ledger entries.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`
	Description     string          `json:"description"`
	Type            string          `json:"type"`
	UserID          *string         `json:"userID,omitempty"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ReferenceID     *string         `json:"referenceID,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
}

// LedgerEntry is one debit and/or credit line owned by exactly one Transaction.
type LedgerEntry struct {
	EntryID       string          `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	UserID        *string         `json:"userID,omitempty"`
	DebitAmount   decimal.Decimal `json:"debitAmount"`
	CreditAmount  decimal.Decimal `json:"creditAmount"`
	Description   string          `json:"description"`
	ReferenceType *string         `json:"referenceType,omitempty"`
	ReferenceID   *string         `json:"referenceID,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	// LineNo preserves the order in which entries were submitted.
	LineNo int `json:"lineNo"`
	// TransactionDate is populated on account entry listings.
	TransactionDate time.Time `json:"transactionDate"`
}

// Key returns the balance key this entry contributes to.
func (e LedgerEntry) Key() BalanceKey {
	return NewBalanceKey(e.AccountID, e.UserID)
}

// PostedTransaction is a committed header together with its entries.
type PostedTransaction struct {
	Transaction Transaction   `json:"transaction"`
	Entries     []LedgerEntry `json:"entries"`
}

// EntryRequest is one line of a TransactionRequest. Omitted amounts are zero.
type EntryRequest struct {
	AccountID     string
	UserID        *string
	DebitAmount   decimal.Decimal
	CreditAmount  decimal.Decimal
	Description   string
	ReferenceType *string
	ReferenceID   *string
	Metadata      json.RawMessage
}

// TransactionRequest is the typed input of createTransaction.
type TransactionRequest struct {
	Description     string
	Type            string
	UserID          *string
	Entries         []EntryRequest
	ReferenceID     *string
	Metadata        json.RawMessage
	TransactionDate *time.Time
}

// Totals returns the summed debit and credit amounts of the request.
func (r TransactionRequest) Totals() (debits decimal.Decimal, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range r.Entries {
		debits = debits.Add(e.DebitAmount)
		credits = credits.Add(e.CreditAmount)
	}
	return debits, credits
}
