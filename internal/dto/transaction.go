package dto

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// EntryRequest is one debit and/or credit line of a CreateTransactionRequest.
// Amounts are decimal strings with at most 8 fractional digits; omitted means zero.
type EntryRequest struct {
	AccountID     string          `json:"accountId" binding:"required"`
	UserID        *string         `json:"userId"`
	DebitAmount   string          `json:"debitAmount" binding:"omitempty,amount8"`
	CreditAmount  string          `json:"creditAmount" binding:"omitempty,amount8"`
	Description   string          `json:"description" binding:"max=500"`
	ReferenceType *string         `json:"referenceType"`
	ReferenceID   *string         `json:"referenceId"`
	Metadata      json.RawMessage `json:"metadata" swaggertype:"object"`
}

// CreateTransactionRequest defines the data needed to post a balanced transaction.
type CreateTransactionRequest struct {
	Description     string          `json:"description" binding:"required,max=500"`
	Type            string          `json:"type" binding:"required,max=50"`
	UserID          *string         `json:"userId"`
	Entries         []EntryRequest  `json:"entries" binding:"dive"`
	ReferenceID     *string         `json:"referenceId"`
	Metadata        json.RawMessage `json:"metadata" swaggertype:"object"`
	TransactionDate *time.Time      `json:"transactionDate"` // Optional, defaults to now
}

// ToDomain parses the request amounts into a domain.TransactionRequest.
func (r CreateTransactionRequest) ToDomain() (domain.TransactionRequest, error) {
	out := domain.TransactionRequest{
		Description:     r.Description,
		Type:            r.Type,
		UserID:          r.UserID,
		ReferenceID:     r.ReferenceID,
		Metadata:        r.Metadata,
		TransactionDate: r.TransactionDate,
		Entries:         make([]domain.EntryRequest, 0, len(r.Entries)),
	}
	for i, e := range r.Entries {
		debit, err := domain.ParseAmount(e.DebitAmount)
		if err != nil {
			return domain.TransactionRequest{}, apperrors.NewValidationError("entry %d: %v", i, err)
		}
		credit, err := domain.ParseAmount(e.CreditAmount)
		if err != nil {
			return domain.TransactionRequest{}, apperrors.NewValidationError("entry %d: %v", i, err)
		}
		out.Entries = append(out.Entries, domain.EntryRequest{
			AccountID:     e.AccountID,
			UserID:        e.UserID,
			DebitAmount:   debit,
			CreditAmount:  credit,
			Description:   e.Description,
			ReferenceType: e.ReferenceType,
			ReferenceID:   e.ReferenceID,
			Metadata:      e.Metadata,
		})
	}
	return out, nil
}

// ReverseTransactionRequest carries the optional description of a reversal.
type ReverseTransactionRequest struct {
	Description string `json:"description" binding:"max=500"`
}

// LedgerEntryResponse defines the data returned for a ledger entry.
type LedgerEntryResponse struct {
	EntryID         string          `json:"entryId"`
	TransactionID   string          `json:"transactionId"`
	AccountID       string          `json:"accountId"`
	UserID          *string         `json:"userId,omitempty"`
	DebitAmount     string          `json:"debitAmount"`
	CreditAmount    string          `json:"creditAmount"`
	Description     string          `json:"description"`
	ReferenceType   *string         `json:"referenceType,omitempty"`
	ReferenceID     *string         `json:"referenceId,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty" swaggertype:"object"`
	CreatedAt       time.Time       `json:"createdAt"`
	TransactionDate *time.Time      `json:"transactionDate,omitempty"`
}

// TransactionResponse defines the data returned for a posted transaction.
type TransactionResponse struct {
	TransactionID   string                `json:"transactionId"`
	Description     string                `json:"description"`
	Type            string                `json:"type"`
	UserID          *string               `json:"userId,omitempty"`
	TotalAmount     string                `json:"totalAmount"`
	ReferenceID     *string               `json:"referenceId,omitempty"`
	Metadata        json.RawMessage       `json:"metadata,omitempty" swaggertype:"object"`
	TransactionDate time.Time             `json:"transactionDate"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	Entries         []LedgerEntryResponse `json:"entries"`
}

// ListEntriesParams defines query parameters for listing an account's entries.
type ListEntriesParams struct {
	UserID    string `form:"userId"`
	Limit     int    `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken string `form:"nextToken"`
}

// ListEntriesResponse is one page of ledger entries.
type ListEntriesResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to its DTO.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	res := LedgerEntryResponse{
		EntryID:       e.EntryID,
		TransactionID: e.TransactionID,
		AccountID:     e.AccountID,
		UserID:        e.UserID,
		DebitAmount:   domain.FormatAmount(e.DebitAmount),
		CreditAmount:  domain.FormatAmount(e.CreditAmount),
		Description:   e.Description,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		Metadata:      e.Metadata,
		CreatedAt:     e.CreatedAt,
	}
	if !e.TransactionDate.IsZero() {
		d := e.TransactionDate
		res.TransactionDate = &d
	}
	return res
}

// ToLedgerEntryResponses converts a slice of entries.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	res := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToLedgerEntryResponse(&entries[i])
	}
	return res
}

// ToTransactionResponse converts a posted transaction to its DTO.
func ToTransactionResponse(p *domain.PostedTransaction) TransactionResponse {
	t := p.Transaction
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		Description:     t.Description,
		Type:            t.Type,
		UserID:          t.UserID,
		TotalAmount:     domain.FormatAmount(t.TotalAmount),
		ReferenceID:     t.ReferenceID,
		Metadata:        t.Metadata,
		TransactionDate: t.TransactionDate,
		CreatedAt:       t.CreatedAt,
		CreatedBy:       t.CreatedBy,
		Entries:         ToLedgerEntryResponses(p.Entries),
	}
}
