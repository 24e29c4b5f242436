package dto

import (
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// BalanceParams selects the per-user balance of an account.
type BalanceParams struct {
	UserID string `form:"userId"`
}

// UserIDPtr returns nil for the account-level balance.
func (p BalanceParams) UserIDPtr() *string {
	if p.UserID == "" {
		return nil
	}
	u := p.UserID
	return &u
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID     string     `json:"accountId"`
	UserID        *string    `json:"userId,omitempty"`
	DebitBalance  string     `json:"debitBalance"`
	CreditBalance string     `json:"creditBalance"`
	NetBalance    string     `json:"netBalance"`
	LastUpdated   *time.Time `json:"lastUpdated,omitempty"`
}

// ReconciliationResponse reports the effect of rebuilding a balance from its entries.
type ReconciliationResponse struct {
	Before      AccountBalanceResponse `json:"before"`
	After       AccountBalanceResponse `json:"after"`
	DebitDrift  string                 `json:"debitDrift"`
	CreditDrift string                 `json:"creditDrift"`
	EntryCount  int                    `json:"entryCount"`
	Drifted     bool                   `json:"drifted"`
}

// ToAccountBalanceResponse converts a domain.AccountBalance to its DTO.
func ToAccountBalanceResponse(b *domain.AccountBalance) AccountBalanceResponse {
	res := AccountBalanceResponse{
		AccountID:     b.AccountID,
		UserID:        b.UserID,
		DebitBalance:  domain.FormatAmount(b.DebitBalance),
		CreditBalance: domain.FormatAmount(b.CreditBalance),
		NetBalance:    domain.FormatAmount(b.NetBalance()),
	}
	if !b.LastUpdated.IsZero() {
		t := b.LastUpdated
		res.LastUpdated = &t
	}
	return res
}

// ToReconciliationResponse converts a domain.Reconciliation to its DTO.
func ToReconciliationResponse(r *domain.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		Before:      ToAccountBalanceResponse(&r.Before),
		After:       ToAccountBalanceResponse(&r.After),
		DebitDrift:  domain.FormatAmount(r.DebitDrift),
		CreditDrift: domain.FormatAmount(r.CreditDrift),
		EntryCount:  r.EntryCount,
		Drifted:     r.HasDrift(),
	}
}
