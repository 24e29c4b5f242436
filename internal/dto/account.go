package dto

import (
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code          string                `json:"code" binding:"required,max=50"`
	Name          string                `json:"name" binding:"required,max=255"`
	AccountType   domain.AccountType    `json:"accountType" binding:"required,oneof=asset liability equity revenue expense"`
	NormalBalance *domain.NormalBalance `json:"normalBalance" binding:"omitempty,oneof=debit credit"` // Optional, derived from accountType when omitted
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string               `json:"accountID"`
	Code          string               `json:"code"`
	Name          string               `json:"name"`
	AccountType   domain.AccountType   `json:"accountType"`
	NormalBalance domain.NormalBalance `json:"normalBalance"`
	IsActive      bool                 `json:"isActive"`
	CreatedAt     time.Time            `json:"createdAt"`
	CreatedBy     string               `json:"createdBy"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy string               `json:"lastUpdatedBy"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Type       string `form:"type" binding:"omitempty,oneof=asset liability equity revenue expense"`
	ActiveOnly bool   `form:"active,default=true"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListAccountsParams) ToFilter() domain.AccountFilter {
	f := domain.AccountFilter{ActiveOnly: p.ActiveOnly}
	if p.Type != "" {
		t := domain.AccountType(p.Type)
		f.Type = &t
	}
	return f
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Code:          acc.Code,
		Name:          acc.Name,
		AccountType:   acc.AccountType,
		NormalBalance: acc.NormalBalance,
		IsActive:      acc.IsActive,
		CreatedAt:     acc.CreatedAt,
		CreatedBy:     acc.CreatedBy,
		LastUpdatedAt: acc.LastUpdatedAt,
		LastUpdatedBy: acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}
