package dto

import (
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// TrialBalanceParams defines the query parameters of the trial balance report.
type TrialBalanceParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// AsOfTime returns the end of the asOf day in UTC, or nil when unset.
func (p TrialBalanceParams) AsOfTime() (*time.Time, error) {
	if p.AsOf == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, p.AsOf)
	if err != nil {
		return nil, err
	}
	end := d.Add(24*time.Hour - time.Nanosecond)
	return &end, nil
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID     string               `json:"accountId"`
	Code          string               `json:"code"`
	Name          string               `json:"name"`
	AccountType   domain.AccountType   `json:"accountType"`
	NormalBalance domain.NormalBalance `json:"normalBalance"`
	DebitBalance  string               `json:"debitBalance"`
	CreditBalance string               `json:"creditBalance"`
	NetBalance    string               `json:"netBalance"`
}

// TrialBalanceTotalsResponse holds the report totals.
type TrialBalanceTotalsResponse struct {
	TotalDebits  string `json:"totalDebits"`
	TotalCredits string `json:"totalCredits"`
	Difference   string `json:"difference"`
	IsBalanced   bool   `json:"isBalanced"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf     string                     `json:"asOf,omitempty"`
	Accounts []TrialBalanceRowResponse  `json:"accounts"`
	Totals   TrialBalanceTotalsResponse `json:"totals"`
}

// ToTrialBalanceResponse converts a domain.TrialBalanceReport to its DTO.
func ToTrialBalanceResponse(r *domain.TrialBalanceReport) TrialBalanceResponse {
	res := TrialBalanceResponse{
		Accounts: make([]TrialBalanceRowResponse, len(r.Accounts)),
		Totals: TrialBalanceTotalsResponse{
			TotalDebits:  domain.FormatAmount(r.Totals.TotalDebits),
			TotalCredits: domain.FormatAmount(r.Totals.TotalCredits),
			Difference:   domain.FormatAmount(r.Totals.Difference),
			IsBalanced:   r.Totals.IsBalanced,
		},
	}
	if r.AsOf != nil {
		res.AsOf = r.AsOf.Format(time.DateOnly)
	}
	for i, row := range r.Accounts {
		res.Accounts[i] = TrialBalanceRowResponse{
			AccountID:     row.AccountID,
			Code:          row.Code,
			Name:          row.Name,
			AccountType:   row.AccountType,
			NormalBalance: row.NormalBalance,
			DebitBalance:  domain.FormatAmount(row.DebitBalance),
			CreditBalance: domain.FormatAmount(row.CreditBalance),
			NetBalance:    domain.FormatAmount(row.NetBalance()),
		}
	}
	return res
}
