package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single account in a trial balance report.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"accountType"`
	NormalBalance NormalBalance   `json:"normalBalance"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// NetBalance is debit minus credit for the row.
func (r TrialBalanceRow) NetBalance() decimal.Decimal {
	return r.DebitBalance.Sub(r.CreditBalance)
}

// TrialBalanceTotals summarises a trial balance. Difference is always reported.
type TrialBalanceTotals struct {
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
	Difference   decimal.Decimal `json:"difference"`
	IsBalanced   bool            `json:"isBalanced"`
}

// TrialBalanceReport is the result of getTrialBalance.
type TrialBalanceReport struct {
	AsOf     *time.Time         `json:"asOf,omitempty"`
	Accounts []TrialBalanceRow  `json:"accounts"`
	Totals   TrialBalanceTotals `json:"totals"`
}

// ComputeTrialBalanceTotals sums the rows. IsBalanced holds iff the totals differ by
// less than one AmountUnit.
func ComputeTrialBalanceTotals(rows []TrialBalanceRow) TrialBalanceTotals {
	totals := TrialBalanceTotals{TotalDebits: decimal.Zero, TotalCredits: decimal.Zero}
	for _, r := range rows {
		totals.TotalDebits = totals.TotalDebits.Add(r.DebitBalance)
		totals.TotalCredits = totals.TotalCredits.Add(r.CreditBalance)
	}
	totals.Difference = totals.TotalDebits.Sub(totals.TotalCredits)
	totals.IsBalanced = totals.Difference.Abs().LessThan(AmountUnit)
	return totals
}
