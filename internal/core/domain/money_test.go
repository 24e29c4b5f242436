package domain_test

import (
	"testing"

	"github.com/SscSPs/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty is zero", input: "", want: "0.00000000"},
		{name: "integer", input: "10", want: "10.00000000"},
		{name: "eight fractional digits", input: "10.12345678", want: "10.12345678"},
		{name: "smallest unit", input: "0.00000001", want: "0.00000001"},
		{name: "surrounding whitespace", input: " 5.5 ", want: "5.50000000"},
		{name: "nine fractional digits", input: "1.123456789", wantErr: true},
		{name: "negative", input: "-1.00", wantErr: true},
		{name: "not a number", input: "ten", wantErr: true},
		{name: "trailing zeros beyond scale are fine", input: "1.1234567800", want: "1.12345678"},
		{name: "twenty integer digits", input: "99999999999999999999.99999999", want: "99999999999999999999.99999999"},
		{name: "twenty one integer digits", input: "123456789012345678901.5", wantErr: true},
		{name: "exponent notation", input: "1e25", wantErr: true},
		{name: "small exponent notation", input: "1E2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, domain.FormatAmount(got))
		})
	}
}

func TestCheckAmount(t *testing.T) {
	assert.NoError(t, domain.CheckAmount(decimal.Zero))
	assert.NoError(t, domain.CheckAmount(decimal.RequireFromString("99999999999999999999.99999999")))
	assert.Error(t, domain.CheckAmount(decimal.New(1, 20)))
	assert.Error(t, domain.CheckAmount(decimal.RequireFromString("-0.00000001")))
	assert.Error(t, domain.CheckAmount(decimal.RequireFromString("0.000000001")))
}

func TestAccountBalance_NetBalanceIsDerived(t *testing.T) {
	key := domain.NewBalanceKey("acc-cash", nil)
	b := domain.ZeroBalance(key)
	assert.True(t, b.NetBalance().IsZero())

	b = b.Apply(domain.BalanceDelta{Key: key, Debit: decimal.RequireFromString("10"), Credit: decimal.Zero}, b.LastUpdated)
	b = b.Apply(domain.BalanceDelta{Key: key, Debit: decimal.Zero, Credit: decimal.RequireFromString("2.5")}, b.LastUpdated)

	assert.Equal(t, "10.00000000", domain.FormatAmount(b.DebitBalance))
	assert.Equal(t, "2.50000000", domain.FormatAmount(b.CreditBalance))
	assert.Equal(t, "7.50000000", domain.FormatAmount(b.NetBalance()))
	assert.True(t, b.NetBalance().Equal(b.DebitBalance.Sub(b.CreditBalance)))
}

func TestBalanceKey(t *testing.T) {
	user := "user-1"
	k := domain.NewBalanceKey("acc", &user)
	require.NotNil(t, k.UserID())
	assert.Equal(t, "user-1", *k.UserID())
	assert.Equal(t, "acc/user-1", k.String())

	system := domain.NewBalanceKey("acc", nil)
	assert.Nil(t, system.UserID())
	assert.True(t, system.Less(k))
	assert.True(t, domain.NewBalanceKey("a", &user).Less(system))
}

func TestComputeTrialBalanceTotals(t *testing.T) {
	tests := []struct {
		name         string
		rows         []domain.TrialBalanceRow
		wantBalanced bool
		wantDiff     string
	}{
		{
			name:         "no rows",
			rows:         nil,
			wantBalanced: true,
			wantDiff:     "0.00000000",
		},
		{
			name: "balanced",
			rows: []domain.TrialBalanceRow{
				{AccountID: "cash", DebitBalance: decimal.RequireFromString("10"), CreditBalance: decimal.Zero},
				{AccountID: "revenue", DebitBalance: decimal.Zero, CreditBalance: decimal.RequireFromString("10")},
			},
			wantBalanced: true,
			wantDiff:     "0.00000000",
		},
		{
			name: "off by one unit is reported",
			rows: []domain.TrialBalanceRow{
				{AccountID: "cash", DebitBalance: decimal.RequireFromString("10.00000001"), CreditBalance: decimal.Zero},
				{AccountID: "revenue", DebitBalance: decimal.Zero, CreditBalance: decimal.RequireFromString("10")},
			},
			wantBalanced: false,
			wantDiff:     "0.00000001",
		},
		{
			name: "credit heavy drift is negative",
			rows: []domain.TrialBalanceRow{
				{AccountID: "cash", DebitBalance: decimal.RequireFromString("5"), CreditBalance: decimal.Zero},
				{AccountID: "revenue", DebitBalance: decimal.Zero, CreditBalance: decimal.RequireFromString("7")},
			},
			wantBalanced: false,
			wantDiff:     "-2.00000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := domain.ComputeTrialBalanceTotals(tt.rows)
			assert.Equal(t, tt.wantBalanced, totals.IsBalanced)
			assert.Equal(t, tt.wantDiff, domain.FormatAmount(totals.Difference))
		})
	}
}

func TestDefaultNormalBalance(t *testing.T) {
	assert.Equal(t, domain.NormalDebit, domain.DefaultNormalBalance(domain.Asset))
	assert.Equal(t, domain.NormalDebit, domain.DefaultNormalBalance(domain.Expense))
	assert.Equal(t, domain.NormalCredit, domain.DefaultNormalBalance(domain.Liability))
	assert.Equal(t, domain.NormalCredit, domain.DefaultNormalBalance(domain.Equity))
	assert.Equal(t, domain.NormalCredit, domain.DefaultNormalBalance(domain.Revenue))
	assert.False(t, domain.AccountType("ASSET").Valid())
}
