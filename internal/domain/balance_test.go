package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCompanyBalance_Bucket(t *testing.T) {
	b := &CompanyBalance{
		CompanyID:   7,
		CashBalance: decimal.NewFromInt(100),
		BankBalance: decimal.NewFromInt(250),
	}

	if got := b.Bucket(BalanceTypeCash); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Bucket(CASH) = %s, want 100", got)
	}

	if got := b.Bucket(BalanceTypeBank); !got.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Bucket(BANK) = %s, want 250", got)
	}
}

func TestCompanyBalance_WithBucket(t *testing.T) {
	b := &CompanyBalance{
		CashBalance: decimal.NewFromInt(100),
		BankBalance: decimal.NewFromInt(250),
	}

	cash, bank := b.WithBucket(BalanceTypeBank, decimal.NewFromInt(300))
	if !cash.Equal(decimal.NewFromInt(100)) || !bank.Equal(decimal.NewFromInt(300)) {
		t.Errorf("WithBucket(BANK, 300) = (%s, %s), want (100, 300)", cash, bank)
	}

	cash, bank = b.WithBucket(BalanceTypeCash, decimal.Zero)
	if !cash.Equal(decimal.Zero) || !bank.Equal(decimal.NewFromInt(250)) {
		t.Errorf("WithBucket(CASH, 0) = (%s, %s), want (0, 250)", cash, bank)
	}
}

func TestFinancialDocument_EffectiveAmount(t *testing.T) {
	doc := &FinancialDocument{
		TotalGross: decimal.NewFromFloat(100.00),
		PaidAmount: decimal.NewFromFloat(40.00),
	}

	tests := []struct {
		status DocumentStatus
		want   decimal.Decimal
	}{
		{DocumentStatusPaid, decimal.NewFromFloat(100.00)},
		{DocumentStatusPartiallyPaid, decimal.NewFromFloat(40.00)},
		{DocumentStatusNotPaid, decimal.Zero},
		{DocumentStatusCancelled, decimal.Zero},
		{DocumentStatusDraft, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := doc.EffectiveAmount(tt.status); !got.Equal(tt.want) {
				t.Errorf("EffectiveAmount(%s) = %s, want %s", tt.status, got, tt.want)
			}
		})
	}
}

func TestStatusAffectsBalance(t *testing.T) {
	affecting := []DocumentStatus{DocumentStatusPaid, DocumentStatusPartiallyPaid}
	for _, s := range affecting {
		if !StatusAffectsBalance(s) {
			t.Errorf("StatusAffectsBalance(%s) = false, want true", s)
		}
	}

	neutral := []DocumentStatus{DocumentStatusDraft, DocumentStatusNotPaid, DocumentStatusCancelled}
	for _, s := range neutral {
		if StatusAffectsBalance(s) {
			t.Errorf("StatusAffectsBalance(%s) = true, want false", s)
		}
	}
}
