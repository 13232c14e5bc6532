package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{33.9, "$33.90"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{0.005, "$0.01"},
		{-3, "-$3.00"},
		{999.999, "$1,000.00"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatMoney("$", tc.amount))
		})
	}
}

func TestCents_TaxOnScenarioTotal(t *testing.T) {
	totals := TotalsFromSubtotal(30)
	assert.Equal(t, "3.9", Cents(totals.TaxAmount).String())
	assert.Equal(t, "33.9", Cents(totals.FinalTotal).String())
}
