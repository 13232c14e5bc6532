package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cents rounds an amount half away from zero to two decimal places for
// display. Stored and computed values keep full float precision.
func Cents(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// FormatMoney renders amount as symbol plus a thousands-grouped figure with
// two decimals, e.g. "$1,234.50" or "-$3.00".
func FormatMoney(symbol string, amount float64) string {
	d := Cents(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + symbol + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
