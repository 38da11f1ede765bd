// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders a decimal amount with two decimal places and
// thousands separators.
func FormatMoney(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	str := amount.Abs().StringFixed(2)
	parts := strings.Split(str, ".")

	result := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	return groupThousands(s[:n-3]) + "," + s[n-3:]
}

// FormatPercent formats a ratio as a signed percentage.
func FormatPercent(ratio float64) string {
	sign := ""
	if ratio > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, ratio*100)
}

// FormatPnL formats a profit or loss amount with an explicit sign.
func FormatPnL(pnl decimal.Decimal) string {
	formatted := FormatMoney(pnl)
	if pnl.IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatQuantity formats a share count with thousands separators.
func FormatQuantity(qty int64) string {
	if qty < 0 {
		return "-" + groupThousands(fmt.Sprintf("%d", -qty))
	}
	return groupThousands(fmt.Sprintf("%d", qty))
}
