package utils

import (
	"fmt"
	"strings"
)

// FormatCurrencyIDR formats an amount as Indonesian Rupiah with thousands
// separators, e.g. 15000 -> "Rp 15.000".
func FormatCurrencyIDR(amount float64) string {
	whole := fmt.Sprintf("%.0f", amount)

	var groups []string
	for i := len(whole); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{whole[start:i]}, groups...)
	}

	return "Rp " + strings.Join(groups, ".")
}
