// Package core holds the domain model of the ledger: transactions,
// wallets, goals, calendar dates and the few formatting helpers the
// rest of the system shares.
package core

import "strconv"

// FormatVND renders an amount in đồng with dot thousand separators,
// e.g. 1500000 -> "1.500.000₫". Amounts are stored in the smallest
// currency unit; there is no fractional part to render.
func FormatVND(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out) + "₫"
	}
	return string(out) + "₫"
}
