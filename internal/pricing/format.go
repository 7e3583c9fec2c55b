// Package pricing formats won amounts and derives discount metrics.
package pricing

import (
	"github.com/dustin/go-humanize"
)

const (
	eok = 100_000_000
	man = 10_000
)

// Format renders a won amount in 억/만 magnitude units without a currency
// suffix. Zero and negative amounts render as "-".
func Format(price int64) string {
	return FormatWithSuffix(price, "")
}

// FormatWithSuffix is Format with a caller-chosen suffix such as "원"
// appended to every non-empty result.
func FormatWithSuffix(price int64, suffix string) string {
	if price <= 0 {
		return "-"
	}
	switch {
	case price >= eok:
		out := humanize.Comma(price/eok) + "억"
		if m := (price % eok) / man; m > 0 {
			out += " " + humanize.Comma(m) + "만"
		}
		return out + suffix
	case price >= man:
		return humanize.Comma(price/man) + "만" + suffix
	default:
		return humanize.Comma(price) + suffix
	}
}

// Compact keeps only the leading unit: "5억" or "6,400만". Used in short
// notification texts.
func Compact(price int64) string {
	if price <= 0 {
		return "-"
	}
	if price >= eok {
		return humanize.Comma(price/eok) + "억"
	}
	return humanize.Comma(price/man) + "만"
}
