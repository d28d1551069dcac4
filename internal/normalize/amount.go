package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount computes quantity * unit price less discount and renders it with two
// decimals. A discount ending in "%" is a percentage of the gross amount.
// Missing or unparseable quantity or unit price yields "".
func Amount(qty, unit, discount string, loc Locale) string {
	q, ok := ParseDecimal(qty, loc)
	if !ok {
		return ""
	}
	u, ok := ParseDecimal(unit, loc)
	if !ok {
		return ""
	}
	gross := q.Mul(u)

	discount = strings.TrimSpace(discount)
	if discount != "" {
		if strings.HasSuffix(discount, "%") {
			if pct, ok := ParseDecimal(strings.TrimSuffix(discount, "%"), loc); ok {
				gross = gross.Sub(gross.Mul(pct).Div(decimal.NewFromInt(100)))
			}
		} else if d, ok := ParseDecimal(discount, loc); ok {
			gross = gross.Sub(d)
		}
	}
	return gross.StringFixed(2)
}

// PadLineNo left-pads a numeric line number with zeros to width.
// Non-numeric input is returned trimmed.
func PadLineNo(s string, width int) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.Trim(s, "0123456789") != "" || len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
