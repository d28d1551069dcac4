// Package normalize coerces raw numeric and date strings pulled from PO text
// into canonical forms. Every function returns "" on failure instead of an error.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Locale selects the decimal separator convention of a vendor's documents.
type Locale int

const (
	// DotDecimal is "1,234.56".
	DotDecimal Locale = iota
	// CommaDecimal is "1.234,56".
	CommaDecimal
)

func (l Locale) String() string {
	if l == CommaDecimal {
		return "comma"
	}
	return "dot"
}

// ParseLocale maps "comma"/"eu" to CommaDecimal and anything else to DotDecimal.
func ParseLocale(s string) Locale {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "comma", "eu", "european", "comma-decimal":
		return CommaDecimal
	}
	return DotDecimal
}

var (
	currencyRe      = regexp.MustCompile(`(?i)R\$|[$€£¥₹]|\b(?:USD|EUR|GBP|AUD|NZD|CAD|INR|CHF|DKK|SEK)\b`)
	numberTokenRe   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	dotThousandsRe  = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	integerEpsilon  = decimal.New(1, -9)
	maxDecimalPlace = int32(4)
)

// Number normalizes a numeric string. Integer values render without a decimal
// point; other values keep up to four decimals with trailing zeros stripped.
// "(123.45)" is negative. Unparseable input yields "".
func Number(s string, loc Locale) string {
	d, ok := ParseDecimal(s, loc)
	if !ok {
		return ""
	}
	return Format(d)
}

// Format renders d with the integer and trailing-zero rules of Number.
func Format(d decimal.Decimal) string {
	r := d.Round(0)
	if d.Sub(r).Abs().LessThanOrEqual(integerEpsilon) {
		return r.String()
	}
	return d.Round(maxDecimalPlace).String()
}

// ParseDecimal parses s under loc after stripping currency markers, whitespace
// and thousands separators.
func ParseDecimal(s string, loc Locale) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = currencyRe.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' {
			return -1
		}
		return r
	}, s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else if strings.HasSuffix(s, "-") {
		negative = !negative
		s = s[:len(s)-1]
	}
	if s == "" {
		return decimal.Zero, false
	}

	s = canonicalSeparators(s, loc)

	d, err := decimal.NewFromString(s)
	if err != nil {
		tok := numberTokenRe.FindString(s)
		if tok == "" {
			return decimal.Zero, false
		}
		if d, err = decimal.NewFromString(tok); err != nil {
			return decimal.Zero, false
		}
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// canonicalSeparators rewrites s so that "." is the only decimal separator and
// no thousands separators remain.
func canonicalSeparators(s string, loc Locale) string {
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		if loc == CommaDecimal {
			lastDot := strings.LastIndex(s, ".")
			lastComma := strings.LastIndex(s, ",")
			if lastComma > lastDot {
				s = strings.ReplaceAll(s, ".", "")
				return strings.Replace(s, ",", ".", 1)
			}
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.ReplaceAll(s, ",", "")
	case hasComma:
		if loc == CommaDecimal && strings.Count(s, ",") == 1 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case hasDot:
		if loc == CommaDecimal && dotThousandsRe.MatchString(s) {
			return strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// IsNumber reports whether s parses as a number under loc.
func IsNumber(s string, loc Locale) bool {
	_, ok := ParseDecimal(s, loc)
	return ok
}
