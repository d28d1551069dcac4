package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		loc  Locale
		want string
	}{
		{"thousands comma", "1,250", DotDecimal, "1250"},
		{"trailing zeros", "1250.00", DotDecimal, "1250"},
		{"plain integer", "1250", DotDecimal, "1250"},
		{"strip trailing zeros", "12.5000", DotDecimal, "12.5"},
		{"four decimals max", "0.123456", DotDecimal, "0.1235"},
		{"currency symbol", "$1,234.50", DotDecimal, "1234.5"},
		{"currency code", "USD 99.90", DotDecimal, "99.9"},
		{"bracketed negative", "(123.45)", DotDecimal, "-123.45"},
		{"leading minus", "-7", DotDecimal, "-7"},
		{"european both separators", "1.234,56", CommaDecimal, "1234.56"},
		{"european comma only", "12,5", CommaDecimal, "12.5"},
		{"european dot thousands", "1.250", CommaDecimal, "1250"},
		{"european dot decimal", "12.50", CommaDecimal, "12.5"},
		{"dot locale both separators", "1,234.56", DotDecimal, "1234.56"},
		{"near integer", "3.0000000001", DotDecimal, "3"},
		{"number with unit", "12 PCS", DotDecimal, "12"},
		{"empty", "", DotDecimal, ""},
		{"garbage", "n/a", DotDecimal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.in, tt.loc))
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long month", "March 3, 2024", "2024-03-03"},
		{"abbreviated month", "Jan 15, 2024", "2024-01-15"},
		{"iso", "2024-02-29", "2024-02-29"},
		{"us numeric", "03/04/2024", "2024-03-04"},
		{"noisy prefix", "PO DATE: March 3, 2024 (revised)", "2024-03-03"},
		{"ordinal", "March 3rd, 2024", "2024-03-03"},
		{"not a date", "not a date", ""},
		{"empty", "", ""},
		{"bare number", "12", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Date(tt.in))
		})
	}
}

func TestDateWith_DayFirst(t *testing.T) {
	assert.Equal(t, "2024-04-03", DateWith("03/04/2024", DateOptions{DayFirst: true}))
	assert.Equal(t, "2024-04-03", DateWith("03.04.2024", DateOptions{DayFirst: true}))
}

func TestFindDate(t *testing.T) {
	d, ok := FindDate("LN 1 ring\nShip by Jan 5, 2024 then Feb 1, 2024")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-05", d)

	_, ok = FindDate("no dates here at all")
	assert.False(t, ok)
}

func TestDetectLocale(t *testing.T) {
	assert.Equal(t, CommaDecimal, DetectLocale("Preis 1.234,56 EUR\nSumme 99,90"))
	assert.Equal(t, DotDecimal, DetectLocale("Total $1,234.56\nTax 9.90"))
	assert.Equal(t, DotDecimal, DetectLocale("no numbers"))
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name                string
		qty, unit, discount string
		want                string
	}{
		{"simple", "2", "10.50", "", "21.00"},
		{"absolute discount", "3", "100", "15", "285.00"},
		{"percent discount", "4", "25", "10%", "90.00"},
		{"missing unit", "4", "", "", ""},
		{"missing qty", "", "4", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Amount(tt.qty, tt.unit, tt.discount, DotDecimal))
		})
	}
}

func TestSplitMetal(t *testing.T) {
	tests := []struct {
		in          string
		metal, tint string
	}{
		{"14K WG", "14K", "White"},
		{"10KT YELLOW", "10K", "Yellow"},
		{"PLATINUM", "PT", ""},
		{"18KRG", "18K", "Rose"},
		{"STERLING", "STERLING", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, c := SplitMetal(tt.in)
			assert.Equal(t, tt.metal, m)
			assert.Equal(t, tt.tint, c)
		})
	}
}

func TestPadLineNo(t *testing.T) {
	assert.Equal(t, "0007", PadLineNo("7", 4))
	assert.Equal(t, "12345", PadLineNo("12345", 4))
	assert.Equal(t, "A1", PadLineNo(" A1 ", 4))
}

func TestItemCode(t *testing.T) {
	tests := map[string]string{
		"P 22388A 000":   "P-22388A-000",
		"P.22388A.000":   "P-22388A-000",
		"P-22388A-000":   "P-22388A-000",
		"P_22388A__000 ": "P-22388A-000",
		"P–22388A–000":   "P-22388A-000",
		"P22388A000":     "P22388A000",
		" .P 1. ":        "P-1",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ItemCode(in), in)
	}
}
