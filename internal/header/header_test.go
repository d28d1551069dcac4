package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-extractor/internal/normalize"
)

var poRule = Rule{
	Field: "po_number",
	Patterns: []string{
		`ASHI\s*PO\s*#\s*[:\-]?\s*([A-Z0-9/-]+)`,
		`PO\s*No\.?\s*[:\-]?\s*([A-Z0-9/-]+)`,
	},
}

func TestParse_LabelTolerance(t *testing.T) {
	p, err := NewParser([]Rule{poRule}, Options{}, nil)
	require.NoError(t, err)

	for _, text := range []string{"PO No: 4411", "PO No - 4411", "PO No 4411", "po no.4411"} {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, "4411", p.Parse(text).Get("po_number"))
		})
	}
}

func TestParse_OrderedPatterns(t *testing.T) {
	p, err := NewParser([]Rule{poRule}, Options{}, nil)
	require.NoError(t, err)

	// the specific pattern wins even though the permissive one matches earlier text
	fields := p.Parse("PO No: 1111\nASHI PO # IG123/45")
	assert.Equal(t, "IG123/45", fields.Get("po_number"))
}

func TestParse_MissingFieldsAreEmpty(t *testing.T) {
	p, err := NewParser([]Rule{
		poRule,
		{Field: "supplier", Patterns: []string{`VENDOR\s*:\s*(.+)`}},
		{Field: "order_date", Patterns: []string{`PO\s*DATE\s*[:\-]?\s*(.+)`}, Kind: KindDate},
	}, Options{}, nil)
	require.NoError(t, err)

	fields := p.Parse("nothing useful here")
	require.Len(t, fields, 3)
	for _, name := range p.Fields() {
		v, ok := fields[name]
		assert.True(t, ok, name)
		assert.Equal(t, "", v, name)
	}
}

func TestParse_Kinds(t *testing.T) {
	p, err := NewParser([]Rule{
		{Field: "order_date", Patterns: []string{`PO\s*DATE\s*[:\-]?\s*([A-Za-z]{3,}\s+\d{1,2},\s+\d{4})`}, Kind: KindDate},
		{Field: "total_units", Patterns: []string{`TOTAL\s*QTY\s*[:\-]?\s*([0-9.,]+)`}, Kind: KindNumber},
		{Field: "supplier", Patterns: []string{`TRANS\s*#\s*[:\-]?\s*(.+)`}},
	}, Options{}, nil)
	require.NoError(t, err)

	fields := p.Parse("PO DATE: March 3, 2024\nTRANS #   Acme    Jewels\nTOTAL QTY: 1,250.00")
	assert.Equal(t, "2024-03-03", fields.Get("order_date"))
	assert.Equal(t, "1250", fields.Get("total_units"))
	assert.Equal(t, "Acme Jewels", fields.Get("supplier"))
}

func TestParse_CommaLocale(t *testing.T) {
	p, err := NewParser([]Rule{
		{Field: "total_cost", Patterns: []string{`TOTAL\s*[:\-]?\s*([0-9.,]+)`}, Kind: KindNumber},
	}, Options{Locale: normalize.CommaDecimal}, nil)
	require.NoError(t, err)
	assert.Equal(t, "1234.5", p.Parse("TOTAL: 1.234,50").Get("total_cost"))
}

func TestParse_LabelLookahead(t *testing.T) {
	p, err := NewParser([]Rule{
		{Field: "order_date", Label: `Order\s+Date`, Kind: KindDate},
		{Field: "customer", Label: `Customer\s+No`},
	}, Options{DayFirst: true}, nil)
	require.NoError(t, err)

	text := "Order Date\n\n  05/02/2024\nCustomer No: C-991"
	fields := p.Parse(text)
	assert.Equal(t, "2024-02-05", fields.Get("order_date"))
	assert.Equal(t, "C-991", fields.Get("customer"))
}

func TestNewParser_Errors(t *testing.T) {
	_, err := NewParser([]Rule{{Field: "x", Patterns: []string{`(`}}}, Options{}, nil)
	assert.Error(t, err)

	_, err = NewParser([]Rule{{Patterns: []string{`a`}}}, Options{}, nil)
	assert.Error(t, err)
}

func TestParse_Idempotent(t *testing.T) {
	p, err := NewParser([]Rule{poRule}, Options{}, nil)
	require.NoError(t, err)
	text := "ASHI PO # IG100/2"
	assert.Equal(t, p.Parse(text), p.Parse(text))
}
