package assemble

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/header"
	"github.com/joseph-ayodele/po-extractor/internal/items"
	"github.com/joseph-ayodele/po-extractor/internal/normalize"
)

var testColumns = []Column{
	{Name: "PO No", Source: "header.po_number"},
	{Name: "Order Date", Source: "date.order"},
	{Name: "Ship Date", Source: "date.ship"},
	{Name: "Vendor Style", Source: "item.vendor_style"},
	{Name: "Metal", Source: "item.metal", Transform: TransformMetalType},
	{Name: "Color", Source: "item.metal", Transform: TransformMetalColor},
	{Name: "Quantity", Source: "item.quantity", Transform: TransformNumber},
	{Name: "Amount", Source: "item.amount", Transform: TransformAmount},
	{Name: "Line", Source: "item.line_no", Transform: TransformPad4},
	{Name: "Status", Source: "literal.Open"},
}

func newTestAssembler(t *testing.T, increment bool) *Assembler {
	t.Helper()
	a, err := NewAssembler(testColumns, DatePolicy{Increment: increment}, normalize.DotDecimal, nil)
	require.NoError(t, err)
	return a
}

func item(style string) items.LineItem {
	return items.LineItem{Fields: map[string]string{constants.FieldVendorStyle: style}}
}

func TestAssemble_IncrementDates(t *testing.T) {
	hdr := header.Fields{constants.FieldPONumber: "IG 123/4", constants.FieldOrderDate: "2024-01-01"}
	its := []items.LineItem{item("A"), item("B"), item("C")}

	table := newTestAssembler(t, true).Assemble("no dates here", hdr, its)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "2024-01-01", table.Rows[0][1])
	assert.Equal(t, "2024-01-02", table.Rows[1][1])
	assert.Equal(t, "2024-01-03", table.Rows[2][1])
	assert.Equal(t, table.Rows[2][1], table.Rows[2][2])

	flat := newTestAssembler(t, false).Assemble("no dates here", hdr, its)
	for _, r := range flat.Rows {
		assert.Equal(t, "2024-01-01", r[1])
	}
}

func TestAssemble_HeaderOnlyRow(t *testing.T) {
	hdr := header.Fields{constants.FieldPONumber: "IG 123/4", constants.FieldOrderDate: "March 3, 2024"}

	table := newTestAssembler(t, true).Assemble("", hdr, nil)
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, "IG 123/4", row[0])
	assert.Equal(t, "2024-03-03", row[1])
	assert.Equal(t, "", row[3])
	assert.Equal(t, "", row[6])
	assert.Equal(t, "Open", row[9])
	assert.Len(t, row, len(testColumns))
}

func TestAssemble_NoDatesLeavesEmpty(t *testing.T) {
	table := newTestAssembler(t, true).Assemble("", header.Fields{}, []items.LineItem{item("A")})
	assert.Equal(t, "", table.Rows[0][1])
	assert.Equal(t, "", table.Rows[0][2])
}

func TestAssemble_SpanDateWins(t *testing.T) {
	text := "ship by Feb 10, 2024\nIGR-100 ring"
	start := strings.Index(text, "IGR-100")
	it := item("IGR-100")
	it.Span = &items.Span{Start: start, End: start + 7}
	hdr := header.Fields{constants.FieldOrderDate: "2024-01-01"}

	table := newTestAssembler(t, true).Assemble(text, hdr, []items.LineItem{it})
	assert.Equal(t, "2024-02-10", table.Rows[0][1])
}

func TestAssemble_LineDateWins(t *testing.T) {
	it := item("A")
	it.Fields["line_date"] = "15/02/2024"
	a, err := NewAssembler(testColumns, DatePolicy{Increment: true, DayFirst: true}, normalize.DotDecimal, nil)
	require.NoError(t, err)

	table := a.Assemble("", header.Fields{constants.FieldOrderDate: "2024-01-01"}, []items.LineItem{it})
	assert.Equal(t, "2024-02-15", table.Rows[0][1])
}

func TestAssemble_Transforms(t *testing.T) {
	it := items.LineItem{Fields: map[string]string{
		constants.FieldVendorStyle: "A",
		constants.FieldMetal:       "14KT WG",
		constants.FieldQuantity:    "1,250",
		constants.FieldUnitPrice:   "2.50",
		constants.FieldDiscount:    "25",
		constants.FieldLineNo:      "7",
	}}
	row := newTestAssembler(t, true).Assemble("", header.Fields{}, []items.LineItem{it}).Rows[0]
	assert.Equal(t, "14K", row[4])
	assert.Equal(t, "White", row[5])
	assert.Equal(t, "1250", row[6])
	assert.Equal(t, "3100.00", row[7])
	assert.Equal(t, "0007", row[8])
}

func TestAssemble_Fallback(t *testing.T) {
	cols := []Column{{Name: "Date", Source: "header.ship_date", Fallback: "header.order_date", Transform: TransformDate}}
	a, err := NewAssembler(cols, DatePolicy{}, normalize.DotDecimal, nil)
	require.NoError(t, err)

	row := a.Assemble("", header.Fields{constants.FieldOrderDate: "Jan 5, 2024"}, nil).Rows[0]
	assert.Equal(t, "2024-01-05", row[0])
}

func TestNewAssembler_Errors(t *testing.T) {
	_, err := NewAssembler(nil, DatePolicy{}, normalize.DotDecimal, nil)
	assert.Error(t, err)

	_, err = NewAssembler([]Column{{Name: "X", Source: "bogus.x"}}, DatePolicy{}, normalize.DotDecimal, nil)
	assert.Error(t, err)
}

func TestFindDateNear(t *testing.T) {
	text := strings.Repeat("x", 300) + " 2024-05-06 " + strings.Repeat("y", 50) + "ITEM"
	at := strings.Index(text, "ITEM")
	span := items.Span{Start: at, End: at + 4}

	d, ok := FindDateNear(text, span, 200, 400)
	require.True(t, ok)
	assert.Equal(t, "2024-05-06", d)

	_, ok = FindDateNear(text, span, 10, 10)
	assert.False(t, ok)
}

func TestRecords(t *testing.T) {
	table := Table{Columns: []string{"A", "B"}, Rows: []Row{{"1", "2"}}}
	assert.Equal(t, []map[string]string{{"A": "1", "B": "2"}}, table.Records())
}

func TestAssemble_SuffixTransform(t *testing.T) {
	cols := []Column{{Name: "Suffix", Source: "item.suffix", Transform: TransformSuffix}}
	a, err := NewAssembler(cols, DatePolicy{}, normalize.DotDecimal, nil)
	require.NoError(t, err)

	for in, want := range map[string]string{"WG": "W", "yg": "Y", " pt ": "PT", "": ""} {
		it := items.LineItem{Fields: map[string]string{constants.FieldSuffix: in}}
		assert.Equal(t, want, a.Assemble("", header.Fields{}, []items.LineItem{it}).Rows[0][0], in)
	}
}

func TestAssemble_CodeTransformAndLiteralLineNo(t *testing.T) {
	cols := []Column{
		{Name: "Line", Source: "item.line_no", Fallback: "literal.1", Transform: TransformPad4},
		{Name: "Code", Source: "item.vendor_style", Transform: TransformCode},
	}
	a, err := NewAssembler(cols, DatePolicy{}, normalize.DotDecimal, nil)
	require.NoError(t, err)

	it := items.LineItem{Fields: map[string]string{constants.FieldVendorStyle: "P.22388A.000"}}
	table := a.Assemble("", header.Fields{}, []items.LineItem{it})
	assert.Equal(t, Row{"0001", "P-22388A-000"}, table.Rows[0])
}
