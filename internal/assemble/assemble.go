// Package assemble merges header fields and line items into fixed-column
// output rows and applies the per-row date policy.
package assemble

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/header"
	"github.com/joseph-ayodele/po-extractor/internal/items"
	"github.com/joseph-ayodele/po-extractor/internal/normalize"
)

// Column sources.
const (
	SourceHeader  = "header"  // header.<field>
	SourceItem    = "item"    // item.<field>
	SourceDate    = "date"    // date.order | date.ship
	SourceLiteral = "literal" // literal.<text>
)

// Column transforms.
const (
	TransformNumber     = "number"
	TransformDate       = "date"
	TransformPad4       = "pad4"
	TransformMetalType  = "metal_type"
	TransformMetalColor = "metal_color"
	TransformAmount     = "amount" // item amount, else qty * unit price - discount
	TransformUpper      = "upper"
	TransformSuffix     = "suffix" // WG/YG/RG colour codes collapse to W/Y/R
	TransformCode       = "code"   // supplier item code parts joined by dashes
)

var suffixByCode = map[string]string{"WG": "W", "YG": "Y", "RG": "R"}

// Column is one output column. Source is "<kind>.<name>"; Fallback is read
// when Source resolves to "".
type Column struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	Fallback  string `json:"fallback,omitempty"`
	Transform string `json:"transform,omitempty"`
}

// Row holds one value per column, in column order. Missing values are "".
type Row []string

// Table is the assembled output of one document.
type Table struct {
	Columns []string
	Rows    []Row
}

// Records returns rows as column-keyed maps.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		m := make(map[string]string, len(t.Columns))
		for i, c := range t.Columns {
			m[c] = r[i]
		}
		out = append(out, m)
	}
	return out
}

// Assembler builds rows for one vendor column layout.
type Assembler struct {
	columns []Column
	policy  DatePolicy
	locale  normalize.Locale
	logger  *slog.Logger
}

// NewAssembler validates column sources and fills window defaults.
func NewAssembler(columns []Column, policy DatePolicy, locale normalize.Locale, logger *slog.Logger) (*Assembler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no output columns")
	}
	for _, c := range columns {
		for _, src := range []string{c.Source, c.Fallback} {
			if src == "" {
				continue
			}
			kind, _, _ := strings.Cut(src, ".")
			switch kind {
			case SourceHeader, SourceItem, SourceDate, SourceLiteral:
			default:
				return nil, fmt.Errorf("column %q: unknown source %q", c.Name, src)
			}
		}
	}
	if policy.Before <= 0 {
		policy.Before = DefaultWindowBefore
	}
	if policy.After <= 0 {
		policy.After = DefaultWindowAfter
	}
	if len(policy.BaseFields) == 0 {
		policy.BaseFields = []string{constants.FieldOrderDate}
	}
	return &Assembler{columns: columns, policy: policy, locale: locale, logger: logger}, nil
}

// Header returns the column names in output order.
func (a *Assembler) Header() []string {
	out := make([]string, len(a.columns))
	for i, c := range a.columns {
		out[i] = c.Name
	}
	return out
}

// WithIncrement returns a copy of the assembler with the increment flag set.
func (a *Assembler) WithIncrement(on bool) *Assembler {
	cp := *a
	cp.policy.Increment = on
	return &cp
}

// Assemble produces one row per item, or a single header-only row when there
// are no items.
func (a *Assembler) Assemble(text string, hdr header.Fields, its []items.LineItem) Table {
	t := Table{Columns: a.Header()}
	if len(its) == 0 {
		its = []items.LineItem{{Fields: map[string]string{}}}
		a.logger.Info("assemble.header_only")
	}
	for idx, it := range its {
		date := a.policy.resolve(text, hdr, it, idx)
		t.Rows = append(t.Rows, a.row(hdr, it, date))
	}
	return t
}

func (a *Assembler) row(hdr header.Fields, it items.LineItem, date string) Row {
	r := make(Row, len(a.columns))
	for i, c := range a.columns {
		v := a.lookup(c.Source, hdr, it, date)
		if v == "" && c.Fallback != "" {
			v = a.lookup(c.Fallback, hdr, it, date)
		}
		r[i] = a.transform(c.Transform, v, it)
	}
	return r
}

func (a *Assembler) lookup(src string, hdr header.Fields, it items.LineItem, date string) string {
	kind, name, _ := strings.Cut(src, ".")
	switch kind {
	case SourceHeader:
		return hdr.Get(name)
	case SourceItem:
		return it.Get(name)
	case SourceDate:
		return date
	case SourceLiteral:
		return name
	}
	return ""
}

func (a *Assembler) transform(kind, v string, it items.LineItem) string {
	switch kind {
	case TransformNumber:
		return normalize.Number(v, a.locale)
	case TransformDate:
		return normalize.DateWith(v, normalize.DateOptions{DayFirst: a.policy.DayFirst})
	case TransformPad4:
		return normalize.PadLineNo(v, 4)
	case TransformMetalType:
		m, _ := normalize.SplitMetal(v)
		return m
	case TransformMetalColor:
		_, c := normalize.SplitMetal(v)
		if c == "" {
			c = normalize.InferMetalColor(it.Get(constants.FieldDescription))
		}
		return c
	case TransformAmount:
		if n := normalize.Number(v, a.locale); n != "" {
			return n
		}
		return normalize.Amount(it.Get(constants.FieldQuantity), it.Get(constants.FieldUnitPrice), it.Get(constants.FieldDiscount), a.locale)
	case TransformUpper:
		return strings.ToUpper(v)
	case TransformSuffix:
		up := strings.ToUpper(strings.TrimSpace(v))
		if s, ok := suffixByCode[up]; ok {
			return s
		}
		return up
	case TransformCode:
		return normalize.ItemCode(v)
	}
	return v
}
