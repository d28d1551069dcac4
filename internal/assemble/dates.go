package assemble

import (
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/items"
	"github.com/joseph-ayodele/po-extractor/internal/normalize"
)

// Default date search window around an item's source span.
const (
	DefaultWindowBefore = 200
	DefaultWindowAfter  = 400
)

// DatePolicy decides the order and ship dates of each row.
type DatePolicy struct {
	Increment  bool     // base date + row index days; false repeats the base date
	Before     int      // bytes searched before a span
	After      int      // bytes searched after a span
	BaseFields []string // header fields tried, in order, for the base date
	DayFirst   bool
}

// FindDateNear looks for a date-shaped substring in text within
// [span.Start-before, span.End+after], clamped to the text.
func FindDateNear(text string, span items.Span, before, after int) (string, bool) {
	start := span.Start - before
	if start < 0 {
		start = 0
	}
	end := span.End + after
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return "", false
	}
	// keep the window on rune boundaries
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return normalize.FindDate(text[start:end])
}

// baseDate returns the first parseable header date named by BaseFields.
func (p DatePolicy) baseDate(hdr map[string]string) (time.Time, bool) {
	for _, f := range p.BaseFields {
		v := hdr[f]
		if v == "" {
			continue
		}
		iso := normalize.DateWith(v, normalize.DateOptions{DayFirst: p.DayFirst})
		if iso == "" {
			continue
		}
		t, err := time.Parse(normalize.ISOLayout, iso)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolve returns the ISO date for the idx-th item:
// an explicit line date, else a date near the item's span, else the header
// base date (incremented by idx days when enabled), else "".
func (p DatePolicy) resolve(text string, hdr map[string]string, it items.LineItem, idx int) string {
	if v := it.Get(constants.FieldLineDate); v != "" {
		if iso := normalize.DateWith(v, normalize.DateOptions{DayFirst: p.DayFirst}); iso != "" {
			return iso
		}
	}
	if it.Span != nil {
		if d, ok := FindDateNear(text, *it.Span, p.Before, p.After); ok {
			return d
		}
	}
	base, ok := p.baseDate(hdr)
	if !ok {
		return ""
	}
	if p.Increment {
		base = base.AddDate(0, 0, idx)
	}
	return base.Format(normalize.ISOLayout)
}
