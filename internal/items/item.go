// Package items recovers PO line items with an ordered chain of parsers:
// anchored layout parsers (single-pattern or wrapped-row) first, a
// block-scanning loose parser after.
package items

import (
	"github.com/joseph-ayodele/po-extractor/constants"
)

// Span is a byte range in the document text. On an item, Span is where a
// strict match occurred and drives the nearby-date lookup; Block is where a
// loose block started and is kept for debugging only.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LineItem is one recovered product line. Fields hold raw-but-trimmed values
// keyed by canonical field name. Items are not mutated after parsing.
type LineItem struct {
	Fields     map[string]string `json:"fields"`
	Span       *Span             `json:"span,omitempty"`
	Block      *Span             `json:"block,omitempty"`
	Confidence float64           `json:"confidence"`
	Tier       constants.Tier    `json:"tier"`
}

// Position returns the item's offset in the document text, or -1.
func (it LineItem) Position() int {
	switch {
	case it.Span != nil:
		return it.Span.Start
	case it.Block != nil:
		return it.Block.Start
	}
	return -1
}

// Get returns a field value, "" when absent.
func (it LineItem) Get(name string) string {
	return it.Fields[name]
}

// HasAnchor reports whether one of vendor style, SKU or size was recovered.
func (it LineItem) HasAnchor() bool {
	for _, f := range constants.AnchorFields {
		if it.Fields[f] != "" {
			return true
		}
	}
	return false
}

// Key is the composite identity used for deduplication.
type Key struct {
	VendorStyle string
	SKU         string
	Size        string
	Description string
}

// Key returns the item's dedupe key. Comparison is exact and case-sensitive.
func (it LineItem) Key() Key {
	return Key{
		VendorStyle: it.Fields[constants.FieldVendorStyle],
		SKU:         it.Fields[constants.FieldSKU],
		Size:        it.Fields[constants.FieldSize],
		Description: it.Fields[constants.FieldDescription],
	}
}

// Dedupe drops items whose key was already seen; the first occurrence wins.
func Dedupe(items []LineItem) []LineItem {
	seen := make(map[Key]struct{}, len(items))
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		k := it.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}
