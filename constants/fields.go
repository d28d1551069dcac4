package constants

import (
	"strings"
)

// Canonical header and item field names shared by parsers and profiles.
const (
	FieldPONumber   = "po_number"
	FieldOrderDate  = "order_date"
	FieldShipDate   = "ship_date"
	FieldSupplier   = "supplier"
	FieldTotalUnits = "total_units"
	FieldTotalCost  = "total_cost"

	FieldLineNo      = "line_no"
	FieldVendorStyle = "vendor_style"
	FieldSKU         = "sku"
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldUnitPrice   = "unit_price"
	FieldAmount      = "amount"
	FieldDiscount    = "discount"
	FieldMetal       = "metal"
	FieldSuffix      = "suffix"
	FieldSize        = "size"
	FieldComments    = "comments"
	FieldLineDate    = "line_date"
)

// AnchorFields are the item fields of which at least one must be recovered
// for a loose block to count as a line item.
var AnchorFields = []string{FieldVendorStyle, FieldSKU, FieldSize}

var allFields = []string{
	FieldPONumber, FieldOrderDate, FieldShipDate, FieldSupplier, FieldTotalUnits, FieldTotalCost,
	FieldLineNo, FieldVendorStyle, FieldSKU, FieldDescription, FieldQuantity, FieldUnitPrice,
	FieldAmount, FieldDiscount, FieldMetal, FieldSuffix, FieldSize, FieldComments, FieldLineDate,
}

// Canonicalize maps a human label ("PO No", "Qty") to a canonical field name.
// Unknown labels are returned snake_cased with ok=false.
func Canonicalize(input string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	// synonyms map
	synonyms := map[string]string{
		"po":          FieldPONumber,
		"po no":       FieldPONumber,
		"po #":        FieldPONumber,
		"po number":   FieldPONumber,
		"po date":     FieldOrderDate,
		"date":        FieldOrderDate,
		"vendor":      FieldSupplier,
		"qty":         FieldQuantity,
		"order qty":   FieldQuantity,
		"style":       FieldVendorStyle,
		"style no":    FieldVendorStyle,
		"item no":     FieldSKU,
		"price":       FieldUnitPrice,
		"unit cost":   FieldUnitPrice,
		"total qty":   FieldTotalUnits,
		"total units": FieldTotalUnits,
		"remarks":     FieldComments,
	}
	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	snake := strings.Join(strings.FieldsFunc(normalized, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), "_")
	for _, f := range allFields {
		if snake == f {
			return f, true
		}
	}
	return snake, false
}
