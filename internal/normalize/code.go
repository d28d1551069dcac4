package normalize

import (
	"regexp"
	"strings"
)

var codeSepRe = regexp.MustCompile(`[\s._\-\x{2010}-\x{2015}]+`)

// ItemCode joins the parts of a supplier item code with single dashes, so
// "P 22388A 000", "P.22388A.000" and "P–22388A–000" all read "P-22388A-000".
// A code without separators is returned as is.
func ItemCode(s string) string {
	return strings.Trim(codeSepRe.ReplaceAllString(strings.TrimSpace(s), "-"), "-")
}
