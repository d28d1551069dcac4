package document

import (
	"regexp"
	"strings"
)

var (
	rePOLabel = regexp.MustCompile(`\b(po|purchase order|order)\b`)
	reQtyWord = regexp.MustCompile(`\b(qty|quantity|style|sku|item)\b`)
	reDate    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	reAmount  = regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+\.\d{2}\b`)
)

// naive heuristic quality based on decoded text characteristics;
// used to pick between native PDF text and pdftotext output.
func heuristicQuality(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if rePOLabel.MatchString(txtL) {
		score += 0.2
	}
	if reQtyWord.MatchString(txtL) {
		score += 0.15
	}
	if reDate.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
