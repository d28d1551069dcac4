package normalize

import "regexp"

var (
	commaDecimalRe = regexp.MustCompile(`\d[\d.\s]*,\d{1,2}\b`)
	dotDecimalRe   = regexp.MustCompile(`\d[\d,]*\.\d{1,2}\b`)
)

// DetectLocale guesses the decimal convention of text by counting amounts
// written "1.234,56" against amounts written "1,234.56".
func DetectLocale(text string) Locale {
	comma := len(commaDecimalRe.FindAllStringIndex(text, -1))
	dot := len(dotDecimalRe.FindAllStringIndex(text, -1))
	if comma > dot {
		return CommaDecimal
	}
	return DotDecimal
}
