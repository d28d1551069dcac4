package constants

import "strings"

// Input formats recorded on a Document and in the run ledger.
const (
	FormatPDF  = "PDF"
	FormatTXT  = "TXT"
	FormatRTF  = "RTF"
	FormatHTML = "HTML"
	FormatDOCX = "DOCX"
)

// FileTypes lists every format the acquisition layer understands.
var FileTypes = []string{FormatPDF, FormatTXT, FormatRTF, FormatHTML, FormatDOCX}

// AllowedExtensions maps accepted file extensions to their input format.
var AllowedExtensions = map[string]string{
	"pdf":  FormatPDF,
	"txt":  FormatTXT,
	"text": FormatTXT,
	"rtf":  FormatRTF,
	"html": FormatHTML,
	"htm":  FormatHTML,
	"docx": FormatDOCX,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// FormatForExt returns the input format for an extension, or "" when unsupported.
func FormatForExt(ext string) string {
	return AllowedExtensions[NormalizeExt(ext)]
}

// Output sink formats.
const (
	OutputXLSX = "xlsx"
	OutputCSV  = "csv"
	OutputJSON = "json"
)

// OutputFormats holds the accepted values for --formats.
var OutputFormats = []string{OutputXLSX, OutputCSV, OutputJSON}
