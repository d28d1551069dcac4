// Package document turns an input file into the text a PO parser works on:
// per-page text, detected table rows, and the concatenated document string.
package document

import "strings"

// TableRow is one detected table row, cells left to right.
type TableRow []string

// Document is one acquired input file. It is not modified after Extract returns.
type Document struct {
	Path      string
	Format    string // constants.FormatPDF, FormatTXT, ...
	Method    string // "pdf-native" | "pdftotext" | "text" | "rtf" | "html" | "docx"
	Pages     []string
	Tables    [][]TableRow // per page
	Text      string
	PageCount int
	Quality   float32
	Warnings  []string
}

// TableCellSep joins table cells when tables are folded into the document text.
const TableCellSep = " | "

// Combine builds the document text: each page's text followed by that page's
// table rows (cells joined with " | "), everything joined with "\n".
func Combine(pages []string, tables [][]TableRow) string {
	var parts []string
	for i, p := range pages {
		parts = append(parts, p)
		if i < len(tables) {
			for _, row := range tables[i] {
				parts = append(parts, strings.Join(row, TableCellSep))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// newDocument fills Text, PageCount and Quality from pages and tables.
func newDocument(path, format, method string, pages []string, tables [][]TableRow) *Document {
	d := &Document{
		Path:      path,
		Format:    format,
		Method:    method,
		Pages:     pages,
		Tables:    tables,
		PageCount: len(pages),
	}
	d.Text = Combine(pages, tables)
	d.Quality = heuristicQuality(d.Text)
	return d
}
