package document

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/po-extractor/constants"
)

func (e *Extractor) extractPDF(ctx context.Context, path string) (*Document, error) {
	var warnings []string

	// a structurally broken file may still carry a readable text layer
	pageCount := 0
	if !e.cfg.SkipValidate {
		n, err := validatePDF(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("validate: %v", err))
			e.logger.Warn("document.pdf.validate_failed", "path", path, "error", err)
		}
		pageCount = n
	}

	switch e.cfg.Engine {
	case EnginePdftotext:
		doc, err := e.pdftotextDocument(ctx, path)
		if err != nil {
			return nil, err
		}
		doc.Warnings = append(doc.Warnings, warnings...)
		return doc, nil
	case EngineNative:
		doc, err := e.nativeDocument(path)
		if err != nil {
			return nil, err
		}
		doc.Warnings = append(doc.Warnings, warnings...)
		return doc, nil
	}

	native, err := e.nativeDocument(path)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("native reader: %v", err))
		e.logger.Warn("document.pdf.native_failed", "path", path, "error", err)
	}
	if native != nil && native.Quality >= 0.5 {
		native.Warnings = append(native.Warnings, warnings...)
		return native, nil
	}

	fallback, ferr := e.pdftotextDocument(ctx, path)
	if ferr != nil {
		if native != nil && strings.TrimSpace(native.Text) != "" {
			native.Warnings = append(native.Warnings, warnings...)
			native.Warnings = append(native.Warnings, fmt.Sprintf("pdftotext: %v", ferr))
			return native, nil
		}
		return nil, fmt.Errorf("no text layer: %w", ferr)
	}
	if native != nil && native.Quality > fallback.Quality {
		native.Warnings = append(native.Warnings, warnings...)
		return native, nil
	}
	if pageCount > 0 && fallback.PageCount != pageCount {
		warnings = append(warnings, fmt.Sprintf("pdftotext pages=%d, pdf pages=%d", fallback.PageCount, pageCount))
	}
	fallback.Warnings = append(fallback.Warnings, warnings...)
	return fallback, nil
}

// validatePDF reads and validates the PDF structure and returns its page count.
func validatePDF(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}

// nativeDocument reads page text and table rows with the pure-Go reader.
func (e *Extractor) nativeDocument(path string) (doc *Document, err error) {
	// the reader panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	if e.cfg.MaxPages > 0 && n > e.cfg.MaxPages {
		n = e.cfg.MaxPages
	}

	var (
		pages    []string
		tables   [][]TableRow
		warnings []string
	)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			tables = append(tables, nil)
			continue
		}
		rows, rerr := p.GetTextByRow()
		if rerr != nil {
			warnings = append(warnings, fmt.Sprintf("page %d rows: %v", i, rerr))
		}
		lines, tableRows := e.layoutRows(rows)

		text := strings.Join(lines, "\n")
		if strings.TrimSpace(text) == "" {
			if plain, perr := p.GetPlainText(nil); perr == nil {
				text = strings.TrimSpace(plain)
			} else {
				warnings = append(warnings, fmt.Sprintf("page %d text: %v", i, perr))
			}
		}
		pages = append(pages, text)
		tables = append(tables, tableRows)
	}

	doc = newDocument(path, constants.FormatPDF, "pdf-native", pages, tables)
	doc.Warnings = warnings
	return doc, nil
}

// layoutRows rebuilds text lines from positioned glyph rows, top to bottom.
// Runs of glyphs separated by more than CellGap become cells; rows with at
// least MinTableCells cells are reported as table rows.
func (e *Extractor) layoutRows(rows pdf.Rows) (lines []string, tableRows []TableRow) {
	sorted := make([]*pdf.Row, 0, len(rows))
	for _, r := range rows {
		if r != nil && len(r.Content) > 0 {
			sorted = append(sorted, r)
		}
	}
	// PDF y grows upwards
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position > sorted[j].Position })

	for _, row := range sorted {
		cells := splitCells(row.Content, e.cfg.CellGap)
		if len(cells) == 0 {
			continue
		}
		lines = append(lines, strings.Join(cells, "  "))
		if len(cells) >= e.cfg.MinTableCells {
			tableRows = append(tableRows, TableRow(cells))
		}
	}
	return lines, tableRows
}

func splitCells(words pdf.TextHorizontal, cellGap float64) []string {
	glyphs := make([]pdf.Text, 0, len(words))
	for _, w := range words {
		if w.S != "" {
			glyphs = append(glyphs, w)
		}
	}
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var (
		cells []string
		cur   strings.Builder
		end   float64
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			cells = append(cells, s)
		}
		cur.Reset()
	}
	for i, g := range glyphs {
		if i > 0 {
			gap := g.X - end
			switch {
			case gap > cellGap:
				flush()
			case gap > g.FontSize*0.2 && !strings.HasSuffix(cur.String(), " "):
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(g.S)
		end = g.X + g.W
	}
	flush()
	return cells
}

// pdftotextDocument runs `pdftotext -layout -enc UTF-8 -eol unix <path> -`.
func (e *Extractor) pdftotextDocument(ctx context.Context, path string) (*Document, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	text := strings.TrimRight(string(out), "\f\n")
	// A form-feed \f is used as page separator by default
	pages := strings.Split(text, "\f")
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}
	return newDocument(path, constants.FormatPDF, "pdftotext", pages, nil), nil
}
