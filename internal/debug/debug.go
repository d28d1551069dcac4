// Package debug dumps intermediate extraction artifacts next to the output.
package debug

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/po-extractor/internal/assemble"
	"github.com/joseph-ayodele/po-extractor/internal/document"
	"github.com/joseph-ayodele/po-extractor/internal/items"
)

// Artifact file names inside the debug directory.
const (
	CombinedTextFile = "combined_text.txt"
	ItemsFile        = "extracted_items.json"
	RowsFile         = "rows.json"
	PagesDir         = "pages"
)

// Sink receives the intermediate results of one run. Failures are reported
// but never abort extraction.
type Sink interface {
	Text(ctx context.Context, doc *document.Document) error
	Items(ctx context.Context, res items.Result) error
	Rows(ctx context.Context, table assemble.Table) error
}

// Noop discards everything.
type Noop struct{}

func (Noop) Text(context.Context, *document.Document) error { return nil }
func (Noop) Items(context.Context, items.Result) error      { return nil }
func (Noop) Rows(context.Context, assemble.Table) error     { return nil }

var _ Sink = (*FileSink)(nil)

// FileSink writes artifacts under Dir.
type FileSink struct {
	Dir    string
	logger *slog.Logger
}

// DirFor returns "<input stem>_debug" inside outputDir ("" is the working
// directory).
func DirFor(outputDir, inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if outputDir == "" {
		outputDir = "."
	}
	return filepath.Join(outputDir, stem+"_debug")
}

// NewFileSink returns a sink writing under dir.
func NewFileSink(dir string, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{Dir: dir, logger: logger}
}

// Text writes the combined text and one file per page.
func (s *FileSink) Text(_ context.Context, doc *document.Document) error {
	if err := s.write(CombinedTextFile, []byte(doc.Text)); err != nil {
		return err
	}
	for i, page := range doc.Pages {
		name := filepath.Join(PagesDir, fmt.Sprintf("page_%03d.txt", i+1))
		if err := s.write(name, []byte(page)); err != nil {
			return err
		}
	}
	s.logger.Debug("debug.text.ok", "dir", s.Dir, "pages", len(doc.Pages))
	return nil
}

type itemsDump struct {
	Tier  string           `json:"tier"`
	Items []items.LineItem `json:"items"`
}

// Items writes the parsed items and the tier that produced them.
func (s *FileSink) Items(_ context.Context, res items.Result) error {
	found := res.Items
	if found == nil {
		found = []items.LineItem{}
	}
	return s.writeJSON(ItemsFile, itemsDump{Tier: string(res.Tier), Items: found})
}

// Rows writes the assembled rows keyed by column name.
func (s *FileSink) Rows(_ context.Context, table assemble.Table) error {
	return s.writeJSON(RowsFile, struct {
		Columns []string            `json:"columns"`
		Rows    []map[string]string `json:"rows"`
	}{table.Columns, table.Records()})
}

func (s *FileSink) writeJSON(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("debug %s: marshal: %w", name, err)
	}
	return s.write(name, b)
}

func (s *FileSink) write(name string, data []byte) error {
	path := filepath.Join(s.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("debug mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("debug write %s: %w", name, err)
	}
	return nil
}
