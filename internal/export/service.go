// Package export writes assembled PO rows to XLSX, CSV and JSON files.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/assemble"
	"github.com/joseph-ayodele/po-extractor/internal/common"
)

// Output is everything a sink needs to persist one document's rows.
type Output struct {
	Source string
	Vendor string
	Tier   constants.Tier
	Table  assemble.Table
}

// Sink persists an Output to path.
type Sink interface {
	Format() string
	Write(ctx context.Context, out Output, path string) error
}

// Service fans one Output out to the configured sinks.
type Service struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewService builds sinks for formats (xlsx, csv, json). Empty formats means xlsx.
func NewService(formats []string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(formats) == 0 {
		formats = []string{constants.OutputXLSX}
	}
	s := &Service{logger: logger}
	seen := map[string]bool{}
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if seen[f] {
			continue
		}
		seen[f] = true
		switch f {
		case constants.OutputXLSX:
			s.sinks = append(s.sinks, XLSXSink{})
		case constants.OutputCSV:
			s.sinks = append(s.sinks, CSVSink{})
		case constants.OutputJSON:
			s.sinks = append(s.sinks, JSONSink{})
		default:
			return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown output format %q", f), common.ErrInvalidInput)
		}
	}
	return s, nil
}

// Formats lists the sink formats in write order.
func (s *Service) Formats() []string {
	out := make([]string, len(s.sinks))
	for i, k := range s.sinks {
		out[i] = k.Format()
	}
	return out
}

// PathFor returns the output path of format for the primary path: the same
// location with the format's extension.
func PathFor(primary, format string) string {
	return strings.TrimSuffix(primary, filepath.Ext(primary)) + "." + format
}

// Write persists out with every sink and returns the written paths. A sink
// whose format matches primary's extension writes to primary; the others
// write next to it.
func (s *Service) Write(ctx context.Context, out Output, primary string) ([]string, error) {
	var paths []string
	for _, sink := range s.sinks {
		path := primary
		if !strings.EqualFold(filepath.Ext(primary), "."+sink.Format()) {
			path = PathFor(primary, sink.Format())
		}
		start := time.Now()
		if err := sink.Write(ctx, out, path); err != nil {
			return paths, common.OutputError(fmt.Sprintf("write %s", path), err)
		}
		s.logger.Info("export."+sink.Format()+".ok",
			"path", path,
			"rows", len(out.Table.Rows),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		paths = append(paths, path)
	}
	return paths, nil
}

// writeAtomic creates path's directory, writes through fill into a temp
// file beside it and renames it into place.
func writeAtomic(path string, fill func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
