package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/common"
)

// PDF text engines.
const (
	EngineAuto      = "auto"      // native reader, pdftotext when native text is poor
	EngineNative    = "native"    // pure-Go reader only
	EnginePdftotext = "pdftotext" // poppler only
)

type Config struct {
	Pdftotext     string  // binary name or absolute path; if empty -> "pdftotext"
	Engine        string  // EngineAuto | EngineNative | EnginePdftotext
	MaxPages      int     // 0 = no limit
	MinTableCells int     // rows with fewer cells are not table rows; default 3
	CellGap       float64 // horizontal gap (points) that starts a new cell; default 12
	SkipValidate  bool    // skip pdfcpu structural validation
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Engine == "" {
		cfg.Engine = EngineAuto
	}
	if cfg.MinTableCells <= 0 {
		cfg.MinTableCells = 3
	}
	if cfg.CellGap <= 0 {
		cfg.CellGap = 12
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the external command runner (tests).
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract reads path and returns its Document. Missing, unreadable or
// unsupported files are input errors.
func (e *Extractor) Extract(ctx context.Context, path string) (*Document, error) {
	start := time.Now()
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.InputError(fmt.Sprintf("file not found: %s", path), common.ErrNotFound)
		}
		return nil, common.InputError(fmt.Sprintf("cannot stat %s", path), err)
	}
	if info.IsDir() {
		return nil, common.InputError(fmt.Sprintf("%s is a directory", path), common.ErrInvalidInput)
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.FormatForExt(ext)
	e.logger.Debug("document.extract.start", "path", path, "ext", ext, "format", format)

	var doc *Document
	switch format {
	case constants.FormatPDF:
		doc, err = e.extractPDF(ctx, path)
	case constants.FormatTXT:
		doc, err = readText(path)
	case constants.FormatRTF:
		doc, err = readRTF(path)
	case constants.FormatHTML:
		doc, err = readHTML(path)
	case constants.FormatDOCX:
		doc, err = readDOCX(path)
	default:
		e.logger.Error("document.extract.unsupported", "path", path, "extension", ext)
		return nil, common.InputError(fmt.Sprintf("unsupported extension %q", ext), common.ErrUnsupportedFormat)
	}
	if err != nil {
		e.logger.Error("document.extract.failed", "path", path, "format", format, "error", err)
		if common.ErrorCode(err) != "" {
			return nil, err
		}
		return nil, common.InputError(fmt.Sprintf("cannot read %s", path), err)
	}

	e.logger.Info("document.extract.ok",
		"path", path,
		"format", doc.Format,
		"method", doc.Method,
		"pages", doc.PageCount,
		"chars", len(doc.Text),
		"quality", doc.Quality,
		"warnings", len(doc.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}
