// Package pipeline runs one PO document through acquisition, header and item
// parsing, row assembly and the output sinks.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/assemble"
	"github.com/joseph-ayodele/po-extractor/internal/common"
	"github.com/joseph-ayodele/po-extractor/internal/debug"
	"github.com/joseph-ayodele/po-extractor/internal/export"
	"github.com/joseph-ayodele/po-extractor/internal/header"
	"github.com/joseph-ayodele/po-extractor/internal/items"
	"github.com/joseph-ayodele/po-extractor/internal/normalize"
	"github.com/joseph-ayodele/po-extractor/internal/vendor"
)

// VendorAuto asks the pipeline to detect the vendor from the document text.
const VendorAuto = "auto"

// Request is one extraction run.
type Request struct {
	Path             string
	Out              string // "" -> profile naming convention in OutDir
	OutDir           string // "" -> Pipeline.OutDir, else the input's directory
	Vendor           string // profile name or VendorAuto
	NoIncrementDates bool
	DumpDebug        bool       // write artifacts to <stem>_debug beside the output
	Debug            debug.Sink // overrides DumpDebug; nil -> debug.Noop
}

// Result summarises a finished run.
type Result struct {
	Path         string
	Vendor       string
	DetectMethod string
	Locale       normalize.Locale
	Tier         constants.Tier
	Header       header.Fields
	Items        []items.LineItem
	Table        assemble.Table
	Outputs      []string
	Elapsed      time.Duration
}

// Rows is the number of output rows written.
func (r *Result) Rows() int { return len(r.Table.Rows) }

// Output is the primary output path.
func (r *Result) Output() string {
	if len(r.Outputs) == 0 {
		return ""
	}
	return r.Outputs[0]
}

// Pipeline holds the collaborators shared by runs. Runs share no mutable
// state, so one Pipeline may serve concurrent Run calls.
type Pipeline struct {
	Source   TextExtractor
	Registry *vendor.Registry
	Writer   Writer
	OutDir   string
	Logger   *slog.Logger
}

func NewPipeline(source TextExtractor, registry *vendor.Registry, writer Writer, outDir string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Source: source, Registry: registry, Writer: writer, OutDir: outDir, Logger: logger}
}

// Run extracts req.Path and writes its rows. Input and output failures are
// returned; everything else degrades to empty fields.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	logger := common.LoggerFromContext(common.WithLogger(ctx, p.Logger)).With("path", req.Path)
	outDir := p.outputDir(req)
	sink := req.Debug
	switch {
	case sink != nil:
	case req.DumpDebug:
		sink = debug.NewFileSink(debug.DirFor(outDir, req.Path), logger)
	default:
		sink = debug.Noop{}
	}

	doc, err := p.Source.Extract(ctx, req.Path)
	if err != nil {
		logger.Error("pipeline.acquire.failed", "error", err)
		return nil, err
	}
	if err := sink.Text(ctx, doc); err != nil {
		logger.Warn("pipeline.debug.failed", "stage", "text", "error", err)
	}

	profile, method, err := p.selectProfile(doc.Text, req.Vendor)
	if err != nil {
		return nil, err
	}
	loc := profile.ResolveLocale(doc.Text)
	strategy, err := profile.Build(loc, logger)
	if err != nil {
		return nil, err
	}

	hdr := strategy.Header.Parse(doc.Text)
	parsed := strategy.Items.Parse(doc.Text)
	if err := sink.Items(ctx, parsed); err != nil {
		logger.Warn("pipeline.debug.failed", "stage", "items", "error", err)
	}

	table := strategy.Assembler.WithIncrement(!req.NoIncrementDates).Assemble(doc.Text, hdr, parsed.Items)
	if err := sink.Rows(ctx, table); err != nil {
		logger.Warn("pipeline.debug.failed", "stage", "rows", "error", err)
	}

	out := req.Out
	if out == "" {
		out = DefaultOutput(profile, req.Path, outDir)
	}
	outputs, err := p.Writer.Write(ctx, export.Output{
		Source: req.Path,
		Vendor: profile.Name,
		Tier:   parsed.Tier,
		Table:  table,
	}, out)
	if err != nil {
		logger.Error("pipeline.write.failed", "out", out, "error", err)
		return nil, err
	}

	res := &Result{
		Path:         req.Path,
		Vendor:       profile.Name,
		DetectMethod: method,
		Locale:       loc,
		Tier:         parsed.Tier,
		Header:       hdr,
		Items:        parsed.Items,
		Table:        table,
		Outputs:      outputs,
		Elapsed:      time.Since(start),
	}
	logger.Info("pipeline.run.ok",
		"vendor", res.Vendor,
		"detect", method,
		"locale", loc.String(),
		"tier", res.Tier,
		"items", len(res.Items),
		"rows", res.Rows(),
		"out", res.Output(),
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) selectProfile(text, name string) (*vendor.Profile, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, VendorAuto) {
		prof, method := p.Registry.Detect(text)
		return prof, method, nil
	}
	prof, err := p.Registry.Get(name)
	if err != nil {
		return nil, "", err
	}
	return prof, "flag", nil
}

// outputDir is where req's outputs and debug artifacts are written.
func (p *Pipeline) outputDir(req Request) string {
	switch {
	case req.Out != "":
		return filepath.Dir(req.Out)
	case req.OutDir != "":
		return req.OutDir
	case p.OutDir != "":
		return p.OutDir
	}
	return filepath.Dir(req.Path)
}

// DefaultOutput names the primary output for inputPath: the profile's naming
// convention, placed in dir or else next to the input.
func DefaultOutput(profile *vendor.Profile, inputPath, dir string) string {
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, profile.OutputName(inputPath, "."+constants.OutputXLSX))
}

// String is used in log lines and summaries.
func (r *Result) String() string {
	return fmt.Sprintf("%s -> %s (%d rows, %s, %s)", r.Path, r.Output(), r.Rows(), r.Vendor, r.Tier)
}
