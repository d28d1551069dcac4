package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/po-extractor/internal/common"
	"github.com/joseph-ayodele/po-extractor/internal/document"
	"github.com/joseph-ayodele/po-extractor/internal/export"
	"github.com/joseph-ayodele/po-extractor/internal/pipeline"
	"github.com/joseph-ayodele/po-extractor/internal/vendor"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type options struct {
	profileFile string
	engine      string
	debug       bool
}

func main() {
	cfg := common.LoadConfig()

	var (
		pdf       = flag.String("pdf", "", "input PO file: pdf, txt, rtf, html or docx (required)")
		out       = flag.String("out", "", "output path (default: vendor naming convention next to the input)")
		outDir    = flag.String("out-dir", cfg.Output.Dir, "directory for default-named outputs")
		dbg       = flag.Bool("debug", cfg.Output.Debug, "dump raw text, parsed items and rows to <stem>_debug/ beside the output")
		noIncr    = flag.Bool("no-increment-dates", !cfg.Extract.IncrementDates, "give every row the header base date instead of base + row index")
		vendorArg = flag.String("vendor", cfg.Extract.Vendor, "vendor profile name, or auto to detect")
		profile   = flag.String("profile", cfg.Extract.ProfileFile, "JSON vendor profile file to register")
		formats   = flag.String("formats", "", "comma separated output formats: xlsx,csv,json")
		engine    = flag.String("engine", document.EngineAuto, "pdf text engine: auto, native or pdftotext")
		logLevel  = flag.String("log-level", cfg.Log.Level, "debug, info, warn or error")
	)
	flag.Parse()

	if *pdf == "" {
		printError("Error: --pdf is required\n")
		flag.Usage()
		os.Exit(2)
	}
	if *formats != "" {
		cfg.Output.Formats = common.SplitList(*formats)
	}
	cfg.Extract.Vendor = *vendorArg
	cfg.Log.Level = *logLevel

	logger := common.NewLogger(os.Stderr, cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := common.WithTimeout(ctx, cfg.Extract.Timeout)
	defer cancel()

	req := pipeline.Request{
		Path:             *pdf,
		Out:              *out,
		OutDir:           *outDir,
		Vendor:           cfg.Extract.Vendor,
		NoIncrementDates: *noIncr,
	}
	res, err := run(ctx, cfg, logger, req, options{profileFile: *profile, engine: *engine, debug: *dbg})
	if err != nil {
		logger.Error("extraction failed", "path", *pdf, "code", common.ErrorCode(err), "error", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
	fmt.Printf("%s (%d rows, vendor %s, %s)\n", res.Output(), res.Rows(), res.Vendor, res.Tier)
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger, req pipeline.Request, opts options) (*pipeline.Result, error) {
	registry := vendor.DefaultRegistry(logger)
	if opts.profileFile != "" {
		p, err := vendor.LoadFile(opts.profileFile)
		if err != nil {
			return nil, err
		}
		if err := registry.Add(p); err != nil {
			return nil, err
		}
		if req.Vendor == pipeline.VendorAuto {
			req.Vendor = p.Name
		}
		logger.Info("profile loaded", "file", opts.profileFile, "vendor", p.Name)
	}

	writer, err := export.NewService(cfg.Output.Formats, logger)
	if err != nil {
		return nil, err
	}
	extractor := document.NewExtractor(document.Config{
		Pdftotext: cfg.Extract.PdftotextPath,
		Engine:    opts.engine,
	}, logger)
	req.DumpDebug = opts.debug

	return pipeline.NewPipeline(extractor, registry, writer, req.OutDir, logger).Run(ctx, req)
}
