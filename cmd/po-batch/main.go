package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/po-extractor/internal/batch"
	"github.com/joseph-ayodele/po-extractor/internal/common"
	"github.com/joseph-ayodele/po-extractor/internal/document"
	"github.com/joseph-ayodele/po-extractor/internal/export"
	"github.com/joseph-ayodele/po-extractor/internal/ledger"
	"github.com/joseph-ayodele/po-extractor/internal/pipeline"
	"github.com/joseph-ayodele/po-extractor/internal/vendor"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := common.LoadConfig()

	var (
		dir       = flag.String("dir", "", "directory of PO files (required)")
		outDir    = flag.String("out-dir", cfg.Output.Dir, "output directory (default: next to each input)")
		vendorArg = flag.String("vendor", cfg.Extract.Vendor, "vendor profile name, or auto to detect per file")
		profile   = flag.String("profile", cfg.Extract.ProfileFile, "JSON vendor profile file to register")
		workers   = flag.Int("workers", cfg.Batch.Workers, "concurrent extractions")
		force     = flag.Bool("force", cfg.Batch.Force, "re-extract files the ledger has already seen")
		recursive = flag.Bool("recursive", false, "descend into subdirectories")
		exts      = flag.String("ext", "", "comma separated extensions to include (default: all supported)")
		ledgerDSN = flag.String("ledger", cfg.Ledger.DSN, "run ledger: sqlite file, sqlite:// or postgres:// DSN (empty disables)")
		summary   = flag.String("summary", cfg.Batch.Summary, "summary CSV path")
		formats   = flag.String("formats", "", "comma separated output formats: xlsx,csv,json")
		dbg       = flag.Bool("debug", cfg.Output.Debug, "dump intermediate artifacts per file")
		noIncr    = flag.Bool("no-increment-dates", !cfg.Extract.IncrementDates, "give every row the header base date")
		logLevel  = flag.String("log-level", cfg.Log.Level, "debug, info, warn or error")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		flag.Usage()
		return 2
	}
	if *formats != "" {
		cfg.Output.Formats = common.SplitList(*formats)
	}
	cfg.Extract.Vendor = *vendorArg
	cfg.Batch.Workers = *workers
	cfg.Log.Level = *logLevel

	logger := common.NewLogger(os.Stderr, cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := vendor.DefaultRegistry(logger)
	if *profile != "" {
		p, err := vendor.LoadFile(*profile)
		if err == nil {
			err = registry.Add(p)
		}
		if err != nil {
			logger.Error("failed to load profile", "file", *profile, "error", err)
			return 1
		}
		if cfg.Extract.Vendor == pipeline.VendorAuto {
			cfg.Extract.Vendor = p.Name
		}
	}

	writer, err := export.NewService(cfg.Output.Formats, logger)
	if err != nil {
		logger.Error("invalid output formats", "error", err)
		return 2
	}
	extractor := document.NewExtractor(document.Config{Pdftotext: cfg.Extract.PdftotextPath}, logger)
	p := pipeline.NewPipeline(extractor, registry, writer, *outDir, logger)

	var runs ledger.RunRepository
	if *ledgerDSN != "" {
		l, err := ledger.Open(ctx, ledger.Config{DSN: *ledgerDSN, DialTimeout: cfg.Ledger.DialTimeout}, logger)
		if err != nil {
			logger.Error("failed to open ledger", "error", err)
			return 1
		}
		defer l.Close()
		runs = l
	}

	rep, err := batch.NewProcessor(p, runs, logger).Process(ctx, batch.Options{
		Dir:              *dir,
		OutDir:           *outDir,
		Vendor:           cfg.Extract.Vendor,
		Workers:          cfg.Batch.Workers,
		Force:            *force,
		Recursive:        *recursive,
		IncludeExts:      common.SplitList(*exts),
		NoIncrementDates: *noIncr,
		Debug:            *dbg,
		Summary:          *summary,
	})
	if err != nil {
		logger.Error("batch failed", "dir", *dir, "code", common.ErrorCode(err), "error", err)
		return 1
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", len(rep.Rows))
	fmt.Printf("- Succeeded: %d\n", rep.Succeeded)
	fmt.Printf("- Skipped: %d\n", rep.Skipped)
	fmt.Printf("- Failures: %d\n", rep.Failed)
	if *summary != "" {
		fmt.Printf("- Summary: %s\n", *summary)
	}
	if rep.Failed > 0 {
		return 1
	}
	return 0
}
