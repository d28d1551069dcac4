// Package batch extracts every PO document in a directory with a bounded
// worker pool, skipping content the run ledger has already seen.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/common"
	"github.com/joseph-ayodele/po-extractor/internal/export"
	"github.com/joseph-ayodele/po-extractor/internal/ingest"
	"github.com/joseph-ayodele/po-extractor/internal/ledger"
	"github.com/joseph-ayodele/po-extractor/internal/pipeline"
)

// Runner executes a pipeline over many files.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

var _ Runner = (*pipeline.Pipeline)(nil)

// Options configures one batch.
type Options struct {
	Dir              string
	OutDir           string // "" -> next to each input
	Vendor           string
	Workers          int
	Force            bool // re-extract files recorded as succeeded
	Recursive        bool
	IncludeExts      []string
	NoIncrementDates bool
	Debug            bool
	Summary          string // summary CSV path; "" -> none
}

// Report is the outcome of a batch, one summary row per input, in scan order.
type Report struct {
	Rows      []export.SummaryRow
	Succeeded int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// Processor fans files out to workers. Ledger may be nil.
type Processor struct {
	runner Runner
	ledger ledger.RunRepository
	logger *slog.Logger
}

func NewProcessor(runner Runner, runs ledger.RunRepository, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{runner: runner, ledger: runs, logger: logger}
}

// Process scans opts.Dir and extracts each file. A failing file is recorded
// in the report and does not stop the others; only scan, summary and
// context errors are returned.
func (p *Processor) Process(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	files, _, err := ingest.ScanDirectory(ctx, opts.Dir, ingest.ScanOptions{
		IncludeExts: opts.IncludeExts,
		SkipHidden:  true,
		Recursive:   opts.Recursive,
	}, p.logger)
	if err != nil {
		return nil, err
	}
	outDirs := outputDirs(files, opts)

	rows := make([]export.SummaryRow, len(files))
	var succeeded, skipped, failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			row := p.processFile(gctx, f, outDirs[i], opts)
			rows[i] = row
			switch constants.RunStatus(row.Status) {
			case constants.RunStatusOK:
				succeeded.Add(1)
			case constants.RunStatusSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			// only cancellation aborts the batch
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{
		Rows:      rows,
		Succeeded: int(succeeded.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
		Elapsed:   time.Since(start),
	}
	if opts.Summary != "" {
		if err := export.WriteSummary(opts.Summary, rows); err != nil {
			return rep, common.OutputError("batch summary", err)
		}
	}
	p.logger.Info("batch.run.ok",
		"dir", opts.Dir,
		"files", len(files),
		"succeeded", rep.Succeeded,
		"skipped", rep.Skipped,
		"failed", rep.Failed,
		"elapsed_ms", rep.Elapsed.Milliseconds(),
	)
	return rep, nil
}

func (p *Processor) processFile(ctx context.Context, f ingest.File, outDir string, opts Options) export.SummaryRow {
	start := time.Now()
	row := export.SummaryRow{File: f.Path, SHA256: f.SHA256}
	finish := func(status constants.RunStatus, err error) export.SummaryRow {
		row.Status = string(status)
		if err != nil {
			row.Error = err.Error()
		}
		row.ElapsedMS = time.Since(start).Milliseconds()
		return row
	}
	if f.Err != "" {
		return finish(constants.RunStatusFailed, errors.New(f.Err))
	}

	if p.ledger != nil && !opts.Force {
		prev, err := p.ledger.LastSuccess(ctx, f.SHA256)
		switch {
		case err == nil:
			row.Vendor, row.Tier, row.Rows, row.Output = prev.Vendor, string(prev.Tier), prev.Rows, prev.OutputPath
			if rerr := p.ledger.Record(ctx, ledger.Run{
				FilePath:   f.Path,
				FileSHA256: f.SHA256,
				Vendor:     prev.Vendor,
				Tier:       prev.Tier,
				Rows:       prev.Rows,
				OutputPath: prev.OutputPath,
				Status:     constants.RunStatusSkipped,
			}); rerr != nil {
				p.logger.Warn("batch.ledger.record_failed", "path", f.Path, "error", rerr)
			}
			p.logger.Info("batch.file.skipped", "path", f.Path, "previous_run", prev.ID)
			return finish(constants.RunStatusSkipped, nil)
		case !errors.Is(err, common.ErrNotFound):
			p.logger.Warn("batch.ledger.lookup_failed", "path", f.Path, "error", err)
		}
	}

	runID := uuid.Nil
	if p.ledger != nil {
		id, err := p.ledger.Start(ctx, f.Path, f.SHA256, opts.Vendor)
		if err != nil {
			p.logger.Warn("batch.ledger.start_failed", "path", f.Path, "error", err)
		} else {
			runID = id
		}
	}
	if runID != uuid.Nil {
		ctx = common.WithRunID(ctx, runID.String())
	}

	req := pipeline.Request{
		Path:             f.Path,
		OutDir:           outDir,
		Vendor:           opts.Vendor,
		NoIncrementDates: opts.NoIncrementDates,
		DumpDebug:        opts.Debug,
	}

	res, err := p.runner.Run(ctx, req)
	if err != nil {
		p.logger.Error("batch.file.failed", "path", f.Path, "error", err)
		if runID != uuid.Nil {
			if lerr := p.ledger.FinishFailure(ctx, runID, err.Error()); lerr != nil {
				p.logger.Warn("batch.ledger.finish_failed", "path", f.Path, "error", lerr)
			}
		}
		return finish(constants.RunStatusFailed, err)
	}

	row.Vendor, row.Tier, row.Rows, row.Output = res.Vendor, string(res.Tier), res.Rows(), res.Output()
	if runID != uuid.Nil {
		if lerr := p.ledger.FinishSuccess(ctx, runID, res.Vendor, res.Tier, res.Rows(), res.Output()); lerr != nil {
			p.logger.Warn("batch.ledger.finish_failed", "path", f.Path, "error", lerr)
		}
	}
	return finish(constants.RunStatusOK, nil)
}

// outputDirs gives every file its own output directory: the input's relative
// directory under OutDir, plus an extension subdirectory when two inputs in
// one directory share a stem (po.pdf and po.txt).
func outputDirs(files []ingest.File, opts Options) []string {
	stems := map[string]int{}
	key := func(f ingest.File) string {
		return strings.ToLower(strings.TrimSuffix(f.Rel, filepath.Ext(f.Rel)))
	}
	for _, f := range files {
		stems[key(f)]++
	}
	out := make([]string, len(files))
	for i, f := range files {
		var dir string
		if opts.OutDir != "" {
			dir = filepath.Join(opts.OutDir, filepath.Dir(f.Rel))
		} else {
			dir = filepath.Dir(f.Path)
		}
		if stems[key(f)] > 1 {
			dir = filepath.Join(dir, f.Ext)
		}
		out[i] = dir
	}
	return out
}

// String summarises the report for the CLI.
func (r *Report) String() string {
	return fmt.Sprintf("%d files: %d ok, %d skipped, %d failed", len(r.Rows), r.Succeeded, r.Skipped, r.Failed)
}
