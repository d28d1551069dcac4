package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/common"
)

// Run is one row of extraction_runs.
type Run struct {
	ID         uuid.UUID
	FilePath   string
	FileSHA256 string
	Vendor     string
	Tier       constants.Tier
	Rows       int
	OutputPath string
	Status     constants.RunStatus
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RunRepository is the behaviour batch processing depends on.
type RunRepository interface {
	Start(ctx context.Context, filePath, sha, vendor string) (uuid.UUID, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, vendor string, tier constants.Tier, rows int, output string) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	Record(ctx context.Context, run Run) error
	LastSuccess(ctx context.Context, sha string) (*Run, error)
}

var _ RunRepository = (*Ledger)(nil)

// Start inserts a RUNNING row and returns its id.
func (l *Ledger) Start(ctx context.Context, filePath, sha, vendor string) (uuid.UUID, error) {
	id := uuid.New()
	err := l.insert(ctx, Run{
		ID:         id,
		FilePath:   filePath,
		FileSHA256: sha,
		Vendor:     vendor,
		Status:     constants.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	})
	if err != nil {
		l.logger.Error("ledger.start.failed", "file", filePath, "err", err)
		return uuid.Nil, err
	}
	l.logger.Debug("ledger.start.ok", "run_id", id, "file", filePath)
	return id, nil
}

// FinishSuccess marks a run OK.
func (l *Ledger) FinishSuccess(ctx context.Context, id uuid.UUID, vendor string, tier constants.Tier, rows int, output string) error {
	q := l.rebind(`UPDATE extraction_runs SET status = ?, vendor = ?, tier = ?, rows = ?, output_path = ?, finished_at = ? WHERE id = ?`)
	return l.update(ctx, id, q, string(constants.RunStatusOK), vendor, string(tier), rows, output, time.Now().UTC(), id.String())
}

// FinishFailure marks a run FAILED with message.
func (l *Ledger) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	q := l.rebind(`UPDATE extraction_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`)
	if err := l.update(ctx, id, q, string(constants.RunStatusFailed), message, time.Now().UTC(), id.String()); err != nil {
		return err
	}
	l.logger.Warn("ledger.run.failed", "run_id", id, "error", message)
	return nil
}

// Record inserts a finished run in one statement, e.g. a SKIPPED file.
func (l *Ledger) Record(ctx context.Context, run Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.FinishedAt == nil {
		run.FinishedAt = &now
	}
	return l.insert(ctx, run)
}

// LastSuccess returns the most recent OK run for a content hash, or
// common.ErrNotFound.
func (l *Ledger) LastSuccess(ctx context.Context, sha string) (*Run, error) {
	q := l.rebind(`SELECT id, file_path, file_sha256, vendor, tier, rows, output_path, status, error, started_at, finished_at
		FROM extraction_runs WHERE file_sha256 = ? AND status = ? ORDER BY started_at DESC LIMIT 1`)
	var (
		r        Run
		id       string
		tier     string
		status   string
		finished sql.NullTime
	)
	err := l.db.QueryRowContext(ctx, q, sha, string(constants.RunStatusOK)).Scan(
		&id, &r.FilePath, &r.FileSHA256, &r.Vendor, &tier, &r.Rows, &r.OutputPath, &status, &r.Error, &r.StartedAt, &finished,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeLedger, "last success", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, common.NewAppError(common.CodeLedger, "run id", err)
	}
	r.Tier = constants.Tier(tier)
	r.Status = constants.RunStatus(status)
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

func (l *Ledger) insert(ctx context.Context, r Run) error {
	q := l.rebind(`INSERT INTO extraction_runs
		(id, file_path, file_sha256, vendor, tier, rows, output_path, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	var finished any
	if r.FinishedAt != nil {
		finished = r.FinishedAt.UTC()
	}
	_, err := l.db.ExecContext(ctx, q,
		r.ID.String(), r.FilePath, r.FileSHA256, r.Vendor, string(r.Tier), r.Rows, r.OutputPath,
		string(r.Status), r.Error, r.StartedAt.UTC(), finished,
	)
	if err != nil {
		return common.NewAppError(common.CodeLedger, "insert run", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	return nil
}

func (l *Ledger) update(ctx context.Context, id uuid.UUID, q string, args ...any) error {
	res, err := l.db.ExecContext(ctx, q, args...)
	if err != nil {
		return common.NewAppError(common.CodeLedger, "update run", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError(common.CodeLedger, fmt.Sprintf("run %s", id), common.ErrNotFound)
	}
	return nil
}
