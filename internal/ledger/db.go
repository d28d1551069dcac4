// Package ledger records extraction runs so batch mode can skip files whose
// content was already extracted.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/po-extractor/internal/common"
)

// Dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

type Config struct {
	DSN             string // file path, sqlite://path, or postgres:// URL
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// Ledger is a run store over database/sql.
type Ledger struct {
	db      *sql.DB
	pool    *pgxpool.Pool
	dialect string
	logger  *slog.Logger
}

// ParseDSN returns the dialect and driver data source for dsn.
func ParseDSN(dsn string) (dialect, source string, err error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("%w: empty ledger DSN", common.ErrInvalidInput)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return DialectSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.Contains(dsn, "://"):
		return "", "", fmt.Errorf("%w: unsupported ledger DSN scheme in %q", common.ErrInvalidInput, dsn)
	}
	return DialectSQLite, dsn, nil
}

// Open connects to the ledger database and creates its table.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dialect, source, err := ParseDSN(cfg.DSN)
	if err != nil {
		return nil, common.NewAppError(common.CodeLedger, "parse DSN", err)
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	l := &Ledger{dialect: dialect, logger: logger}
	switch dialect {
	case DialectPostgres:
		pc, err := pgxpool.ParseConfig(source)
		if err != nil {
			return nil, common.NewAppError(common.CodeLedger, "parse postgres DSN", err)
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "po-extractor"

		dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		l.pool, err = pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			return nil, common.NewAppError(common.CodeLedger, "connect postgres", err)
		}
		l.db = stdlib.OpenDBFromPool(l.pool)
	default:
		l.db, err = sql.Open("sqlite", source)
		if err != nil {
			return nil, common.NewAppError(common.CodeLedger, "open sqlite", err)
		}
		// one writer; sqlite serialises anyway
		l.db.SetMaxOpenConns(1)
	}

	if err := l.HealthCheck(ctx, cfg.DialTimeout); err != nil {
		l.Close()
		return nil, common.NewAppError(common.CodeLedger, "ping", err)
	}
	if err := l.Migrate(ctx); err != nil {
		l.Close()
		return nil, err
	}
	logger.Info("ledger.open.ok", "dialect", dialect)
	return l, nil
}

// Dialect reports the backing database kind.
func (l *Ledger) Dialect() string { return l.dialect }

// HealthCheck pings the database.
func (l *Ledger) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return l.db.PingContext(ctx)
}

// Close releases the connections.
func (l *Ledger) Close() {
	if l.db != nil {
		if err := l.db.Close(); err != nil {
			l.logger.Error("ledger.close.failed", "err", err)
		}
	}
	if l.pool != nil {
		l.pool.Close()
	}
}

const createRuns = `CREATE TABLE IF NOT EXISTS extraction_runs (
	id          TEXT PRIMARY KEY,
	file_path   TEXT NOT NULL,
	file_sha256 TEXT NOT NULL,
	vendor      TEXT NOT NULL DEFAULT '',
	tier        TEXT NOT NULL DEFAULT '',
	rows        INTEGER NOT NULL DEFAULT 0,
	output_path TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
)`

const createRunsIndex = `CREATE INDEX IF NOT EXISTS extraction_runs_sha_idx ON extraction_runs (file_sha256, status)`

// Migrate creates the runs table and index when missing.
func (l *Ledger) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createRuns, createRunsIndex} {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return common.NewAppError(common.CodeLedger, "migrate", fmt.Errorf("%w: %v", common.ErrDatabase, err))
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (l *Ledger) rebind(q string) string {
	if l.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
