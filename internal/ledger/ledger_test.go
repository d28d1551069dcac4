package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/common"
)

func openTemp(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "runs.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		dialect string
		source  string
		wantErr bool
	}{
		{"runs.db", DialectSQLite, "runs.db", false},
		{"sqlite:///tmp/runs.db", DialectSQLite, "/tmp/runs.db", false},
		{"postgres://u:p@localhost/db", DialectPostgres, "postgres://u:p@localhost/db", false},
		{"postgresql://localhost/db", DialectPostgres, "postgresql://localhost/db", false},
		{"mysql://localhost/db", "", "", true},
		{"  ", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			d, s, err := ParseDSN(tt.dsn)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, d)
			assert.Equal(t, tt.source, s)
		})
	}
}

func TestLedger_StartFinishLastSuccess(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()
	assert.Equal(t, DialectSQLite, l.Dialect())

	_, err := l.LastSuccess(ctx, "abc")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	id, err := l.Start(ctx, "/in/a.pdf", "abc", "")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	_, err = l.LastSuccess(ctx, "abc")
	assert.True(t, errors.Is(err, common.ErrNotFound), "running rows are not successes")

	require.NoError(t, l.FinishSuccess(ctx, id, "ashi", constants.TierStrict, 3, "/out/a.xlsx"))

	run, err := l.LastSuccess(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "/in/a.pdf", run.FilePath)
	assert.Equal(t, "ashi", run.Vendor)
	assert.Equal(t, constants.TierStrict, run.Tier)
	assert.Equal(t, 3, run.Rows)
	assert.Equal(t, "/out/a.xlsx", run.OutputPath)
	assert.Equal(t, constants.RunStatusOK, run.Status)
	require.NotNil(t, run.FinishedAt)
	assert.WithinDuration(t, time.Now(), *run.FinishedAt, time.Minute)
}

func TestLedger_FailureIsNotSuccess(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()

	id, err := l.Start(ctx, "/in/b.pdf", "def", "va")
	require.NoError(t, err)
	require.NoError(t, l.FinishFailure(ctx, id, "boom"))

	_, err = l.LastSuccess(ctx, "def")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = l.FinishFailure(ctx, uuid.New(), "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.Equal(t, common.CodeLedger, common.ErrorCode(err))
}

func TestLedger_RecordSkipped(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, Run{FilePath: "/in/c.pdf", FileSHA256: "ghi", Status: constants.RunStatusSkipped}))
	_, err := l.LastSuccess(ctx, "ghi")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	require.NoError(t, l.Record(ctx, Run{FilePath: "/in/c.pdf", FileSHA256: "ghi", Status: constants.RunStatusOK, Rows: 1}))
	run, err := l.LastSuccess(ctx, "ghi")
	require.NoError(t, err)
	assert.Equal(t, 1, run.Rows)
}

func TestLedger_MigrateIsIdempotent(t *testing.T) {
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	l, err := Open(ctx, Config{DSN: dsn}, nil)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, Run{FilePath: "x", FileSHA256: "sha", Status: constants.RunStatusOK}))
	l.Close()

	l, err = Open(ctx, Config{DSN: dsn}, nil)
	require.NoError(t, err)
	defer l.Close()
	_, err = l.LastSuccess(ctx, "sha")
	assert.NoError(t, err)
}

func TestRebind(t *testing.T) {
	pg := &Ledger{dialect: DialectPostgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))
	lite := &Ledger{dialect: DialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
