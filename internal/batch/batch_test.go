package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/assemble"
	"github.com/joseph-ayodele/po-extractor/internal/common"
	"github.com/joseph-ayodele/po-extractor/internal/debug"
	"github.com/joseph-ayodele/po-extractor/internal/document"
	"github.com/joseph-ayodele/po-extractor/internal/export"
	"github.com/joseph-ayodele/po-extractor/internal/ingest"
	"github.com/joseph-ayodele/po-extractor/internal/ledger"
	"github.com/joseph-ayodele/po-extractor/internal/pipeline"
	"github.com/joseph-ayodele/po-extractor/internal/vendor"
)

const ashiDoc = `ASHI PO # IG100/7
PO DATE: January 5, 2024
  1  AB12345  DIAMOND RING 14K   2.00
IGR-1001 14K WG | W | 7
`

type fakeRunner struct {
	mu    sync.Mutex
	calls []pipeline.Request
	fail  string // base name that fails
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.fail != "" && filepath.Base(req.Path) == f.fail {
		return nil, common.InputError("unreadable", errors.New("broken xref"))
	}
	return &pipeline.Result{
		Path:    req.Path,
		Vendor:  vendor.Ashi,
		Tier:    constants.TierStrict,
		Table:   assemble.Table{Columns: []string{"A"}, Rows: []assemble.Row{{"1"}, {"2"}}},
		Outputs: []string{filepath.Join(req.OutDir, "out.xlsx")},
	}, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func seed(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, n := range names {
		body := ashiDoc + strings.Repeat("\n", i) // distinct hashes
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(body), 0o644))
	}
	return dir
}

func TestProcess_RealPipeline(t *testing.T) {
	dir := seed(t, "a.txt", "b.txt", "c.txt")
	out := t.TempDir()
	svc, err := export.NewService([]string{constants.OutputCSV}, nil)
	require.NoError(t, err)
	p := pipeline.NewPipeline(document.NewExtractor(document.Config{}, nil), vendor.DefaultRegistry(nil), svc, "", nil)

	summary := filepath.Join(out, "summary.csv")
	rep, err := NewProcessor(p, nil, nil).Process(context.Background(), Options{
		Dir:     dir,
		OutDir:  out,
		Workers: 2,
		Summary: summary,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Succeeded)
	assert.Equal(t, 0, rep.Failed)
	require.Len(t, rep.Rows, 3)
	for i, name := range []string{"a", "b", "c"} {
		row := rep.Rows[i]
		assert.Equal(t, string(constants.RunStatusOK), row.Status)
		assert.Equal(t, vendor.Ashi, row.Vendor)
		assert.Equal(t, 1, row.Rows)
		assert.Equal(t, filepath.Join(out, "Purchase_Orders_Extracted_"+name+".csv"), row.Output)
		assert.FileExists(t, row.Output)
	}

	b, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "file,sha256,vendor,tier,rows,status,output,error,elapsed_ms"))
	assert.Equal(t, "3 files: 3 ok, 0 skipped, 0 failed", rep.String())
}

func TestProcess_LedgerSkipsAndForce(t *testing.T) {
	dir := seed(t, "a.txt", "b.txt")
	l, err := ledger.Open(context.Background(), ledger.Config{DSN: filepath.Join(t.TempDir(), "runs.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(l.Close)

	runner := &fakeRunner{}
	proc := NewProcessor(runner, l, nil)
	opts := Options{Dir: dir, Workers: 4}

	rep, err := proc.Process(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 2, runner.count())

	rep, err = proc.Process(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Skipped)
	assert.Equal(t, 2, runner.count())
	assert.Equal(t, 2, rep.Rows[0].Rows)

	opts.Force = true
	rep, err = proc.Process(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 4, runner.count())
}

func TestProcess_FailureDoesNotStopBatch(t *testing.T) {
	dir := seed(t, "a.txt", "bad.txt", "c.txt")
	l, err := ledger.Open(context.Background(), ledger.Config{DSN: filepath.Join(t.TempDir(), "runs.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(l.Close)

	runner := &fakeRunner{fail: "bad.txt"}
	rep, err := NewProcessor(runner, l, nil).Process(context.Background(), Options{Dir: dir, Workers: 3, Debug: true})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 1, rep.Failed)

	bad := rep.Rows[1]
	assert.Equal(t, string(constants.RunStatusFailed), bad.Status)
	assert.Contains(t, bad.Error, "broken xref")

	_, err = l.LastSuccess(context.Background(), bad.SHA256)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	for _, c := range runner.calls {
		assert.True(t, c.DumpDebug)
	}
}

func TestProcess_DebugDirsFollowOutputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "po.txt"), []byte(ashiDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "po.html"), []byte("<html><body><p>HTML ORDER 77</p></body></html>"), 0o644))
	out := t.TempDir()
	svc, err := export.NewService([]string{constants.OutputCSV}, nil)
	require.NoError(t, err)
	p := pipeline.NewPipeline(document.NewExtractor(document.Config{}, nil), vendor.DefaultRegistry(nil), svc, "", nil)

	rep, err := NewProcessor(p, nil, nil).Process(context.Background(), Options{Dir: dir, OutDir: out, Workers: 2, Debug: true})
	require.NoError(t, err)
	require.Equal(t, 2, rep.Succeeded)

	for ext, want := range map[string]string{"txt": "ASHI PO", "html": "HTML ORDER 77"} {
		text, err := os.ReadFile(filepath.Join(out, ext, "po_debug", debug.CombinedTextFile))
		require.NoError(t, err, ext)
		assert.Contains(t, string(text), want)
	}
	assert.NoDirExists(t, filepath.Join(dir, "po_debug"))
}

func TestProcess_ScanError(t *testing.T) {
	_, err := NewProcessor(&fakeRunner{}, nil, nil).Process(context.Background(), Options{Dir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Equal(t, common.CodeInput, common.ErrorCode(err))
}

func TestOutputDirs(t *testing.T) {
	files := []ingest.File{
		{Path: "/in/po.pdf", Rel: "po.pdf", Ext: "pdf"},
		{Path: "/in/po.txt", Rel: "po.txt", Ext: "txt"},
		{Path: "/in/sub/x.pdf", Rel: filepath.Join("sub", "x.pdf"), Ext: "pdf"},
	}
	got := outputDirs(files, Options{OutDir: "/out"})
	assert.Equal(t, []string{
		filepath.Join("/out", "pdf"),
		filepath.Join("/out", "txt"),
		filepath.Join("/out", "sub"),
	}, got)

	got = outputDirs(files[2:], Options{})
	assert.Equal(t, []string{"/in/sub"}, got)
}
