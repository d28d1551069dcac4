package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-extractor/internal/common"
)

func touch(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"), "b")
	touch(t, filepath.Join(root, "a.TXT"), "a")
	touch(t, filepath.Join(root, "notes.md"), "x")
	touch(t, filepath.Join(root, ".hidden.pdf"), "h")
	touch(t, filepath.Join(root, "sub", "c.docx"), "c")
	touch(t, filepath.Join(root, ".git", "d.pdf"), "d")

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{"flat", ScanOptions{SkipHidden: true}, []string{"a.TXT", "b.pdf"}},
		{"recursive", ScanOptions{SkipHidden: true, Recursive: true}, []string{"a.TXT", "b.pdf", filepath.Join("sub", "c.docx")}},
		{"pdf only", ScanOptions{IncludeExts: []string{".PDF"}, SkipHidden: true, Recursive: true}, []string{"b.pdf"}},
		{"hidden kept", ScanOptions{IncludeExts: []string{"pdf"}, Recursive: true}, []string{".git/d.pdf", ".hidden.pdf", "b.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, stats, err := ScanDirectory(context.Background(), root, tt.opts, nil)
			require.NoError(t, err)
			var got []string
			for _, f := range files {
				assert.Empty(t, f.Err)
				assert.Len(t, f.SHA256, 64)
				got = append(got, filepath.ToSlash(f.Rel))
			}
			want := make([]string, len(tt.want))
			for i, w := range tt.want {
				want[i] = filepath.ToSlash(w)
			}
			assert.Equal(t, want, got)
			assert.Equal(t, uint32(len(tt.want)), stats.Hashed)
		})
	}
}

func TestScanDirectory_Errors(t *testing.T) {
	_, _, err := ScanDirectory(context.Background(), " ", ScanOptions{}, nil)
	require.Error(t, err)
	assert.Equal(t, common.CodeInput, common.ErrorCode(err))

	_, _, err = ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), ScanOptions{}, nil)
	require.Error(t, err)
	assert.Equal(t, common.CodeInput, common.ErrorCode(err))
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.txt")
	touch(t, path, "abc")
	sum, size, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
	assert.Equal(t, int64(3), size)
}

func TestAllowedExtAndHidden(t *testing.T) {
	assert.True(t, AllowedExt(".PDF"))
	assert.True(t, AllowedExt("htm"))
	assert.False(t, AllowedExt("png"))
	assert.True(t, IsHidden("/x/.env"))
	assert.False(t, IsHidden("/x/po.pdf"))
}
