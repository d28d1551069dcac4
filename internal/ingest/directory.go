package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/po-extractor/internal/common"
)

// ScanOptions filters a directory scan.
type ScanOptions struct {
	IncludeExts []string // lowercased sans '.'; empty -> every supported format
	SkipHidden  bool
	Recursive   bool
}

// ScanDirectory walks root, filters by extension, skips hidden entries if
// requested and hashes each matching file. Files that cannot be read are
// returned with Err set. Results are sorted by relative path.
func ScanDirectory(ctx context.Context, root string, opts ScanOptions, logger *slog.Logger) ([]File, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.InputError("directory is required", common.ErrInvalidInput)
	}

	exts := map[string]struct{}{}
	for _, e := range opts.IncludeExts {
		if e = normalizeExt(e); e != "" {
			exts[e] = struct{}{}
		}
	}
	match := func(ext string) bool {
		if len(exts) == 0 {
			return AllowedExt(ext)
		}
		_, ok := exts[ext]
		return ok
	}

	var files []File
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failed++
			files = append(files, File{Path: path, Err: walkErr.Error()})
			return nil // continue walking
		}
		if path != root && opts.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++

		ext := normalizeExt(filepath.Ext(path))
		if !match(ext) {
			return nil
		}
		stats.Matched++

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		f := File{Path: path, Rel: rel, Ext: ext}
		sum, size, err := HashFile(path)
		if err != nil {
			logger.Warn("ingest.hash.failed", "path", path, "error", err)
			f.Err = err.Error()
			stats.Failed++
		} else {
			f.SHA256, f.Size = sum, size
			stats.Hashed++
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return files, stats, common.InputError(fmt.Sprintf("walk %s", root), err)
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	logger.Info("ingest.scan.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"hashed", stats.Hashed,
		"failed", stats.Failed,
	)
	return files, stats, nil
}
