// Package ingest discovers PO input files under a directory and fingerprints
// their content.
package ingest

// File is one discovered input.
type File struct {
	Path   string
	Rel    string // path relative to the scan root
	Ext    string // lowercased, without '.'
	Size   int64
	SHA256 string
	Err    string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Hashed  uint32
	Failed  uint32
}
