package pipeline

import (
	"context"

	"github.com/joseph-ayodele/po-extractor/internal/document"
	"github.com/joseph-ayodele/po-extractor/internal/export"
)

// TextExtractor is stage 1: file -> document text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (*document.Document, error)
}

// Writer is the last stage: rows -> files. It returns the written paths.
type Writer interface {
	Write(ctx context.Context, out export.Output, primary string) ([]string, error)
}

var (
	_ TextExtractor = (*document.Extractor)(nil)
	_ Writer        = (*export.Service)(nil)
)
