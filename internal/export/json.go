package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joseph-ayodele/po-extractor/constants"
)

// JSONSink writes the rows with their source, vendor and tier.
type JSONSink struct{}

type jsonDoc struct {
	SourceFile string              `json:"source_file"`
	Vendor     string              `json:"vendor"`
	Tier       constants.Tier      `json:"tier"`
	Columns    []string            `json:"columns"`
	RowCount   int                 `json:"row_count"`
	Rows       []map[string]string `json:"rows"`
}

func (JSONSink) Format() string { return constants.OutputJSON }

func (JSONSink) Write(_ context.Context, out Output, path string) error {
	doc := jsonDoc{
		SourceFile: out.Source,
		Vendor:     out.Vendor,
		Tier:       out.Tier,
		Columns:    out.Table.Columns,
		RowCount:   len(out.Table.Rows),
		Rows:       out.Table.Records(),
	}
	return writeAtomic(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
		return nil
	})
}
