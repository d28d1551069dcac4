package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// SummaryRow is one line of the batch summary CSV.
type SummaryRow struct {
	File      string `csv:"file"`
	SHA256    string `csv:"sha256"`
	Vendor    string `csv:"vendor"`
	Tier      string `csv:"tier"`
	Rows      int    `csv:"rows"`
	Status    string `csv:"status"`
	Output    string `csv:"output"`
	Error     string `csv:"error"`
	ElapsedMS int64  `csv:"elapsed_ms"`
}

// WriteSummary writes rows to path as CSV with a header line.
func WriteSummary(path string, rows []SummaryRow) error {
	if rows == nil {
		rows = []SummaryRow{}
	}
	err := writeAtomic(path, func(f *os.File) error {
		if err := gocsv.MarshalFile(&rows, f); err != nil {
			return fmt.Errorf("summary csv: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}
