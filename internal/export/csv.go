package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/joseph-ayodele/po-extractor/constants"
)

// CSVSink writes the header row and rows as UTF-8 CSV.
type CSVSink struct{}

func (CSVSink) Format() string { return constants.OutputCSV }

func (CSVSink) Write(_ context.Context, out Output, path string) error {
	return writeAtomic(path, func(f *os.File) error {
		w := gocsv.NewSafeCSVWriter(csv.NewWriter(f))
		if err := w.Write(out.Table.Columns); err != nil {
			return fmt.Errorf("csv header: %w", err)
		}
		for _, row := range out.Table.Rows {
			if err := w.Write(row); err != nil {
				return fmt.Errorf("csv row: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("csv flush: %w", err)
		}
		return nil
	})
}
