package export

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/po-extractor/constants"
)

// SheetName is the worksheet holding PO lines.
const SheetName = "PO_Lines"

const (
	minColWidth = 10
	maxColWidth = 60
)

// XLSXSink writes one worksheet: a header row then one row per output row.
type XLSXSink struct{}

func (XLSXSink) Format() string { return constants.OutputXLSX }

func (XLSXSink) Write(_ context.Context, out Output, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	widths := make([]int, len(out.Table.Columns))
	header := make([]any, len(out.Table.Columns))
	for i, c := range out.Table.Columns {
		header[i] = c
		widths[i] = utf8.RuneCountInString(c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	for r, row := range out.Table.Rows {
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = v
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(v))
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
			return fmt.Errorf("xlsx row %d: %w", r+1, err)
		}
	}

	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("xlsx column: %w", err)
		}
		_ = f.SetColWidth(SheetName, name, name, float64(min(max(w+2, minColWidth), maxColWidth)))
	}

	return writeAtomic(path, func(tmp *os.File) error {
		if err := f.Write(tmp); err != nil {
			return fmt.Errorf("xlsx write: %w", err)
		}
		return nil
	})
}
