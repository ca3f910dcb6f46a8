package dataset

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads response data from a workbook sheet. When sheet is empty the
// first sheet of the workbook is used. The first row holds the variable names.
func LoadXLSX(path, sheet string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	ds, err := fromRecords(rows[0], rows[1:])
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	slog.Info("Loaded response data from workbook",
		slog.String("path", path),
		slog.String("sheet_name", sheet),
		slog.Int("rows", ds.Len()))
	return ds, nil
}
