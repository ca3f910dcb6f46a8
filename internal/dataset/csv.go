package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// missingTokens are cell spellings treated as non-response
var missingTokens = map[string]struct{}{
	"":    {},
	"NA":  {},
	"N/A": {},
	"NaN": {},
	"nan": {},
	".":   {},
}

// LoadCSV reads a response file where the first row holds the variable names
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open response file: %w", err)
	}
	defer file.Close()

	ds, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	slog.Info("Loaded response data",
		slog.String("path", path),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", len(ds.Columns())))
	return ds, nil
}

// ReadCSV parses CSV response data from r
func ReadCSV(r io.Reader) (*Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	// Remove BOM if present
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no header row")
	}
	return fromRecords(records[0], records[1:])
}

// fromRecords converts a header and string rows into a dataset. Short rows are
// padded with missing cells.
func fromRecords(header []string, records [][]string) (*Dataset, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}

	columns := make([][]float64, len(names))
	for i := range columns {
		columns[i] = make([]float64, len(records))
	}

	for r, record := range records {
		if len(record) > len(names) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", r+2, len(record), len(names))
		}
		for c := range names {
			if c >= len(record) {
				columns[c][r] = Missing()
				continue
			}
			v, err := ParseCell(record[c])
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r+2, names[c], err)
			}
			columns[c][r] = v
		}
	}
	return New(names, columns)
}

// ParseCell converts one raw cell to a response code
func ParseCell(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if _, ok := missingTokens[s]; ok {
		return Missing(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid response code %q", raw)
	}
	return v, nil
}
