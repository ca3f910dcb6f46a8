package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"surveycli/internal/config"
	"surveycli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteTableCSV writes t as CSV: an optional title row, one header row per
// column-key level, then the body.
func WriteTableCSV(w io.Writer, t *domain.Table) error {
	cw := csv.NewWriter(w)
	if err := writeTable(cw, t); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteTablesCSV writes tables one after another, separated by a blank row
func WriteTablesCSV(w io.Writer, tables []*domain.Table) error {
	cw := csv.NewWriter(w)
	for i, t := range tables {
		if i > 0 {
			if err := cw.Write([]string{""}); err != nil {
				return err
			}
		}
		if err := writeTable(cw, t); err != nil {
			return fmt.Errorf("table %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTable(cw *csv.Writer, t *domain.Table) error {
	if t.Title != "" {
		if err := cw.Write([]string{t.Title}); err != nil {
			return fmt.Errorf("failed to write title: %w", err)
		}
	}
	for i, record := range Flatten(t).Records() {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}

// CSVWriter writes tables to files under the export directory
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteTable writes a single table to filePath with a BOM
func (w *CSVWriter) WriteTable(filePath string, t *domain.Table) error {
	return w.WriteTables(filePath, []*domain.Table{t}, WriteOptions{BOMPrefix: true})
}

// WriteTables writes tables one after another, separated by a blank row
func (w *CSVWriter) WriteTables(filePath string, tables []*domain.Table, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("table_count", len(tables)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	if err := WriteTablesCSV(file, tables); err != nil {
		return err
	}
	return file.Close()
}

// resolvePath places relative paths under the export directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil || w.paths.ExportDir == "" {
		return filePath
	}
	return filepath.Join(w.paths.ExportDir, filePath)
}
