package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"surveycli/pkg/contracts/domain"
)

const maxSheetName = 31

// XLSXWriter writes tables to a workbook, one sheet per table
type XLSXWriter struct {
	// IndexWidth is the width of the row-key columns
	IndexWidth float64
}

// NewXLSXWriter creates a workbook writer with default layout
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{IndexWidth: 28}
}

// Save writes the workbook to path
func (x *XLSXWriter) Save(path string, tables []*domain.Table) error {
	f, err := x.build(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	slog.Info("Wrote workbook", slog.String("path", path), slog.Int("sheets", len(tables)))
	return nil
}

// Write streams the workbook to w
func (x *XLSXWriter) Write(w io.Writer, tables []*domain.Table) error {
	f, err := x.build(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (x *XLSXWriter) build(tables []*domain.Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook needs at least one table")
	}

	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		f.Close()
		return nil, err
	}

	used := make(map[string]bool)
	first := f.GetSheetName(0)
	for i, t := range tables {
		name := sheetName(t.Title, i, used)
		if i == 0 {
			err = f.SetSheetName(first, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		s := sheet{f: f, name: name, header: headerStyle, title: titleStyle}
		if err := s.writeTable(t, x.IndexWidth); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

type sheet struct {
	f      *excelize.File
	name   string
	header int
	title  int
}

func (s sheet) set(col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.f.SetCellValue(s.name, cell, v)
}

func (s sheet) style(c1, r1, c2, r2, style int) error {
	from, err := excelize.CoordinatesToCellName(c1, r1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(c2, r2)
	if err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, from, to, style)
}

func (s sheet) merge(c1, r1, c2, r2 int) error {
	from, err := excelize.CoordinatesToCellName(c1, r1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(c2, r2)
	if err != nil {
		return err
	}
	return s.f.MergeCell(s.name, from, to)
}

func (s sheet) writeTable(t *domain.Table, indexWidth float64) error {
	row := 1
	if t.Title != "" {
		if err := s.set(1, row, t.Title); err != nil {
			return err
		}
		if err := s.style(1, row, 1, row, s.title); err != nil {
			return err
		}
		row += 2
	}

	g := Flatten(t)
	idx := g.IndexCols
	headerTop := row
	for _, labels := range g.Header {
		for c, label := range labels {
			if label == "" {
				continue
			}
			if err := s.set(c+1, row, label); err != nil {
				return err
			}
		}
		row++
	}
	lastCol := idx + len(t.Columns)
	if lastCol > 0 && len(g.Header) > 0 {
		if err := s.style(1, headerTop, lastCol, row-1, s.header); err != nil {
			return err
		}
	}
	if err := s.mergeHeaders(t, idx, headerTop); err != nil {
		return err
	}

	for r, cells := range t.Rows {
		if idx > 0 {
			key := t.RowKey(r)
			for level := 0; level < idx; level++ {
				if err := s.set(level+1, row, key.Level(level)); err != nil {
					return err
				}
			}
		}
		for c, cell := range cells {
			if err := s.set(idx+c+1, row, cellValue(cell)); err != nil {
				return err
			}
		}
		row++
	}

	if idx > 0 {
		last, err := excelize.ColumnNumberToName(idx)
		if err != nil {
			return err
		}
		if err := s.f.SetColWidth(s.name, "A", last, indexWidth); err != nil {
			return err
		}
	}
	return nil
}

// mergeHeaders merges runs of equal labels on every header row but the last,
// provided the columns also share all labels above.
func (s sheet) mergeHeaders(t *domain.Table, idx, top int) error {
	depth := t.ColumnDepth()
	for level := 0; level < depth-1; level++ {
		start := 0
		for c := 1; c <= len(t.Columns); c++ {
			if c < len(t.Columns) && samePrefix(t.Columns[start], t.Columns[c], level+1) {
				continue
			}
			if c-start > 1 && t.Columns[start].Level(level) != "" {
				if err := s.merge(idx+start+1, top+level, idx+c, top+level); err != nil {
					return err
				}
			}
			start = c
		}
	}
	return nil
}

// samePrefix reports whether a and b agree on their first n levels. Keys
// shallower than n never match.
func samePrefix(a, b domain.Key, n int) bool {
	if len(a) <= n-1 || len(b) <= n-1 || len(a) != len(b) {
		return false
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cellValue(c domain.Cell) any {
	switch c.Kind {
	case domain.CellInt:
		return c.Int
	case domain.CellFloat:
		if math.IsNaN(c.Float) || math.IsInf(c.Float, 0) {
			return ""
		}
		return c.Float
	default:
		return c.Text
	}
}

// sheetName derives a unique, valid worksheet name from a table title
func sheetName(title string, i int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Table %d", i+1)
	}
	name = truncate(name, maxSheetName)

	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
