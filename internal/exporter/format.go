package exporter

import (
	"math"
	"strconv"

	"surveycli/pkg/contracts/domain"
)

// formatCell renders a cell for text output. NaN and infinities are left blank.
func formatCell(c domain.Cell) string {
	switch c.Kind {
	case domain.CellInt:
		return strconv.Itoa(c.Int)
	case domain.CellFloat:
		return formatFloat(c.Float)
	default:
		return c.Text
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Grid is a table flattened to strings: header rows then body rows, each
// starting with the row-key columns.
type Grid struct {
	Header    [][]string
	Body      [][]string
	IndexCols int
}

// Flatten converts t into a Grid. Column key levels become header rows; a
// shallower key is bottom-aligned so its innermost label sits on the last
// header row.
func Flatten(t *domain.Table) Grid {
	depth := t.ColumnDepth()
	if depth == 0 {
		depth = 1
	}
	idx := t.IndexDepth()

	g := Grid{IndexCols: idx}
	for level := 0; level < depth; level++ {
		row := make([]string, idx, idx+len(t.Columns))
		for _, key := range t.Columns {
			row = append(row, key.Level(level-(depth-len(key))))
		}
		g.Header = append(g.Header, row)
	}

	for r, cells := range t.Rows {
		row := make([]string, 0, idx+len(cells))
		if idx > 0 {
			key := t.RowKey(r)
			for level := 0; level < idx; level++ {
				row = append(row, key.Level(level))
			}
		}
		for _, c := range cells {
			row = append(row, formatCell(c))
		}
		g.Body = append(g.Body, row)
	}
	return g
}

// Records returns header and body rows together
func (g Grid) Records() [][]string {
	out := make([][]string, 0, len(g.Header)+len(g.Body))
	out = append(out, g.Header...)
	return append(out, g.Body...)
}
