package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Key is a leveled row or column label. A single-level key has one element;
// cross-tabulations use two levels, e.g. ("Region", "North").
type Key []string

// Level returns the label at level i, or "" when the key is shallower
func (k Key) Level(i int) string {
	if i < 0 || i >= len(k) {
		return ""
	}
	return k[i]
}

// Last returns the innermost label
func (k Key) Last() string {
	return k.Level(len(k) - 1)
}

// Equal reports whether two keys have the same labels at every level
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// String joins the levels with " / "
func (k Key) String() string {
	return strings.Join(k, " / ")
}

// CellKind identifies what a Cell holds
type CellKind int

const (
	CellText CellKind = iota
	CellInt
	CellFloat
)

// Cell is one table value: a string (including formatted percentages),
// an integer count, or a float
type Cell struct {
	Kind  CellKind
	Text  string
	Int   int
	Float float64
}

// Text creates a string cell
func Text(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// Int creates an integer cell
func Int(n int) Cell {
	return Cell{Kind: CellInt, Int: n}
}

// Float creates a float cell
func Float(f float64) Cell {
	return Cell{Kind: CellFloat, Float: f}
}

// String renders the cell for display
func (c Cell) String() string {
	switch c.Kind {
	case CellInt:
		return strconv.Itoa(c.Int)
	case CellFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	default:
		return c.Text
	}
}

// MarshalJSON encodes numbers as JSON numbers and everything else as strings.
// NaN and infinities become null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellInt:
		return json.Marshal(c.Int)
	case CellFloat:
		if math.IsNaN(c.Float) || math.IsInf(c.Float, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(c.Float)
	default:
		return json.Marshal(c.Text)
	}
}

// Table is a labeled two-dimensional result. Index is either empty (rows are
// positional) or holds one key per row. Every row has one cell per column.
type Table struct {
	Title   string   `json:"title,omitempty"`
	Index   []Key    `json:"index,omitempty"`
	Columns []Key    `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// NewTable creates an empty table with the given columns
func NewTable(columns ...Key) *Table {
	return &Table{Columns: columns}
}

// AddColumn appends a column; only valid before rows are added
func (t *Table) AddColumn(key Key) {
	t.Columns = append(t.Columns, key)
}

// AppendRow adds a row. key may be nil for positional tables.
func (t *Table) AppendRow(key Key, cells ...Cell) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.Columns))
	}
	if key != nil {
		if len(t.Index) != len(t.Rows) {
			return fmt.Errorf("cannot add keyed row to a positional table")
		}
		t.Index = append(t.Index, key)
	} else if len(t.Index) > 0 {
		return fmt.Errorf("row key required: table is indexed")
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the column with the given key, or -1
func (t *Table) ColumnIndex(key ...string) int {
	for i, c := range t.Columns {
		if c.Equal(key) {
			return i
		}
	}
	return -1
}

// Cell returns the cell at row r and column c
func (t *Table) Cell(r, c int) Cell {
	return t.Rows[r][c]
}

// ColumnCells returns every cell of column c, top to bottom
func (t *Table) ColumnCells(c int) []Cell {
	out := make([]Cell, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[c]
	}
	return out
}

// RowKey returns the key of row r, or its position when the table is positional
func (t *Table) RowKey(r int) Key {
	if r < len(t.Index) {
		return t.Index[r]
	}
	return Key{strconv.Itoa(r)}
}

// SuffixColumn appends suffix to the innermost label of column c
func (t *Table) SuffixColumn(c int, suffix string) {
	key := append(Key(nil), t.Columns[c]...)
	key[len(key)-1] += suffix
	t.Columns[c] = key
}

// Transpose swaps rows and columns
func (t *Table) Transpose() *Table {
	out := &Table{
		Title:   t.Title,
		Index:   make([]Key, len(t.Columns)),
		Columns: make([]Key, len(t.Rows)),
		Rows:    make([][]Cell, len(t.Columns)),
	}
	copy(out.Index, t.Columns)
	for r := range t.Rows {
		out.Columns[r] = t.RowKey(r)
	}
	for c := range t.Columns {
		out.Rows[c] = t.ColumnCells(c)
	}
	return out
}

// Concat stacks the rows of others below t. All tables must share t's columns
// and be indexed the same way.
func (t *Table) Concat(others ...*Table) (*Table, error) {
	out := &Table{
		Title:   t.Title,
		Columns: append([]Key(nil), t.Columns...),
		Index:   append([]Key(nil), t.Index...),
		Rows:    append([][]Cell(nil), t.Rows...),
	}
	for i, o := range others {
		if len(o.Columns) != len(out.Columns) {
			return nil, fmt.Errorf("concat table %d: %d columns, want %d", i+1, len(o.Columns), len(out.Columns))
		}
		for c := range o.Columns {
			if !o.Columns[c].Equal(out.Columns[c]) {
				return nil, fmt.Errorf("concat table %d: column %d is %q, want %q", i+1, c, o.Columns[c], out.Columns[c])
			}
		}
		out.Index = append(out.Index, o.Index...)
		out.Rows = append(out.Rows, o.Rows...)
	}
	if len(out.Index) > 0 && len(out.Index) != len(out.Rows) {
		return nil, fmt.Errorf("concat: mixed indexed and positional rows")
	}
	return out, nil
}

// ColumnDepth returns the number of levels of the deepest column key
func (t *Table) ColumnDepth() int {
	return depth(t.Columns)
}

// IndexDepth returns the number of levels of the deepest row key
func (t *Table) IndexDepth() int {
	return depth(t.Index)
}

func depth(keys []Key) int {
	d := 0
	for _, k := range keys {
		if len(k) > d {
			d = len(k)
		}
	}
	return d
}
