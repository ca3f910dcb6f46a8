package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrColumnNotFound is returned when a dataset has no column with the requested name
var ErrColumnNotFound = errors.New("column not found")

// Missing returns the value used for a missing (non-response) cell
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is a missing cell
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Dataset is a rectangular table of survey responses: one row per respondent,
// one column per answer variable. Cells are numeric codes; NaN marks a missing cell.
//
// A Dataset is never modified after construction. Operations that recode values
// return a new Dataset that shares the untouched columns with its source.
type Dataset struct {
	names   []string
	index   map[string]int
	columns [][]float64
	rows    int
}

// New creates a dataset from named columns. All columns must have the same length
// and names must be unique. The column slices are copied.
func New(names []string, columns [][]float64) (*Dataset, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("dataset: %d column names for %d columns", len(names), len(columns))
	}

	d := &Dataset{
		names:   make([]string, len(names)),
		index:   make(map[string]int, len(names)),
		columns: make([][]float64, len(columns)),
	}
	copy(d.names, names)

	for i, name := range names {
		if _, dup := d.index[name]; dup {
			return nil, fmt.Errorf("dataset: duplicate column %q", name)
		}
		if i > 0 && len(columns[i]) != len(columns[0]) {
			return nil, fmt.Errorf("dataset: column %q has %d rows, want %d", name, len(columns[i]), len(columns[0]))
		}
		d.index[name] = i
		d.columns[i] = append([]float64(nil), columns[i]...)
	}
	if len(columns) > 0 {
		d.rows = len(columns[0])
	}
	return d, nil
}

// FromRows builds a dataset from row-major records
func FromRows(names []string, rows [][]float64) (*Dataset, error) {
	columns := make([][]float64, len(names))
	for i := range columns {
		columns[i] = make([]float64, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("dataset: row %d has %d cells, want %d", r, len(row), len(names))
		}
		for c, v := range row {
			columns[c][r] = v
		}
	}
	return New(names, columns)
}

// Len returns the number of rows (respondents)
func (d *Dataset) Len() int {
	return d.rows
}

// Columns returns the column names in order
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.names...)
}

// HasColumn reports whether the dataset has a column with the given name
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the values of the named column.
// The returned slice is shared with the dataset and must not be modified.
func (d *Dataset) Column(name string) ([]float64, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return d.columns[i], nil
}

// Copy returns a deep copy of the dataset
func (d *Dataset) Copy() *Dataset {
	c := d.shallow()
	for i := range c.columns {
		c.columns[i] = append([]float64(nil), d.columns[i]...)
	}
	return c
}

// WithMissing returns a working copy in which every cell of column equal to one
// of codes is recoded to missing. The receiver is left untouched.
func (d *Dataset) WithMissing(column string, codes ...float64) (*Dataset, error) {
	i, ok := d.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	drop := make(map[float64]struct{}, len(codes))
	for _, code := range codes {
		drop[code] = struct{}{}
	}

	c := d.shallow()
	recoded := make([]float64, d.rows)
	for r, v := range d.columns[i] {
		if _, hit := drop[v]; hit {
			recoded[r] = Missing()
			continue
		}
		recoded[r] = v
	}
	c.columns[i] = recoded
	return c, nil
}

// Subset returns a dataset holding only the given rows, in the given order
func (d *Dataset) Subset(rows []int) *Dataset {
	c := d.shallow()
	c.rows = len(rows)
	for i, col := range d.columns {
		sub := make([]float64, len(rows))
		for j, r := range rows {
			sub[j] = col[r]
		}
		c.columns[i] = sub
	}
	return c
}

// Group is one partition of a dataset produced by GroupBy
type Group struct {
	Key  float64
	Data *Dataset
}

// GroupBy partitions the rows by the values of column. Rows whose key is missing
// are dropped and groups are returned in ascending key order.
func (d *Dataset) GroupBy(column string) ([]Group, error) {
	col, err := d.Column(column)
	if err != nil {
		return nil, err
	}

	members := make(map[float64][]int)
	for r, v := range col {
		if IsMissing(v) {
			continue
		}
		members[v] = append(members[v], r)
	}

	keys := make([]float64, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group{Key: k, Data: d.Subset(members[k])})
	}
	return groups, nil
}

// DropMissing returns the non-missing values of values
func DropMissing(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

func (d *Dataset) shallow() *Dataset {
	c := &Dataset{
		names:   d.names,
		index:   d.index,
		columns: make([][]float64, len(d.columns)),
		rows:    d.rows,
	}
	copy(c.columns, d.columns)
	return c
}
