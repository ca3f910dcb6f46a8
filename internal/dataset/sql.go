package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" database/sql driver
)

// LoadSQL runs query and converts its result set into a dataset. Every selected
// column must hold numeric codes; NULL becomes a missing cell.
func LoadSQL(ctx context.Context, db *sql.DB, query string, args ...any) (*Dataset, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	columns := make([][]float64, len(names))
	cells := make([]sql.NullFloat64, len(names))
	dest := make([]any, len(names))
	for i := range cells {
		dest[i] = &cells[i]
	}

	n := 0
	for rows.Next() {
		n++
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan response row %d: %w", n, err)
		}
		for i, cell := range cells {
			v := Missing()
			if cell.Valid {
				v = cell.Float64
			}
			columns[i] = append(columns[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}

	return New(names, columns)
}

// LoadDuckDB opens a DuckDB database file and loads every row of table
func LoadDuckDB(ctx context.Context, path, table string) (*Dataset, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", path, err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(table))
	ds, err := LoadSQL(ctx, db, query)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Loaded response data from duckdb",
		slog.String("path", path),
		slog.String("table", table),
		slog.Int("rows", ds.Len()))
	return ds, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
