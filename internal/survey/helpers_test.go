package survey

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"surveycli/internal/dataset"
	"surveycli/pkg/contracts/domain"
)

var na = math.NaN()

func newDataset(t *testing.T, names []string, rows [][]float64) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRows(names, rows)
	require.NoError(t, err)
	return ds
}

func yesNo(t *testing.T, label string) *SingleAnswerQuestion {
	t.Helper()
	q, err := NewSingleAnswerQuestion("Do you agree? ("+label+")", label, label, Choices{
		{Label: "Yes", Value: 1},
		{Label: "No", Value: 2},
	})
	require.NoError(t, err)
	return q
}

func region(t *testing.T) *SingleAnswerQuestion {
	t.Helper()
	q, err := NewSingleAnswerQuestion("Region", "region", "region", Choices{
		{Label: "North", Value: 1},
		{Label: "South", Value: 2},
		{Label: "Refused", Value: 9, Excluded: true},
	})
	require.NoError(t, err)
	return q
}

// cells renders every row of a table as strings
func cells(tbl *domain.Table) [][]string {
	out := make([][]string, len(tbl.Rows))
	for r, row := range tbl.Rows {
		out[r] = make([]string, len(row))
		for c, cell := range row {
			out[r][c] = cell.String()
		}
	}
	return out
}
