package survey

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveycli/internal/dataset"
	"surveycli/pkg/contracts/domain"
)

func agreeWithDontKnow(t *testing.T) *SingleAnswerQuestion {
	t.Helper()
	q, err := NewSingleAnswerQuestion("Do you agree?", "agree", "q1", Choices{
		{Label: "Yes", Value: 1},
		{Label: "No", Value: 2},
		{Label: "Don't know", Value: 9, Excluded: true},
	})
	require.NoError(t, err)
	return q
}

func TestNewSingleAnswerQuestion(t *testing.T) {
	_, err := NewSingleAnswerQuestion("text", "q1", "", Choices{{Label: "Yes", Value: 1}})
	assert.ErrorIs(t, err, ErrInconsistentChoices)

	_, err = NewSingleAnswerQuestion("text", "q1", "q1", Choices{{Label: "Yes", Value: 1}, {Label: "Also yes", Value: 1}})
	assert.ErrorIs(t, err, ErrInconsistentChoices)

	q := yesNo(t, "q1")
	assert.Equal(t, SingleAnswer, q.Variant())
	assert.Equal(t, []string{"q1"}, q.VariableNames())
	assert.Empty(t, q.Matrix())
}

func TestSingleAnswerChoices(t *testing.T) {
	q := agreeWithDontKnow(t)

	assert.Equal(t, []string{"Yes", "No"}, q.Choices(true, false))
	assert.Equal(t, []string{"Yes", "No", "Don't know"}, q.Choices(false, false))
	assert.Equal(t, []string{"Yes (1)", "No (2)"}, q.Choices(true, true))
	assert.Equal(t, []string{"Yes (1)", "No (2)", "Don't know (X)"}, q.Choices(false, true))
	assert.Equal(t, "Yes (1), No (2), Don't know (X)", q.AnswerSummary())
}

func TestSingleAnswerTally(t *testing.T) {
	t.Run("worked example", func(t *testing.T) {
		q := yesNo(t, "q1")
		ds := newDataset(t, []string{"q1"}, [][]float64{{1}, {1}, {2}, {na}})

		tally, err := q.Tally(ds, true)
		require.NoError(t, err)
		assert.Equal(t, Tally{Counts: []int{2, 1}, Respondents: 3, Nonrespondents: 1}, tally)

		m, err := q.Mean(ds, true)
		require.NoError(t, err)
		assert.InDelta(t, 1.3333, m, 1e-4)
	})

	t.Run("exclusions", func(t *testing.T) {
		q := agreeWithDontKnow(t)
		ds := newDataset(t, []string{"q1"}, [][]float64{{1}, {1}, {2}, {na}, {9}})

		removed, err := q.Tally(ds, true)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, removed.Counts)
		assert.Equal(t, 3, removed.Respondents)
		assert.Equal(t, 2, removed.Nonrespondents)

		kept, err := q.Tally(ds, false)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1, 1}, kept.Counts)
		assert.Equal(t, ds.Len(), kept.Responses()+kept.Nonrespondents)
	})

	t.Run("choice absent from data counts zero", func(t *testing.T) {
		q := yesNo(t, "q1")
		ds := newDataset(t, []string{"q1"}, [][]float64{{1}, {7}})

		tally, err := q.Tally(ds, true)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0}, tally.Counts)
		assert.Equal(t, 1, tally.Nonrespondents)
	})

	t.Run("missing column", func(t *testing.T) {
		q := yesNo(t, "q1")
		ds := newDataset(t, []string{"other"}, [][]float64{{1}})

		_, err := q.Tally(ds, true)
		assert.ErrorIs(t, err, dataset.ErrColumnNotFound)
	})
}

func TestSingleAnswerMeanWithoutRespondents(t *testing.T) {
	q := yesNo(t, "q1")
	ds := newDataset(t, []string{"q1"}, [][]float64{{na}, {na}})

	m, err := q.Mean(ds, true)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m))
}

func TestSingleAnswerFrequencyTable(t *testing.T) {
	q := yesNo(t, "q1")
	ds := newDataset(t, []string{"q1"}, [][]float64{{1}, {1}, {2}, {na}})

	t.Run("defaults", func(t *testing.T) {
		tbl, err := q.FrequencyTable(ds, FrequencyOptions{Options: DefaultOptions()})
		require.NoError(t, err)

		assert.Equal(t, []domain.Key{{"Answer"}, {"Count"}, {"%"}}, tbl.Columns)
		assert.Empty(t, tbl.Index)
		assert.Equal(t, [][]string{
			{"Yes (1)", "2", "67%"},
			{"No (2)", "1", "33%"},
			{"Total", "3", "100%"},
			{"Mean", "1.3", ""},
		}, cells(tbl))
		assert.Equal(t, domain.CellInt, tbl.Cell(0, 1).Kind)
	})

	t.Run("percent only puts mean in percent column", func(t *testing.T) {
		opts := FrequencyOptions{Options: DefaultOptions(), Columns: ColumnAnswer | ColumnPercent}
		tbl, err := q.FrequencyTable(ds, opts)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Yes (1)", "67%"},
			{"No (2)", "33%"},
			{"Total", "100%"},
			{"Mean", "1.3"},
		}, cells(tbl))
	})

	t.Run("no totals no mean", func(t *testing.T) {
		opts := FrequencyOptions{Options: Options{PercentFormat: ".1%", RemoveExclusions: true}}
		tbl, err := q.FrequencyTable(ds, opts)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Yes", "2", "66.7%"},
			{"No", "1", "33.3%"},
		}, cells(tbl))
	})

	t.Run("zero respondents", func(t *testing.T) {
		empty := newDataset(t, []string{"q1"}, [][]float64{{na}})
		tbl, err := q.FrequencyTable(empty, FrequencyOptions{Options: DefaultOptions()})
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Yes (1)", "0", "-"},
			{"No (2)", "0", "-"},
			{"Total", "0", "-"},
			{"Mean", "-", ""},
		}, cells(tbl))
	})

	t.Run("invalid format", func(t *testing.T) {
		opts := FrequencyOptions{Options: Options{PercentFormat: "pct"}}
		_, err := q.FrequencyTable(ds, opts)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestSingleAnswerPercentsSumToWhole(t *testing.T) {
	q := agreeWithDontKnow(t)
	ds := newDataset(t, []string{"q1"}, [][]float64{{1}, {2}, {2}, {2}, {9}, {na}})

	opts := FrequencyOptions{Options: Options{PercentFormat: ".4f", RemoveExclusions: true}, Columns: ColumnPercent}
	tbl, err := q.FrequencyTable(ds, opts)
	require.NoError(t, err)

	total := 0.0
	for _, c := range tbl.ColumnCells(0) {
		v, err := strconv.ParseFloat(c.Text, 64)
		require.NoError(t, err)
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-3)
}

func TestSingleAnswerCompareGroups(t *testing.T) {
	q, err := NewSingleAnswerQuestion("Score", "score", "score", Choices{
		{Label: "1", Value: 1}, {Label: "2", Value: 2}, {Label: "3", Value: 3},
		{Label: "4", Value: 4}, {Label: "5", Value: 5},
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		rows        [][]float64
		significant bool
	}{
		{
			name: "identical distributions",
			rows: [][]float64{
				{1, 1}, {2, 1}, {3, 1}, {4, 1},
				{1, 2}, {2, 2}, {3, 2}, {4, 2},
			},
			significant: false,
		},
		{
			name: "separated distributions",
			rows: [][]float64{
				{1, 1}, {1, 1}, {1, 1},
				{5, 2}, {5, 2}, {5, 2},
			},
			significant: true,
		},
		{
			name: "three groups with data",
			rows: [][]float64{
				{1, 1}, {1, 1}, {3, 2}, {3, 2}, {5, 3}, {5, 3},
			},
			significant: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := newDataset(t, []string{"score", "grp"}, tt.rows)
			groups, err := ds.GroupBy("grp")
			require.NoError(t, err)

			got, err := q.CompareGroups(groups, 0.05)
			require.NoError(t, err)
			assert.Equal(t, tt.significant, got)
		})
	}
}

func crossTabData(t *testing.T) *dataset.Dataset {
	t.Helper()
	return newDataset(t, []string{"q1", "region"}, [][]float64{
		{1, 1},
		{1, 1},
		{2, 1},
		{2, 2},
		{2, 2},
		{9, 2},
		{1, 9},
		{na, 2},
		{1, na},
	})
}

func TestSingleAnswerCutByQuestion(t *testing.T) {
	q := agreeWithDontKnow(t)
	by := region(t)
	ds := crossTabData(t)

	t.Run("defaults", func(t *testing.T) {
		tbl, err := q.CutByQuestion(by, ds, CutOptions{Options: DefaultOptions()})
		require.NoError(t, err)

		assert.Equal(t, []domain.Key{
			{"Do you agree?", "Yes (1)"},
			{"Do you agree?", "No (2)"},
			{"Do you agree?", "Mean"},
		}, tbl.Columns)
		assert.Equal(t, []domain.Key{{"Region", "North"}, {"Region", "South"}}, tbl.Index)
		assert.Equal(t, [][]string{
			{"67%", "33%", "1.3"},
			{"0%", "100%", "2.0"},
		}, cells(tbl))
	})

	t.Run("hierarchical keys", func(t *testing.T) {
		tbl, err := q.CutByQuestion(by, ds, CutOptions{Options: DefaultOptions()})
		require.NoError(t, err)

		rowTop := map[string]struct{}{}
		for _, k := range tbl.Index {
			rowTop[k.Level(0)] = struct{}{}
		}
		colTop := map[string]struct{}{}
		for _, k := range tbl.Columns {
			colTop[k.Level(0)] = struct{}{}
		}
		assert.Equal(t, 2, tbl.NumRows())
		assert.Len(t, rowTop, 1)
		assert.Len(t, colTop, 1)
		assert.Equal(t, 2, tbl.IndexDepth())
		assert.Equal(t, 2, tbl.ColumnDepth())
	})

	t.Run("labels overridden", func(t *testing.T) {
		opts := CutOptions{Options: DefaultOptions(), AxisLabel: "Where", QuestionLabel: "Agree"}
		opts.ShowMean = false
		tbl, err := q.CutByQuestion(by, ds, opts)
		require.NoError(t, err)

		assert.Equal(t, []domain.Key{{"Agree", "Yes"}, {"Agree", "No"}}, tbl.Columns)
		assert.Equal(t, domain.Key{"Where", "North"}, tbl.Index[0])
	})

	t.Run("exclusions kept", func(t *testing.T) {
		opts := CutOptions{Options: DefaultOptions()}
		opts.RemoveExclusions = false
		tbl, err := q.CutByQuestion(by, ds, opts)
		require.NoError(t, err)

		assert.Equal(t, []domain.Key{{"Region", "North"}, {"Region", "South"}, {"Region", "Refused"}}, tbl.Index)
		assert.Equal(t, domain.Key{"Do you agree?", "Don't know (X)"}, tbl.Columns[2])
	})

	t.Run("significant mean is marked", func(t *testing.T) {
		separated := newDataset(t, []string{"q1", "region"}, [][]float64{
			{1, 1}, {1, 1}, {1, 1},
			{2, 2}, {2, 2}, {2, 2},
		})
		tbl, err := q.CutByQuestion(by, separated, CutOptions{Options: DefaultOptions()})
		require.NoError(t, err)
		assert.Equal(t, domain.Key{"Do you agree?", "Mean*"}, tbl.Columns[2])
	})

	t.Run("grouping question must be single answer", func(t *testing.T) {
		multi := contactQuestion(t)
		_, err := q.CutByQuestion(multi, ds, CutOptions{Options: DefaultOptions()})
		assert.ErrorIs(t, err, ErrWrongQuestionType)

		_, err = q.CutByQuestion(nil, ds, CutOptions{Options: DefaultOptions()})
		assert.ErrorIs(t, err, ErrWrongQuestionType)
	})

	t.Run("unknown group codes", func(t *testing.T) {
		tbl, err := q.CutBy(mustGroup(t, ds, "region"), GroupLabels{1: "North"}, CutOptions{Options: DefaultOptions(), AxisLabel: "Region"})
		require.NoError(t, err)
		assert.Equal(t, []domain.Key{{"Region", "North"}, {"Region", "2"}, {"Region", "9"}}, tbl.Index)
	})
}

func mustGroup(t *testing.T, ds *dataset.Dataset, column string) []dataset.Group {
	t.Helper()
	groups, err := ds.GroupBy(column)
	require.NoError(t, err)
	return groups
}
