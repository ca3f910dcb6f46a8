package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"surveycli/internal/codebook"
	"surveycli/internal/dataset"
)

// SurveyCodebook describes a small customer survey: two agree/disagree
// questions forming the "service" matrix, a region question to cut by and a
// multi-answer contact question.
const SurveyCodebook = `
title: Customer survey
questions:
  - id: agree1
    text: The service is fast
    type: single
    variable: q1
    choices:
      - {label: "Yes", value: 1}
      - {label: "No", value: 2}
      - {label: "Don't know", value: 9, exclude: true}
  - id: agree2
    text: The service is friendly
    type: single
    variable: q2
    choices:
      - {label: "Yes", value: 1}
      - {label: "No", value: 2}
      - {label: "Don't know", value: 9, exclude: true}
  - id: region
    text: Region
    type: single
    variable: region
    choices:
      - {label: North, value: 1}
      - {label: South, value: 2}
  - id: contact
    text: How can we contact you?
    type: multi
    choices:
      - {label: Email, variable: q5_1}
      - {label: Phone, variable: q5_2}
matrices:
  - id: service
    text: About our service
    questions: [agree1, agree2]
report:
  - question: agree1
  - question: contact
    cut_by: region
  - matrix: service
    show: pct
`

// SurveyResponsesCSV holds six respondents for SurveyCodebook. The last one
// answered nothing.
const SurveyResponsesCSV = `q1,q2,region,q5_1,q5_2
1,1,1,1,
1,2,1,1,1
2,9,2,,1
9,1,2,,
2,2,2,1,
,,,,
`

// SurveyFixture parses SurveyCodebook and SurveyResponsesCSV
func SurveyFixture(t *testing.T) (*codebook.Codebook, *dataset.Dataset) {
	t.Helper()

	cb, err := codebook.Parse([]byte(SurveyCodebook))
	require.NoError(t, err)

	na := math.NaN()
	ds, err := dataset.FromRows([]string{"q1", "q2", "region", "q5_1", "q5_2"}, [][]float64{
		{1, 1, 1, 1, na},
		{1, 2, 1, 1, 1},
		{2, 9, 2, na, 1},
		{9, 1, 2, na, na},
		{2, 2, 2, 1, na},
		{na, na, na, na, na},
	})
	require.NoError(t, err)
	return cb, ds
}

// WriteSurveyFiles writes the codebook and responses into dir and returns
// their paths
func WriteSurveyFiles(t *testing.T, dir string) (codebookPath, dataPath string) {
	t.Helper()

	codebookPath = filepath.Join(dir, "codebook.yaml")
	dataPath = filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(codebookPath, []byte(SurveyCodebook), 0o644))
	require.NoError(t, os.WriteFile(dataPath, []byte(SurveyResponsesCSV), 0o644))
	return codebookPath, dataPath
}
