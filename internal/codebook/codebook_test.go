package codebook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveycli/internal/survey"
	api "surveycli/pkg/contracts/api/v1"
)

const sampleCodebook = `
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

func TestParse(t *testing.T) {
	cb, err := Parse([]byte(sampleCodebook))
	require.NoError(t, err)

	assert.Equal(t, "Customer survey", cb.Title)
	assert.Len(t, cb.Questions(), 4)
	assert.Len(t, cb.Matrices(), 1)
	assert.Len(t, cb.Report, 3)

	q, err := cb.Question("agree1")
	require.NoError(t, err)
	assert.Equal(t, survey.SingleAnswer, q.Variant())
	assert.Equal(t, "service", q.Matrix())
	assert.Equal(t, "Yes (1), No (2), Don't know (X)", q.AnswerSummary())

	contact, err := cb.Question("contact")
	require.NoError(t, err)
	assert.Equal(t, []string{"q5_1", "q5_2"}, contact.VariableNames())

	m, err := cb.Matrix("service")
	require.NoError(t, err)
	assert.Equal(t, []string{"The service is fast", "The service is friendly"}, m.ChildrenText())

	assert.Equal(t, []string{"q1", "q2", "q5_1", "q5_2", "region"}, cb.Variables())

	_, err = cb.Question("nope")
	assert.ErrorIs(t, err, ErrUnknownQuestion)
	_, err = cb.Matrix("nope")
	assert.ErrorIs(t, err, ErrUnknownMatrix)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		message string
	}{
		{
			name:    "malformed yaml",
			yaml:    "questions: [",
			wantErr: ErrParse,
		},
		{
			name:    "unknown field",
			yaml:    "questions: []\ncolour: red\n",
			wantErr: ErrParse,
		},
		{
			name:    "no questions",
			yaml:    "title: empty\n",
			wantErr: ErrInvalid,
			message: "questions is required",
		},
		{
			name: "bad type",
			yaml: `
questions:
  - {id: q1, text: Q, type: ranking, variable: q1, choices: [{label: A, value: 1}]}
`,
			wantErr: ErrInvalid,
			message: "questions[0].type must be one of: single, multi",
		},
		{
			name: "single without variable",
			yaml: `
questions:
  - {id: q1, text: Q, type: single, choices: [{label: A, value: 1}]}
`,
			wantErr: ErrInvalid,
			message: "questions[0].variable is required",
		},
		{
			name: "bad identifier",
			yaml: `
questions:
  - {id: 1q, text: Q, type: single, variable: q1, choices: [{label: A, value: 1}]}
`,
			wantErr: ErrInvalid,
			message: "questions[0].id must start with a letter",
		},
		{
			name: "single choice without value",
			yaml: `
questions:
  - {id: q1, text: Q, type: single, variable: q1, choices: [{label: A}]}
`,
			wantErr: ErrInvalid,
			message: `choice "A" has no value`,
		},
		{
			name: "multi choice without variable",
			yaml: `
questions:
  - {id: q1, text: Q, type: multi, choices: [{label: A}]}
`,
			wantErr: ErrInvalid,
		},
		{
			name: "duplicate question",
			yaml: `
questions:
  - {id: q1, text: Q, type: single, variable: q1, choices: [{label: A, value: 1}]}
  - {id: q1, text: Q, type: single, variable: q2, choices: [{label: A, value: 1}]}
`,
			wantErr: ErrInvalid,
			message: "duplicate question",
		},
		{
			name: "matrix with unknown question",
			yaml: `
questions:
  - {id: q1, text: Q, type: single, variable: q1, choices: [{label: A, value: 1}]}
matrices:
  - {id: m, text: M, questions: [q1, q9]}
`,
			wantErr: ErrUnknownQuestion,
		},
		{
			name: "matrix with differing choices",
			yaml: `
questions:
  - {id: q1, text: Q, type: single, variable: q1, choices: [{label: A, value: 1}]}
  - {id: q2, text: Q, type: single, variable: q2, choices: [{label: A, value: 2}]}
matrices:
  - {id: m, text: M, questions: [q1, q2]}
`,
			wantErr: survey.ErrChoicesDiffer,
		},
		{
			name: "question in two matrices",
			yaml: `
questions:
  - {id: q1, text: Q, type: single, variable: q1, choices: [{label: A, value: 1}]}
matrices:
  - {id: m1, text: M, questions: [q1]}
  - {id: m2, text: M, questions: [q1]}
`,
			wantErr: ErrInvalid,
			message: "already in matrix",
		},
		{
			name: "report cut by multi answer question",
			yaml: `
questions:
  - {id: q1, text: Q, type: single, variable: q1, choices: [{label: A, value: 1}]}
  - {id: m1, text: M, type: multi, choices: [{label: A, variable: a}]}
report:
  - {question: q1, cut_by: m1}
`,
			wantErr: survey.ErrWrongQuestionType,
		},
		{
			name: "report with invalid show",
			yaml: `
questions:
  - {id: q1, text: Q, type: single, variable: q1, choices: [{label: A, value: 1}]}
matrices:
  - {id: m, text: M, questions: [q1]}
report:
  - {matrix: m, show: pct_responses}
`,
			wantErr: survey.ErrInvalidShowMode,
		},
		{
			name: "report naming question and matrix",
			yaml: `
questions:
  - {id: q1, text: Q, type: single, variable: q1, choices: [{label: A, value: 1}]}
matrices:
  - {id: m, text: M, questions: [q1]}
report:
  - {question: q1, matrix: m}
`,
			wantErr: ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestCheckRequest(t *testing.T) {
	cb, err := Parse([]byte(sampleCodebook))
	require.NoError(t, err)

	assert.NoError(t, cb.CheckRequest(api.TableRequest{Question: "agree1", CutBy: "region"}))
	assert.NoError(t, cb.CheckRequest(api.TableRequest{Matrix: "service", Show: "ct"}))
	assert.ErrorIs(t, cb.CheckRequest(api.TableRequest{Question: "agree1", Show: "pct"}), ErrInvalid)
	assert.ErrorIs(t, cb.CheckRequest(api.TableRequest{}), ErrInvalid)
	assert.ErrorIs(t, cb.CheckRequest(api.TableRequest{Question: "agree1", CutBy: "missing"}), ErrUnknownQuestion)
	assert.ErrorIs(t, cb.CheckRequest(api.TableRequest{Question: "agree1", CutBy: "contact"}), survey.ErrWrongQuestionType)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCodebook), 0644))

	cb, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Customer survey", cb.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
