package survey

import (
	"surveycli/internal/dataset"
	"surveycli/pkg/contracts/domain"
)

// Variant identifies the kind of a question
type Variant int

const (
	SingleAnswer Variant = iota + 1
	MultiAnswer
)

// String returns the codebook name of the variant
func (v Variant) String() string {
	switch v {
	case SingleAnswer:
		return "single"
	case MultiAnswer:
		return "multi"
	default:
		return "unknown"
	}
}

// Tally is the raw count of a question's responses.
// Counts holds one entry per retained choice, in choice order.
type Tally struct {
	Counts         []int `json:"counts"`
	Respondents    int   `json:"respondents"`
	Nonrespondents int   `json:"nonrespondents"`
}

// Responses returns the sum of all choice counts. For multi-answer questions
// this can exceed the number of respondents.
func (t Tally) Responses() int {
	n := 0
	for _, c := range t.Counts {
		n += c
	}
	return n
}

// Question is implemented by SingleAnswerQuestion and MultiAnswerQuestion.
// The set of implementations is closed.
type Question interface {
	Text() string
	Label() string
	Variant() Variant

	// Matrix returns the label of the owning matrix, or "" for a standalone question
	Matrix() string

	VariableNames() []string
	ChoiceLabels(removeExclusions bool) []string
	AnswerSummary() string

	Tally(ds *dataset.Dataset, removeExclusions bool) (Tally, error)
	TotalRespondents(ds *dataset.Dataset, removeExclusions bool) (int, error)
	FrequencyTable(ds *dataset.Dataset, opts FrequencyOptions) (*domain.Table, error)
	CutBy(groups []dataset.Group, labels GroupLabels, opts CutOptions) (*domain.Table, error)
	CutByQuestion(other Question, ds *dataset.Dataset, opts CutOptions) (*domain.Table, error)

	sameChoices(other Question) bool
	setMatrix(label string)
}

var (
	_ Question = (*SingleAnswerQuestion)(nil)
	_ Question = (*MultiAnswerQuestion)(nil)
)

func appendRow(t *domain.Table, key domain.Key, cells ...domain.Cell) {
	if key != nil {
		t.Index = append(t.Index, key)
	}
	t.Rows = append(t.Rows, cells)
}
