package survey

import (
	"fmt"

	"surveycli/internal/dataset"
	"surveycli/pkg/contracts/domain"
)

// Matrix is a grid of structurally identical questions sharing one choice set.
// It is implemented by SingleAnswerMatrix and MultiAnswerMatrix.
type Matrix interface {
	Text() string
	Label() string
	Variant() Variant
	Questions() []Question
	VariableNames() []string
	ChildrenText() []string
	ChoiceLabels(removeExclusions bool) []string
	AnswerSummary() string

	// FrequencyTable stacks one row per child showing the statistic selected by show
	FrequencyTable(ds *dataset.Dataset, show ShowMode, opts Options) (*domain.Table, error)
	CutBy(groups []dataset.Group, labels GroupLabels, opts CutOptions) (*domain.Table, error)
	CutByQuestion(other Question, ds *dataset.Dataset, opts CutOptions) (*domain.Table, error)
}

var (
	_ Matrix = (*SingleAnswerMatrix)(nil)
	_ Matrix = (*MultiAnswerMatrix)(nil)
)

// NewMatrix validates questions and returns the matching matrix variant.
// All questions must have the same variant and the same choice set.
func NewMatrix(text, label string, questions []Question) (Matrix, error) {
	if err := checkHomogeneous(label, questions); err != nil {
		return nil, err
	}

	switch questions[0].Variant() {
	case SingleAnswer:
		children := make([]*SingleAnswerQuestion, len(questions))
		for i, q := range questions {
			children[i] = q.(*SingleAnswerQuestion)
		}
		return NewSingleAnswerMatrix(text, label, children)
	default:
		children := make([]*MultiAnswerQuestion, len(questions))
		for i, q := range questions {
			children[i] = q.(*MultiAnswerQuestion)
		}
		return NewMultiAnswerMatrix(text, label, children)
	}
}

func checkHomogeneous(label string, questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("matrix %q: %w", label, ErrEmptyMatrix)
	}
	first := questions[0]
	for _, q := range questions[1:] {
		if q.Variant() != first.Variant() {
			return fmt.Errorf("matrix %q: %w: %s is %s, %s is %s",
				label, ErrMixedQuestionTypes, first.Label(), first.Variant(), q.Label(), q.Variant())
		}
	}
	for _, q := range questions[1:] {
		if !q.sameChoices(first) {
			return fmt.Errorf("matrix %q: %w: %s and %s", label, ErrChoicesDiffer, first.Label(), q.Label())
		}
	}
	return nil
}

type matrixBase struct {
	text      string
	label     string
	questions []Question
}

func newMatrixBase(text, label string, questions []Question) (matrixBase, error) {
	if err := checkHomogeneous(label, questions); err != nil {
		return matrixBase{}, err
	}
	for _, q := range questions {
		q.setMatrix(label)
	}
	return matrixBase{text: text, label: label, questions: questions}, nil
}

func (m *matrixBase) Text() string  { return m.text }
func (m *matrixBase) Label() string { return m.label }

// Questions returns the child questions in order
func (m *matrixBase) Questions() []Question {
	return append([]Question(nil), m.questions...)
}

// VariableNames concatenates the variables of every child
func (m *matrixBase) VariableNames() []string {
	var names []string
	for _, q := range m.questions {
		names = append(names, q.VariableNames()...)
	}
	return names
}

// ChildrenText returns the text of every child, which labels the matrix rows
func (m *matrixBase) ChildrenText() []string {
	out := make([]string, len(m.questions))
	for i, q := range m.questions {
		out[i] = q.Text()
	}
	return out
}

func (m *matrixBase) ChoiceLabels(removeExclusions bool) []string {
	return m.questions[0].ChoiceLabels(removeExclusions)
}

func (m *matrixBase) AnswerSummary() string {
	return m.questions[0].AnswerSummary()
}

// CutBy cuts every child by the same groups, transposes each result and stacks
// them. Rows are keyed (child label, answer) and columns (axis label, group).
func (m *matrixBase) CutBy(groups []dataset.Group, labels GroupLabels, opts CutOptions) (*domain.Table, error) {
	if opts.QuestionLabels != nil && len(opts.QuestionLabels) != len(m.questions) {
		return nil, fmt.Errorf("matrix %q: %d question labels for %d questions",
			m.label, len(opts.QuestionLabels), len(m.questions))
	}

	var out *domain.Table
	for i, q := range m.questions {
		childOpts := opts
		childOpts.QuestionLabels = nil
		childOpts.QuestionLabel = q.Text()
		if opts.QuestionLabels != nil {
			childOpts.QuestionLabel = opts.QuestionLabels[i]
		}

		t, err := q.CutBy(groups, labels, childOpts)
		if err != nil {
			return nil, err
		}
		t = t.Transpose()

		if out == nil {
			out = t
			continue
		}
		if out, err = out.Concat(t); err != nil {
			return nil, fmt.Errorf("matrix %q: %w", m.label, err)
		}
	}
	out.Title = m.text
	return out, nil
}

// CutByQuestion groups ds by the answers to other and cuts every child by those groups
func (m *matrixBase) CutByQuestion(other Question, ds *dataset.Dataset, opts CutOptions) (*domain.Table, error) {
	groups, labels, axis, err := groupsByQuestion(other, ds, opts.RemoveExclusions)
	if err != nil {
		return nil, err
	}
	if opts.AxisLabel == "" {
		opts.AxisLabel = axis
	}
	return m.CutBy(groups, labels, opts)
}

// stack builds one row per child from a single-column slice of each child's
// frequency table
func (m *matrixBase) stack(ds *dataset.Dataset, columns []domain.Key, freqOpts FrequencyOptions) (*domain.Table, error) {
	t := domain.NewTable(columns...)
	t.Title = m.text
	for _, q := range m.questions {
		freq, err := q.FrequencyTable(ds, freqOpts)
		if err != nil {
			return nil, err
		}
		appendRow(t, domain.Key{q.Text()}, freq.ColumnCells(0)...)
	}
	return t, nil
}

func invalidShow(show ShowMode) error {
	return fmt.Errorf("%w %q", ErrInvalidShowMode, show)
}

func keys(labels []string) []domain.Key {
	out := make([]domain.Key, len(labels))
	for i, l := range labels {
		out[i] = domain.Key{l}
	}
	return out
}

// SingleAnswerMatrix is a grid of single-answer questions
type SingleAnswerMatrix struct {
	matrixBase
	children []*SingleAnswerQuestion
}

// NewSingleAnswerMatrix validates children and assigns them to the matrix
func NewSingleAnswerMatrix(text, label string, children []*SingleAnswerQuestion) (*SingleAnswerMatrix, error) {
	questions := make([]Question, len(children))
	for i, q := range children {
		questions[i] = q
	}
	base, err := newMatrixBase(text, label, questions)
	if err != nil {
		return nil, err
	}
	return &SingleAnswerMatrix{matrixBase: base, children: append([]*SingleAnswerQuestion(nil), children...)}, nil
}

func (m *SingleAnswerMatrix) Variant() Variant { return SingleAnswer }

// Choices returns the shared choice labels, see SingleAnswerQuestion.Choices
func (m *SingleAnswerMatrix) Choices(removeExclusions, showValues bool) []string {
	return m.children[0].Choices(removeExclusions, showValues)
}

// FrequencyTable shows counts (ShowCount) or percentages (ShowPercent) per
// child, with Total and Mean columns when requested
func (m *SingleAnswerMatrix) FrequencyTable(ds *dataset.Dataset, show ShowMode, opts Options) (*domain.Table, error) {
	freqOpts := FrequencyOptions{Options: opts}
	switch show {
	case ShowCount:
		freqOpts.Columns = ColumnCount
	case ShowPercent:
		freqOpts.Columns = ColumnPercent
	default:
		return nil, invalidShow(show)
	}

	columns := keys(m.Choices(opts.RemoveExclusions, opts.ShowMean))
	if opts.ShowTotals {
		columns = append(columns, domain.Key{HeaderTotal})
	}
	if opts.ShowMean {
		columns = append(columns, domain.Key{HeaderMean})
	}
	return m.stack(ds, columns, freqOpts)
}

// MultiAnswerMatrix is a grid of multi-answer questions
type MultiAnswerMatrix struct {
	matrixBase
	children []*MultiAnswerQuestion
}

// NewMultiAnswerMatrix validates children and assigns them to the matrix
func NewMultiAnswerMatrix(text, label string, children []*MultiAnswerQuestion) (*MultiAnswerMatrix, error) {
	questions := make([]Question, len(children))
	for i, q := range children {
		questions[i] = q
	}
	base, err := newMatrixBase(text, label, questions)
	if err != nil {
		return nil, err
	}
	return &MultiAnswerMatrix{matrixBase: base, children: append([]*MultiAnswerQuestion(nil), children...)}, nil
}

func (m *MultiAnswerMatrix) Variant() Variant { return MultiAnswer }

// Choices returns the shared choice labels
func (m *MultiAnswerMatrix) Choices(removeExclusions bool) []string {
	return m.children[0].Choices(removeExclusions)
}

// FrequencyTable shows counts (ShowCount), percent of respondents
// (ShowPercentRespondents) or percent of responses (ShowPercentResponses) per
// child. ShowTotals adds a Total Respondents column.
func (m *MultiAnswerMatrix) FrequencyTable(ds *dataset.Dataset, show ShowMode, opts Options) (*domain.Table, error) {
	freqOpts := FrequencyOptions{Options: opts}
	freqOpts.ShowTotals = false
	switch show {
	case ShowCount:
		freqOpts.Columns = ColumnCount
	case ShowPercentRespondents:
		freqOpts.Columns = ColumnPercent
	case ShowPercentResponses:
		freqOpts.Columns = ColumnPercentResponses
	default:
		return nil, invalidShow(show)
	}

	t, err := m.stack(ds, keys(m.Choices(opts.RemoveExclusions)), freqOpts)
	if err != nil {
		return nil, err
	}
	if !opts.ShowTotals {
		return t, nil
	}

	t.AddColumn(domain.Key{HeaderMatrixTotalRespondents})
	for i, q := range m.children {
		n, err := q.TotalRespondents(ds, opts.RemoveExclusions)
		if err != nil {
			return nil, err
		}
		t.Rows[i] = append(t.Rows[i], domain.Int(n))
	}
	return t, nil
}

// ShowModes returns the show modes accepted by matrices of variant v
func ShowModes(v Variant) []ShowMode {
	if v == MultiAnswer {
		return []ShowMode{ShowCount, ShowPercentRespondents, ShowPercentResponses}
	}
	return []ShowMode{ShowCount, ShowPercent}
}
