package survey

import (
	"fmt"

	"surveycli/internal/dataset"
	"surveycli/pkg/contracts/domain"
)

// MultiAnswerQuestion is a select-all-that-apply question. Each choice has its
// own variable; a non-missing cell means the respondent picked that choice.
type MultiAnswerQuestion struct {
	text    string
	label   string
	choices MultiChoices
	matrix  string
}

// NewMultiAnswerQuestion creates a multi-answer question. Every choice needs a
// distinct variable.
func NewMultiAnswerQuestion(text, label string, choices MultiChoices) (*MultiAnswerQuestion, error) {
	seen := make(map[string]struct{}, len(choices))
	for _, ch := range choices {
		if ch.Variable == "" {
			return nil, fmt.Errorf("%w: question %q choice %q has no variable", ErrInconsistentChoices, label, ch.Label)
		}
		if _, dup := seen[ch.Variable]; dup {
			return nil, fmt.Errorf("%w: question %q repeats variable %q", ErrInconsistentChoices, label, ch.Variable)
		}
		seen[ch.Variable] = struct{}{}
	}

	return &MultiAnswerQuestion{
		text:    text,
		label:   label,
		choices: append(MultiChoices(nil), choices...),
	}, nil
}

func (q *MultiAnswerQuestion) Text() string     { return q.text }
func (q *MultiAnswerQuestion) Label() string    { return q.label }
func (q *MultiAnswerQuestion) Variant() Variant { return MultiAnswer }
func (q *MultiAnswerQuestion) Matrix() string   { return q.matrix }

// VariableNames returns one variable per choice, in choice order
func (q *MultiAnswerQuestion) VariableNames() []string {
	return q.choices.Variables()
}

// ChoiceSet returns a copy of the full choice set
func (q *MultiAnswerQuestion) ChoiceSet() MultiChoices {
	return append(MultiChoices(nil), q.choices...)
}

// Choices returns the labels of the retained choices
func (q *MultiAnswerQuestion) Choices(removeExclusions bool) []string {
	return q.choices.Retained(removeExclusions).Labels()
}

func (q *MultiAnswerQuestion) ChoiceLabels(removeExclusions bool) []string {
	return q.Choices(removeExclusions)
}

func (q *MultiAnswerQuestion) AnswerSummary() string {
	return q.choices.Summary()
}

// Tally counts, per retained choice, the rows where its variable is present.
// A row with every retained variable missing is a nonrespondent; any other row
// is one respondent no matter how many choices it picked.
func (q *MultiAnswerQuestion) Tally(ds *dataset.Dataset, removeExclusions bool) (Tally, error) {
	retained := q.choices.Retained(removeExclusions)
	cols := make([][]float64, len(retained))
	for i, ch := range retained {
		col, err := ds.Column(ch.Variable)
		if err != nil {
			return Tally{}, fmt.Errorf("tally %s: %w", q.label, err)
		}
		cols[i] = col
	}

	t := Tally{Counts: make([]int, len(retained))}
	for r := 0; r < ds.Len(); r++ {
		answered := false
		for i, col := range cols {
			if !dataset.IsMissing(col[r]) {
				t.Counts[i]++
				answered = true
			}
		}
		if answered {
			t.Respondents++
		} else {
			t.Nonrespondents++
		}
	}
	return t, nil
}

// TotalRespondents returns the number of rows with at least one retained choice
func (q *MultiAnswerQuestion) TotalRespondents(ds *dataset.Dataset, removeExclusions bool) (int, error) {
	t, err := q.Tally(ds, removeExclusions)
	if err != nil {
		return 0, err
	}
	return t.Respondents, nil
}

// FrequencyTable builds the Answer, Count, % of respondents and % of responses
// table. ShowTotals appends a "Total respondents" row. ShowMean is ignored.
func (q *MultiAnswerQuestion) FrequencyTable(ds *dataset.Dataset, opts FrequencyOptions) (*domain.Table, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	pctFmt, _ := parseFormat(opts.PercentFormat)

	tally, err := q.Tally(ds, opts.RemoveExclusions)
	if err != nil {
		return nil, err
	}
	responses := tally.Responses()

	showAnswer := opts.Columns.Has(ColumnAnswer)
	showCount := opts.Columns.Has(ColumnCount)
	showRespondents := opts.Columns.Has(ColumnPercent)
	showResponses := opts.Columns.Has(ColumnPercentResponses)

	t := domain.NewTable()
	t.Title = q.text
	if showAnswer {
		t.AddColumn(domain.Key{HeaderAnswer})
	}
	if showCount {
		t.AddColumn(domain.Key{HeaderCount})
	}
	if showRespondents {
		t.AddColumn(domain.Key{HeaderPercentRespondents})
	}
	if showResponses {
		t.AddColumn(domain.Key{HeaderPercentResponses})
	}

	answers := q.Choices(opts.RemoveExclusions)
	for i, ct := range tally.Counts {
		var row []domain.Cell
		if showAnswer {
			row = append(row, domain.Text(answers[i]))
		}
		if showCount {
			row = append(row, domain.Int(ct))
		}
		if showRespondents {
			row = append(row, domain.Text(formatPercent(ct, tally.Respondents, pctFmt)))
		}
		if showResponses {
			row = append(row, domain.Text(formatPercent(ct, responses, pctFmt)))
		}
		appendRow(t, nil, row...)
	}

	if opts.ShowTotals {
		var row []domain.Cell
		if showAnswer {
			row = append(row, domain.Text(LabelTotalRespondents))
		}
		if showCount {
			row = append(row, domain.Int(tally.Respondents))
		}
		if showRespondents {
			row = append(row, domain.Text(""))
		}
		if showResponses {
			row = append(row, domain.Text(""))
		}
		appendRow(t, nil, row...)
	}

	return t, nil
}

// CompareGroups returns one flag per retained choice telling whether the share
// of respondents picking it differs significantly between groups
func (q *MultiAnswerQuestion) CompareGroups(groups []dataset.Group, removeExclusions bool, level float64) ([]bool, error) {
	tallies := make([]Tally, len(groups))
	for i, g := range groups {
		t, err := q.Tally(g.Data, removeExclusions)
		if err != nil {
			return nil, fmt.Errorf("compare groups for %s: %w", q.label, err)
		}
		tallies[i] = t
	}
	if len(tallies) == 0 {
		return make([]bool, len(q.choices.Retained(removeExclusions))), nil
	}
	return compareProportions(tallies, level), nil
}

// CutBy builds one row per group holding the share of the group's respondents
// picking each choice. Choice columns that differ significantly between groups
// are marked.
func (q *MultiAnswerQuestion) CutBy(groups []dataset.Group, labels GroupLabels, opts CutOptions) (*domain.Table, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	questionLabel := opts.QuestionLabel
	if questionLabel == "" {
		questionLabel = q.text
	}

	t := domain.NewTable()
	t.Title = q.text
	for _, answer := range q.Choices(opts.RemoveExclusions) {
		t.AddColumn(domain.Key{questionLabel, answer})
	}

	freqOpts := FrequencyOptions{Options: opts.Options, Columns: ColumnAnswer | ColumnPercent}
	freqOpts.ShowTotals = false
	for _, g := range groups {
		freq, err := q.FrequencyTable(g.Data, freqOpts)
		if err != nil {
			return nil, err
		}
		appendRow(t, domain.Key{opts.AxisLabel, labels.Label(g.Key)}, freq.ColumnCells(1)...)
	}

	flags, err := q.CompareGroups(groups, opts.RemoveExclusions, opts.SignificanceLevel)
	if err != nil {
		return nil, err
	}
	for c, significant := range flags {
		if significant {
			t.SuffixColumn(c, SignificanceMarker)
		}
	}
	return t, nil
}

// CutByQuestion cross-tabulates the question by the answers to other, which
// must be a single-answer question
func (q *MultiAnswerQuestion) CutByQuestion(other Question, ds *dataset.Dataset, opts CutOptions) (*domain.Table, error) {
	groups, labels, axis, err := groupsByQuestion(other, ds, opts.RemoveExclusions)
	if err != nil {
		return nil, err
	}
	if opts.AxisLabel == "" {
		opts.AxisLabel = axis
	}
	return q.CutBy(groups, labels, opts)
}

func (q *MultiAnswerQuestion) sameChoices(other Question) bool {
	o, ok := other.(*MultiAnswerQuestion)
	return ok && q.choices.Equal(o.choices)
}

func (q *MultiAnswerQuestion) setMatrix(label string) {
	q.matrix = label
}
