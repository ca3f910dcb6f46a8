package survey

import (
	"fmt"
	"math"

	"surveycli/internal/dataset"
	"surveycli/pkg/contracts/domain"
)

// SingleAnswerQuestion is a question whose variable holds one coded value per respondent
type SingleAnswerQuestion struct {
	text     string
	label    string
	variable string
	choices  Choices
	matrix   string
}

// NewSingleAnswerQuestion creates a single-answer question. Choice values must be unique.
func NewSingleAnswerQuestion(text, label, variable string, choices Choices) (*SingleAnswerQuestion, error) {
	if variable == "" {
		return nil, fmt.Errorf("%w: question %q has no variable", ErrInconsistentChoices, label)
	}
	seen := make(map[float64]struct{}, len(choices))
	for _, ch := range choices {
		if _, dup := seen[ch.Value]; dup {
			return nil, fmt.Errorf("%w: question %q repeats value %s", ErrInconsistentChoices, label, formatCode(ch.Value))
		}
		seen[ch.Value] = struct{}{}
	}

	return &SingleAnswerQuestion{
		text:     text,
		label:    label,
		variable: variable,
		choices:  append(Choices(nil), choices...),
	}, nil
}

func (q *SingleAnswerQuestion) Text() string     { return q.text }
func (q *SingleAnswerQuestion) Label() string    { return q.label }
func (q *SingleAnswerQuestion) Variant() Variant { return SingleAnswer }
func (q *SingleAnswerQuestion) Matrix() string   { return q.matrix }
func (q *SingleAnswerQuestion) Variable() string { return q.variable }

// VariableNames returns the question's single variable
func (q *SingleAnswerQuestion) VariableNames() []string {
	return []string{q.variable}
}

// ChoiceSet returns a copy of the full choice set
func (q *SingleAnswerQuestion) ChoiceSet() Choices {
	return append(Choices(nil), q.choices...)
}

// Choices returns the choice labels. With showValues each label carries its
// code, "Yes (1)", and excluded choices that are kept show "(X)" instead.
func (q *SingleAnswerQuestion) Choices(removeExclusions, showValues bool) []string {
	retained := q.choices.Retained(removeExclusions)
	if !showValues {
		return retained.Labels()
	}
	out := make([]string, len(retained))
	for i, ch := range retained {
		out[i] = fmt.Sprintf("%s (%s)", ch.Label, ch.code())
	}
	return out
}

// ChoiceLabels returns the plain labels of the retained choices
func (q *SingleAnswerQuestion) ChoiceLabels(removeExclusions bool) []string {
	return q.Choices(removeExclusions, false)
}

// AnswerSummary renders the choice set with codes
func (q *SingleAnswerQuestion) AnswerSummary() string {
	return q.choices.Summary()
}

// Tally counts each retained choice. Respondents is the sum of those counts and
// every other row of the column, missing or not, is a nonrespondent.
func (q *SingleAnswerQuestion) Tally(ds *dataset.Dataset, removeExclusions bool) (Tally, error) {
	col, err := ds.Column(q.variable)
	if err != nil {
		return Tally{}, fmt.Errorf("tally %s: %w", q.label, err)
	}

	freqs := make(map[float64]int)
	for _, v := range col {
		if !dataset.IsMissing(v) {
			freqs[v]++
		}
	}

	retained := q.choices.Retained(removeExclusions)
	t := Tally{Counts: make([]int, len(retained))}
	for i, ch := range retained {
		t.Counts[i] = freqs[ch.Value]
		t.Respondents += t.Counts[i]
	}
	t.Nonrespondents = len(col) - t.Respondents
	return t, nil
}

// TotalRespondents returns the number of respondents giving a retained answer
func (q *SingleAnswerQuestion) TotalRespondents(ds *dataset.Dataset, removeExclusions bool) (int, error) {
	t, err := q.Tally(ds, removeExclusions)
	if err != nil {
		return 0, err
	}
	return t.Respondents, nil
}

// Mean returns the average code of the retained answers, or NaN when nobody answered
func (q *SingleAnswerQuestion) Mean(ds *dataset.Dataset, removeExclusions bool) (float64, error) {
	t, err := q.Tally(ds, removeExclusions)
	if err != nil {
		return math.NaN(), err
	}
	return q.meanOf(t, removeExclusions), nil
}

func (q *SingleAnswerQuestion) meanOf(t Tally, removeExclusions bool) float64 {
	if t.Respondents == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, ch := range q.choices.Retained(removeExclusions) {
		sum += float64(t.Counts[i]) * ch.Value
	}
	return sum / float64(t.Respondents)
}

// FrequencyTable builds the Answer, Count and % table. ShowTotals appends a
// Total row and ShowMean a Mean row; the mean sits in the Count column, or in
// the % column when counts are hidden.
func (q *SingleAnswerQuestion) FrequencyTable(ds *dataset.Dataset, opts FrequencyOptions) (*domain.Table, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	pctFmt, _ := parseFormat(opts.PercentFormat)
	meanFmt, _ := parseFormat(opts.MeanFormat)

	tally, err := q.Tally(ds, opts.RemoveExclusions)
	if err != nil {
		return nil, err
	}

	showAnswer := opts.Columns.Has(ColumnAnswer)
	showCount := opts.Columns.Has(ColumnCount)
	showPct := opts.Columns.Has(ColumnPercent)

	t := domain.NewTable()
	t.Title = q.text
	if showAnswer {
		t.AddColumn(domain.Key{HeaderAnswer})
	}
	if showCount {
		t.AddColumn(domain.Key{HeaderCount})
	}
	if showPct {
		t.AddColumn(domain.Key{HeaderPercent})
	}

	answers := q.Choices(opts.RemoveExclusions, opts.ShowMean)
	for i, ct := range tally.Counts {
		var row []domain.Cell
		if showAnswer {
			row = append(row, domain.Text(answers[i]))
		}
		if showCount {
			row = append(row, domain.Int(ct))
		}
		if showPct {
			row = append(row, domain.Text(formatPercent(ct, tally.Respondents, pctFmt)))
		}
		appendRow(t, nil, row...)
	}

	if opts.ShowTotals {
		var row []domain.Cell
		if showAnswer {
			row = append(row, domain.Text(HeaderTotal))
		}
		if showCount {
			row = append(row, domain.Int(tally.Respondents))
		}
		if showPct {
			row = append(row, domain.Text(formatPercent(tally.Respondents, tally.Respondents, pctFmt)))
		}
		appendRow(t, nil, row...)
	}

	if opts.ShowMean {
		m := domain.Text(formatMean(q.meanOf(tally, opts.RemoveExclusions), meanFmt))
		var row []domain.Cell
		if showAnswer {
			row = append(row, domain.Text(HeaderMean))
		}
		if showCount {
			row = append(row, m)
		}
		if showPct {
			if showCount {
				row = append(row, domain.Text(""))
			} else {
				row = append(row, m)
			}
		}
		appendRow(t, nil, row...)
	}

	return t, nil
}

// CompareGroups reports whether the question's codes differ significantly
// between groups. See compareMeans for the choice of test.
func (q *SingleAnswerQuestion) CompareGroups(groups []dataset.Group, level float64) (bool, error) {
	samples := make([][]float64, len(groups))
	for i, g := range groups {
		col, err := g.Data.Column(q.variable)
		if err != nil {
			return false, fmt.Errorf("compare groups for %s: %w", q.label, err)
		}
		samples[i] = dataset.DropMissing(col)
	}
	return compareMeans(samples, level), nil
}

// CutBy builds one row per group holding the group's answer percentages, plus
// the group mean when ShowMean is set. Rows are keyed (axis label, group label)
// and columns (question label, answer). When the mean is shown and the groups
// differ significantly the last column is marked.
func (q *SingleAnswerQuestion) CutBy(groups []dataset.Group, labels GroupLabels, opts CutOptions) (*domain.Table, error) {
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
	for _, answer := range q.Choices(opts.RemoveExclusions, opts.ShowMean) {
		t.AddColumn(domain.Key{questionLabel, answer})
	}
	if opts.ShowMean {
		t.AddColumn(domain.Key{questionLabel, HeaderMean})
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

	if opts.ShowMean && len(t.Columns) > 0 {
		significant, err := q.CompareGroups(groups, opts.SignificanceLevel)
		if err != nil {
			return nil, err
		}
		if significant {
			t.SuffixColumn(len(t.Columns)-1, SignificanceMarker)
		}
	}
	return t, nil
}

// CutByQuestion cross-tabulates the question by the answers to other, which
// must be a single-answer question
func (q *SingleAnswerQuestion) CutByQuestion(other Question, ds *dataset.Dataset, opts CutOptions) (*domain.Table, error) {
	groups, labels, axis, err := groupsByQuestion(other, ds, opts.RemoveExclusions)
	if err != nil {
		return nil, err
	}
	if opts.AxisLabel == "" {
		opts.AxisLabel = axis
	}
	return q.CutBy(groups, labels, opts)
}

func (q *SingleAnswerQuestion) sameChoices(other Question) bool {
	o, ok := other.(*SingleAnswerQuestion)
	return ok && q.choices.Equal(o.choices)
}

func (q *SingleAnswerQuestion) setMatrix(label string) {
	q.matrix = label
}
