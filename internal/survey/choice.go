package survey

import (
	"fmt"
	"strconv"
	"strings"
)

// Choice is one answer option of a single-answer question
type Choice struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Excluded bool    `json:"excluded,omitempty"`
}

// Choices is an ordered choice set. Order defines table order.
type Choices []Choice

// NewChoices zips parallel label, value and exclusion slices into a choice set.
// excluded may be nil, meaning no choice is excluded.
func NewChoices(labels []string, values []float64, excluded []bool) (Choices, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("%w: %d labels for %d values", ErrInconsistentChoices, len(labels), len(values))
	}
	if excluded != nil && len(excluded) != len(labels) {
		return nil, fmt.Errorf("%w: %d exclusion flags for %d choices", ErrInconsistentChoices, len(excluded), len(labels))
	}

	choices := make(Choices, len(labels))
	for i := range labels {
		choices[i] = Choice{Label: labels[i], Value: values[i]}
		if excluded != nil {
			choices[i].Excluded = excluded[i]
		}
	}
	return choices, nil
}

// Retained returns the choices kept for analysis. When removeExclusions is false
// every choice is kept.
func (c Choices) Retained(removeExclusions bool) Choices {
	out := make(Choices, 0, len(c))
	for _, ch := range c {
		if removeExclusions && ch.Excluded {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// Labels returns the choice labels in order
func (c Choices) Labels() []string {
	out := make([]string, len(c))
	for i, ch := range c {
		out[i] = ch.Label
	}
	return out
}

// Values returns the choice codes in order
func (c Choices) Values() []float64 {
	out := make([]float64, len(c))
	for i, ch := range c {
		out[i] = ch.Value
	}
	return out
}

// ExcludedValues returns the codes of the excluded choices
func (c Choices) ExcludedValues() []float64 {
	var out []float64
	for _, ch := range c {
		if ch.Excluded {
			out = append(out, ch.Value)
		}
	}
	return out
}

// Equal reports whether both sets hold the same labels, values and exclusion
// flags in the same order
func (c Choices) Equal(other Choices) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Summary renders the set as "Yes (1), No (2), Don't know (X)"
func (c Choices) Summary() string {
	parts := make([]string, len(c))
	for i, ch := range c {
		parts[i] = fmt.Sprintf("%s (%s)", ch.Label, ch.code())
	}
	return strings.Join(parts, ", ")
}

func (ch Choice) code() string {
	if ch.Excluded {
		return "X"
	}
	return formatCode(ch.Value)
}

// MultiChoice is one answer option of a multi-answer question, backed by its
// own presence variable
type MultiChoice struct {
	Label    string `json:"label"`
	Variable string `json:"variable"`
	Excluded bool   `json:"excluded,omitempty"`
}

// MultiChoices is an ordered multi-answer choice set
type MultiChoices []MultiChoice

// Retained returns the choices kept for analysis
func (c MultiChoices) Retained(removeExclusions bool) MultiChoices {
	out := make(MultiChoices, 0, len(c))
	for _, ch := range c {
		if removeExclusions && ch.Excluded {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// Labels returns the choice labels in order
func (c MultiChoices) Labels() []string {
	out := make([]string, len(c))
	for i, ch := range c {
		out[i] = ch.Label
	}
	return out
}

// Variables returns the presence variable names in order
func (c MultiChoices) Variables() []string {
	out := make([]string, len(c))
	for i, ch := range c {
		out[i] = ch.Variable
	}
	return out
}

// Equal compares labels and exclusion flags. Variables differ between the rows
// of a matrix and are ignored.
func (c MultiChoices) Equal(other MultiChoices) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i].Label != other[i].Label || c[i].Excluded != other[i].Excluded {
			return false
		}
	}
	return true
}

// Summary renders the set as "Email (q5_1), Phone (q5_2), None (X)"
func (c MultiChoices) Summary() string {
	parts := make([]string, len(c))
	for i, ch := range c {
		code := ch.Variable
		if ch.Excluded {
			code = "X"
		}
		parts[i] = fmt.Sprintf("%s (%s)", ch.Label, code)
	}
	return strings.Join(parts, ", ")
}

// formatCode renders a response code without a trailing ".0"
func formatCode(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
