package survey

import (
	"fmt"

	"surveycli/internal/dataset"
)

// GroupLabels maps group keys (response codes of the grouping variable) to display labels
type GroupLabels map[float64]string

// Label returns the label for key, or the code itself when it has none
func (l GroupLabels) Label(key float64) string {
	if s, ok := l[key]; ok {
		return s
	}
	return formatCode(key)
}

// groupsByQuestion partitions ds by the answers to other. With removeExclusions
// the excluded codes of other are recoded to missing first, which drops those
// respondents from every group.
func groupsByQuestion(other Question, ds *dataset.Dataset, removeExclusions bool) ([]dataset.Group, GroupLabels, string, error) {
	by, ok := other.(*SingleAnswerQuestion)
	if !ok || by == nil {
		return nil, nil, "", wrongQuestionType(other)
	}

	work := ds
	if codes := by.choices.ExcludedValues(); removeExclusions && len(codes) > 0 {
		var err error
		work, err = ds.WithMissing(by.variable, codes...)
		if err != nil {
			return nil, nil, "", fmt.Errorf("group by %s: %w", by.label, err)
		}
	}

	groups, err := work.GroupBy(by.variable)
	if err != nil {
		return nil, nil, "", fmt.Errorf("group by %s: %w", by.label, err)
	}

	labels := make(GroupLabels, len(by.choices))
	for _, ch := range by.choices {
		labels[ch.Value] = ch.Label
	}
	return groups, labels, by.text, nil
}

func wrongQuestionType(q Question) error {
	if q == nil {
		return fmt.Errorf("%w: no grouping question", ErrWrongQuestionType)
	}
	return fmt.Errorf("%w: %s is a %s-answer question", ErrWrongQuestionType, q.Label(), q.Variant())
}
