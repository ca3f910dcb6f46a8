// Package survey models survey questions and tabulates their responses.
//
// A question is either single-answer (one variable holding a coded value) or
// multi-answer (one presence variable per choice). Both variants implement
// Question and produce the same kinds of tables:
//
//	FrequencyTable  counts and percentages per choice, with optional totals and mean
//	CutBy           one row per group of respondents, significance-annotated
//	CutByQuestion   CutBy with groups formed by a single-answer grouping question
//
// Structurally identical questions can be combined into a Matrix, whose tables
// stack the tables of its children.
//
// Questions and matrices are read-only after construction and never modify the
// dataset they tabulate. Exclusion recoding always happens on a working copy,
// so a question or matrix can be tabulated from several goroutines at once.
//
// Example usage:
//
//	q, err := survey.NewSingleAnswerQuestion("Do you agree?", "q1", "q1",
//		survey.Choices{{Label: "Yes", Value: 1}, {Label: "No", Value: 2}})
//	if err != nil {
//		return err
//	}
//	table, err := q.FrequencyTable(ds, survey.FrequencyOptions{Options: survey.DefaultOptions()})
package survey
