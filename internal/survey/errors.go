package survey

import "errors"

var (
	// ErrMixedQuestionTypes is returned when a matrix is built from questions of different variants
	ErrMixedQuestionTypes = errors.New("questions in a matrix must all have the same type")

	// ErrChoicesDiffer is returned when a matrix is built from questions with different choice sets
	ErrChoicesDiffer = errors.New("questions in a matrix must all have the same choices")

	// ErrEmptyMatrix is returned when a matrix is built without questions
	ErrEmptyMatrix = errors.New("matrix has no questions")

	// ErrInvalidShowMode is returned by matrix frequency tables for an unknown show value
	ErrInvalidShowMode = errors.New("invalid show mode")

	// ErrWrongQuestionType is returned when a cross-tabulation is grouped by a
	// question that is not single-answer
	ErrWrongQuestionType = errors.New("can only cut by a single-answer question")

	// ErrInconsistentChoices is returned when a question's choice definition is malformed
	ErrInconsistentChoices = errors.New("inconsistent choice definition")

	// ErrInvalidFormat is returned for an unsupported percent or mean format
	ErrInvalidFormat = errors.New("invalid number format")
)
