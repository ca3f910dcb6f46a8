// Package codebook reads survey metadata from YAML and builds the questions
// and matrices that tabulate it.
//
// A codebook looks like:
//
//	title: Customer survey 2024
//	questions:
//	  - id: agree
//	    text: Do you agree?
//	    type: single
//	    variable: q1
//	    choices:
//	      - {label: "Yes", value: 1}
//	      - {label: "No", value: 2}
//	      - {label: "Don't know", value: 9, exclude: true}
//	  - id: contact
//	    text: How can we contact you?
//	    type: multi
//	    choices:
//	      - {label: Email, variable: q5_1}
//	      - {label: Phone, variable: q5_2}
//	matrices:
//	  - id: grid
//	    text: How much do you agree?
//	    questions: [agree, agree2]
//	report:
//	  - question: agree
//	  - question: agree
//	    cut_by: region
//	  - matrix: grid
//	    show: pct
package codebook

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v2"

	"surveycli/internal/survey"
	api "surveycli/pkg/contracts/api/v1"
)

// File is the YAML representation of a codebook
type File struct {
	Title     string             `yaml:"title"`
	Questions []QuestionDef      `yaml:"questions" validate:"required,min=1,dive"`
	Matrices  []MatrixDef        `yaml:"matrices" validate:"dive"`
	Report    []api.TableRequest `yaml:"report" validate:"dive"`
}

// QuestionDef defines one question
type QuestionDef struct {
	ID       string      `yaml:"id" validate:"required,identifier"`
	Text     string      `yaml:"text" validate:"required"`
	Type     string      `yaml:"type" validate:"required,oneof=single multi"`
	Variable string      `yaml:"variable" validate:"required_if=Type single,excluded_if=Type multi"`
	Choices  []ChoiceDef `yaml:"choices" validate:"required,min=1,dive"`
}

// ChoiceDef defines one answer option. Single-answer choices carry a value and
// multi-answer choices a variable.
type ChoiceDef struct {
	Label    string   `yaml:"label" validate:"required"`
	Value    *float64 `yaml:"value"`
	Variable string   `yaml:"variable"`
	Exclude  bool     `yaml:"exclude"`
}

// MatrixDef groups questions into a matrix
type MatrixDef struct {
	ID        string   `yaml:"id" validate:"required,identifier"`
	Text      string   `yaml:"text" validate:"required"`
	Questions []string `yaml:"questions" validate:"required,min=1,dive,required"`
}

// Codebook holds the built questions and matrices
type Codebook struct {
	Title  string
	Report []api.TableRequest

	questions     map[string]survey.Question
	questionOrder []string
	matrices      map[string]survey.Matrix
	matrixOrder   []string
}

// Load reads and builds the codebook at path
func Load(path string) (*Codebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read codebook: %w", err)
	}
	cb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("codebook %s: %w", path, err)
	}
	return cb, nil
}

// Parse builds a codebook from YAML
func Parse(data []byte) (*Codebook, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := Validate(&f); err != nil {
		return nil, err
	}
	return Build(&f)
}

// Build turns a validated File into survey questions and matrices
func Build(f *File) (*Codebook, error) {
	cb := &Codebook{
		Title:     f.Title,
		Report:    f.Report,
		questions: make(map[string]survey.Question, len(f.Questions)),
		matrices:  make(map[string]survey.Matrix, len(f.Matrices)),
	}

	for _, def := range f.Questions {
		if _, dup := cb.questions[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalid, def.ID)
		}
		q, err := buildQuestion(def)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", def.ID, err)
		}
		cb.questions[def.ID] = q
		cb.questionOrder = append(cb.questionOrder, def.ID)
	}

	for _, def := range f.Matrices {
		if _, dup := cb.matrices[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate matrix id %q", ErrInvalid, def.ID)
		}
		m, err := cb.buildMatrix(def)
		if err != nil {
			return nil, err
		}
		cb.matrices[def.ID] = m
		cb.matrixOrder = append(cb.matrixOrder, def.ID)
	}

	for i, req := range f.Report {
		if err := cb.CheckRequest(req); err != nil {
			return nil, fmt.Errorf("report table %d: %w", i+1, err)
		}
	}
	return cb, nil
}

func buildQuestion(def QuestionDef) (survey.Question, error) {
	switch def.Type {
	case "single":
		choices := make(survey.Choices, len(def.Choices))
		for i, c := range def.Choices {
			if c.Value == nil {
				return nil, fmt.Errorf("%w: choice %q has no value", ErrInvalid, c.Label)
			}
			choices[i] = survey.Choice{Label: c.Label, Value: *c.Value, Excluded: c.Exclude}
		}
		return survey.NewSingleAnswerQuestion(def.Text, def.ID, def.Variable, choices)
	case "multi":
		choices := make(survey.MultiChoices, len(def.Choices))
		for i, c := range def.Choices {
			if c.Variable == "" {
				return nil, fmt.Errorf("%w: choice %q has no variable", ErrInvalid, c.Label)
			}
			choices[i] = survey.MultiChoice{Label: c.Label, Variable: c.Variable, Excluded: c.Exclude}
		}
		return survey.NewMultiAnswerQuestion(def.Text, def.ID, choices)
	default:
		return nil, fmt.Errorf("%w: unknown question type %q", ErrInvalid, def.Type)
	}
}

func (cb *Codebook) buildMatrix(def MatrixDef) (survey.Matrix, error) {
	questions := make([]survey.Question, len(def.Questions))
	for i, id := range def.Questions {
		q, ok := cb.questions[id]
		if !ok {
			return nil, fmt.Errorf("matrix %q: %w: question %q", def.ID, ErrUnknownQuestion, id)
		}
		if owner := q.Matrix(); owner != "" {
			return nil, fmt.Errorf("%w: question %q is already in matrix %q", ErrInvalid, id, owner)
		}
		questions[i] = q
	}
	return survey.NewMatrix(def.Text, def.ID, questions)
}

// Question returns the question with the given id
func (cb *Codebook) Question(id string) (survey.Question, error) {
	q, ok := cb.questions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}
	return q, nil
}

// Matrix returns the matrix with the given id
func (cb *Codebook) Matrix(id string) (survey.Matrix, error) {
	m, ok := cb.matrices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMatrix, id)
	}
	return m, nil
}

// Questions returns every question in codebook order
func (cb *Codebook) Questions() []survey.Question {
	out := make([]survey.Question, len(cb.questionOrder))
	for i, id := range cb.questionOrder {
		out[i] = cb.questions[id]
	}
	return out
}

// Matrices returns every matrix in codebook order
func (cb *Codebook) Matrices() []survey.Matrix {
	out := make([]survey.Matrix, len(cb.matrixOrder))
	for i, id := range cb.matrixOrder {
		out[i] = cb.matrices[id]
	}
	return out
}

// Variables returns every variable referenced by the codebook, sorted
func (cb *Codebook) Variables() []string {
	seen := make(map[string]struct{})
	for _, q := range cb.questions {
		for _, v := range q.VariableNames() {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// CheckRequest verifies that a table request names existing questions and a
// single-answer grouping question
func (cb *Codebook) CheckRequest(req api.TableRequest) error {
	switch {
	case req.Question != "":
		if _, err := cb.Question(req.Question); err != nil {
			return err
		}
		if req.Show != "" {
			return fmt.Errorf("%w: show applies to matrices only", ErrInvalid)
		}
	case req.Matrix != "":
		m, err := cb.Matrix(req.Matrix)
		if err != nil {
			return err
		}
		if req.Show != "" && !slices.Contains(survey.ShowModes(m.Variant()), survey.ShowMode(req.Show)) {
			return fmt.Errorf("%w %q for %s-answer matrix %q", survey.ErrInvalidShowMode, req.Show, m.Variant(), req.Matrix)
		}
	default:
		return fmt.Errorf("%w: table names neither a question nor a matrix", ErrInvalid)
	}

	if req.CutBy == "" {
		return nil
	}
	by, err := cb.Question(req.CutBy)
	if err != nil {
		return err
	}
	if by.Variant() != survey.SingleAnswer {
		return fmt.Errorf("%w: %q", survey.ErrWrongQuestionType, req.CutBy)
	}
	return nil
}
