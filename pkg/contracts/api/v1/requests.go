// Package api contains the HTTP API contracts of the survey tabulation service.
// Version v1 represents the current stable API version.
package api

import (
	"time"

	"surveycli/pkg/contracts/domain"
)

// TableRequest names one table: a frequency table of a question or matrix, or,
// when CutBy is set, its cross-tabulation by a single-answer question.
// It is used both in codebook report sections and in report requests.
type TableRequest struct {
	Question string `json:"question,omitempty" yaml:"question" validate:"required_without=Matrix,excluded_with=Matrix"`
	Matrix   string `json:"matrix,omitempty" yaml:"matrix" validate:"required_without=Question"`
	CutBy    string `json:"cut_by,omitempty" yaml:"cut_by"`
	Show     string `json:"show,omitempty" yaml:"show" validate:"omitempty,oneof=ct pct pct_respondents pct_responses"`
	Title    string `json:"title,omitempty" yaml:"title"`
}

// TableOptionsRequest overrides the configured table options. Nil fields keep
// the configured defaults.
type TableOptionsRequest struct {
	PercentFormat     string   `json:"percent_format,omitempty" query:"percent_format"`
	MeanFormat        string   `json:"mean_format,omitempty" query:"mean_format"`
	RemoveExclusions  *bool    `json:"remove_exclusions,omitempty" query:"remove_exclusions"`
	ShowTotals        *bool    `json:"show_totals,omitempty" query:"show_totals"`
	ShowMean          *bool    `json:"show_mean,omitempty" query:"show_mean"`
	SignificanceLevel *float64 `json:"significance_level,omitempty" query:"significance_level" validate:"omitempty,gt=0,lt=1"`
	AxisLabel         string   `json:"axis_label,omitempty" query:"axis_label"`
}

// ReportRequest asks for several tables rendered into one workbook
type ReportRequest struct {
	Title   string              `json:"title,omitempty"`
	Tables  []TableRequest      `json:"tables" validate:"required,min=1,max=200,dive"`
	Options TableOptionsRequest `json:"options,omitempty"`
}

// QuestionSummary describes one codebook question
type QuestionSummary struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Type      string   `json:"type"`
	Variables []string `json:"variables"`
	Answers   string   `json:"answers"`
	Matrix    string   `json:"matrix,omitempty"`
}

// MatrixSummary describes one codebook matrix
type MatrixSummary struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Type      string   `json:"type"`
	Questions []string `json:"questions"`
	Answers   string   `json:"answers"`
}

// CodebookResponse lists every question and matrix of the loaded codebook
type CodebookResponse struct {
	Title       string            `json:"title,omitempty"`
	Respondents int               `json:"respondents"`
	Questions   []QuestionSummary `json:"questions"`
	Matrices    []MatrixSummary   `json:"matrices"`
}

// TableResponse wraps one computed table
type TableResponse struct {
	ID          string        `json:"id"`
	Table       *domain.Table `json:"table"`
	GeneratedAt time.Time     `json:"generated_at"`
}
