package survey

import "fmt"

// Default formats and significance level
const (
	DefaultPercentFormat     = ".0%"
	DefaultMeanFormat        = ".1f"
	DefaultSignificanceLevel = 0.05
)

// Table labels
const (
	HeaderAnswer                 = "Answer"
	HeaderCount                  = "Count"
	HeaderPercent                = "%"
	HeaderPercentRespondents     = "% of respondents"
	HeaderPercentResponses       = "% of responses"
	HeaderTotal                  = "Total"
	HeaderMean                   = "Mean"
	HeaderMatrixTotalRespondents = "Total Respondents"
	LabelTotalRespondents        = "Total respondents"

	// Placeholder rendered when a percentage or mean has no denominator
	Placeholder = "-"

	// SignificanceMarker is appended to column labels that differ significantly between groups
	SignificanceMarker = "*"
)

// Options controls how tables are computed and rendered
type Options struct {
	// PercentFormat renders percentages, e.g. ".0%" renders 0.666 as "67%"
	PercentFormat string `json:"percent_format"`
	// MeanFormat renders means, e.g. ".1f" renders 1.333 as "1.3"
	MeanFormat       string `json:"mean_format"`
	RemoveExclusions bool   `json:"remove_exclusions"`
	ShowTotals       bool   `json:"show_totals"`
	// ShowMean only applies to single-answer questions
	ShowMean bool `json:"show_mean"`
}

// DefaultOptions returns the standard table options
func DefaultOptions() Options {
	return Options{
		PercentFormat:    DefaultPercentFormat,
		MeanFormat:       DefaultMeanFormat,
		RemoveExclusions: true,
		ShowTotals:       true,
		ShowMean:         true,
	}
}

// Validate checks both format specs
func (o Options) Validate() error {
	if err := ValidateFormat(o.PercentFormat); err != nil {
		return fmt.Errorf("percent format: %w", err)
	}
	if err := ValidateFormat(o.MeanFormat); err != nil {
		return fmt.Errorf("mean format: %w", err)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.PercentFormat == "" {
		o.PercentFormat = DefaultPercentFormat
	}
	if o.MeanFormat == "" {
		o.MeanFormat = DefaultMeanFormat
	}
	return o
}

// Column selects a frequency table column
type Column uint8

const (
	ColumnAnswer Column = 1 << iota
	ColumnCount
	// ColumnPercent is "%" for single-answer and "% of respondents" for multi-answer questions
	ColumnPercent
	// ColumnPercentResponses is only produced by multi-answer questions
	ColumnPercentResponses

	DefaultColumns = ColumnAnswer | ColumnCount | ColumnPercent
)

// Has reports whether c includes col
func (c Column) Has(col Column) bool {
	return c&col != 0
}

// FrequencyOptions configures a frequency table. Zero Columns means DefaultColumns.
type FrequencyOptions struct {
	Options
	Columns Column
}

func (o FrequencyOptions) normalize() (FrequencyOptions, error) {
	o.Options = o.Options.withDefaults()
	if o.Columns == 0 {
		o.Columns = DefaultColumns
	}
	return o, o.Validate()
}

// CutOptions configures a cross-tabulation
type CutOptions struct {
	Options

	// AxisLabel is the top-level row label. CutByQuestion defaults it to the
	// grouping question's text.
	AxisLabel string
	// QuestionLabel is the top-level column label, defaulting to the question text
	QuestionLabel string
	// QuestionLabels overrides QuestionLabel per child when cutting a matrix
	QuestionLabels []string
	// SignificanceLevel defaults to DefaultSignificanceLevel
	SignificanceLevel float64
}

func (o CutOptions) normalize() (CutOptions, error) {
	o.Options = o.Options.withDefaults()
	if o.SignificanceLevel == 0 {
		o.SignificanceLevel = DefaultSignificanceLevel
	}
	if o.SignificanceLevel < 0 || o.SignificanceLevel >= 1 {
		return o, fmt.Errorf("significance level %v outside (0,1)", o.SignificanceLevel)
	}
	return o, o.Validate()
}

// ShowMode selects the statistic shown in a matrix frequency table
type ShowMode string

const (
	ShowCount              ShowMode = "ct"
	ShowPercent            ShowMode = "pct"
	ShowPercentRespondents ShowMode = "pct_respondents"
	ShowPercentResponses   ShowMode = "pct_responses"
)
