package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"surveycli/internal/exporter"
	"surveycli/internal/middleware"
	"surveycli/internal/services"
	"surveycli/internal/validation"
	api "surveycli/pkg/contracts/api/v1"
	"surveycli/pkg/contracts/domain"
)

// tableFlags override the configured table options for one command
type tableFlags struct {
	percentFormat  string
	meanFormat     string
	keepExclusions bool
	noTotals       bool
	noMean         bool
	level          float64
	axisLabel      string
	title          string
	out            string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.percentFormat, "percent-format", "", "format for percentages, e.g. .1%")
	fs.StringVar(&f.meanFormat, "mean-format", "", "format for means, e.g. .2f")
	fs.BoolVar(&f.keepExclusions, "keep-exclusions", false, "keep excluded answers such as \"Don't know\"")
	fs.BoolVar(&f.noTotals, "no-totals", false, "omit the Total row")
	fs.BoolVar(&f.noMean, "no-mean", false, "omit the Mean row")
	fs.Float64Var(&f.level, "level", 0, "significance level for cut-by tests (default from config)")
	fs.StringVar(&f.axisLabel, "axis-label", "", "label for the cut-by axis (default the question text)")
	fs.StringVar(&f.title, "title", "", "table or report title")
	fs.StringVar(&f.out, "out", "", "write to this .csv or .xlsx file instead of the terminal")
}

// options returns the overrides for the flags set on the command line
func (f *tableFlags) options(cmd *cobra.Command) api.TableOptionsRequest {
	fs := cmd.Flags()
	var req api.TableOptionsRequest
	req.PercentFormat = f.percentFormat
	req.MeanFormat = f.meanFormat
	req.AxisLabel = f.axisLabel
	if fs.Changed("keep-exclusions") {
		req.RemoveExclusions = boolPtr(!f.keepExclusions)
	}
	if fs.Changed("no-totals") {
		req.ShowTotals = boolPtr(!f.noTotals)
	}
	if fs.Changed("no-mean") {
		req.ShowMean = boolPtr(!f.noMean)
	}
	if fs.Changed("level") {
		level := f.level
		req.SignificanceLevel = &level
	}
	return req
}

func boolPtr(b bool) *bool { return &b }

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "List the questions and matrices of the codebook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			s.renderer.Codebook(s.service.ListQuestions(cmd.Context()))
			return nil
		},
	}
}

func newFreqCmd(opts *rootOptions) *cobra.Command {
	flags := &tableFlags{}
	cmd := &cobra.Command{
		Use:   "freq <question>",
		Short: "Frequency table of a question",
		Args:  exactArgs("question"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd, opts, flags, api.TableRequest{Question: args[0]})
		},
	}
	flags.register(cmd)
	return cmd
}

func newCutCmd(opts *rootOptions) *cobra.Command {
	flags := &tableFlags{}
	cmd := &cobra.Command{
		Use:   "cut <question> <by>",
		Short: "Cross-tabulate a question by a single-answer question",
		Long: `cut splits respondents by their answer to <by> and tabulates <question>
within each group. Groups that differ significantly from the others are
marked with an asterisk.`,
		Args: exactArgs("question", "by"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd, opts, flags, api.TableRequest{Question: args[0], CutBy: args[1]})
		},
	}
	flags.register(cmd)
	return cmd
}

func newMatrixCmd(opts *rootOptions) *cobra.Command {
	flags := &tableFlags{}
	var show, by string
	cmd := &cobra.Command{
		Use:   "matrix <id>",
		Short: "Summary table of a matrix, optionally cut by a single-answer question",
		Args:  exactArgs("id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd, opts, flags, api.TableRequest{Matrix: args[0], Show: show, CutBy: by})
		},
	}
	cmd.Flags().StringVar(&show, "show", "", "ct, pct, pct_respondents or pct_responses (default ct)")
	cmd.Flags().StringVar(&by, "by", "", "single-answer question to cut the matrix by")
	flags.register(cmd)
	return cmd
}

func runTable(cmd *cobra.Command, opts *rootOptions, flags *tableFlags, req api.TableRequest) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	settings, err := s.service.Settings(flags.options(cmd))
	if err != nil {
		return err
	}

	req.Title = flags.title
	t, err := s.service.Table(cmd.Context(), req, settings)
	if err != nil {
		return err
	}
	return s.emit(cmd, flags.out, settings, []*domain.Table{t})
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	flags := &tableFlags{}
	var requestPath string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the codebook's report, or the report described by --request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			req := s.service.DeclaredReport()
			if requestPath != "" {
				if req, err = readReportRequest(requestPath); err != nil {
					return err
				}
			} else if len(req.Tables) == 0 {
				return fmt.Errorf("the codebook declares no report; pass --request")
			}
			mergeOptions(&req.Options, flags.options(cmd))
			if flags.title != "" {
				req.Title = flags.title
			}

			settings, err := s.service.Settings(req.Options)
			if err != nil {
				return err
			}
			tables, err := s.service.BuildReport(cmd.Context(), req)
			if err != nil {
				return err
			}
			return s.emit(cmd, flags.out, settings, tables)
		},
	}
	cmd.Flags().StringVar(&requestPath, "request", "", "JSON report request, as accepted by POST /api/report")
	flags.register(cmd)
	return cmd
}

// readReportRequest reads and validates a JSON report request
func readReportRequest(path string) (api.ReportRequest, error) {
	var req api.ReportRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read report request: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("invalid report request %s: %w", path, err)
	}
	if err := middleware.NewValidator().ValidateStruct(&req); err != nil {
		return req, err
	}
	return req, nil
}

// mergeOptions applies the set fields of flags on top of dst
func mergeOptions(dst *api.TableOptionsRequest, flags api.TableOptionsRequest) {
	if flags.PercentFormat != "" {
		dst.PercentFormat = flags.PercentFormat
	}
	if flags.MeanFormat != "" {
		dst.MeanFormat = flags.MeanFormat
	}
	if flags.AxisLabel != "" {
		dst.AxisLabel = flags.AxisLabel
	}
	if flags.RemoveExclusions != nil {
		dst.RemoveExclusions = flags.RemoveExclusions
	}
	if flags.ShowTotals != nil {
		dst.ShowTotals = flags.ShowTotals
	}
	if flags.ShowMean != nil {
		dst.ShowMean = flags.ShowMean
	}
	if flags.SignificanceLevel != nil {
		dst.SignificanceLevel = flags.SignificanceLevel
	}
}

// emit prints tables to the terminal, or writes them to out. Relative output
// paths are taken relative to the working directory.
func (s *session) emit(cmd *cobra.Command, out string, settings services.TableSettings, tables []*domain.Table) error {
	if out == "" {
		for i, t := range tables {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			s.renderer.Table(t, settings.SignificanceLevel)
		}
		return nil
	}

	path, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	format, err := validation.NewFileValidator(s.logger).ValidateOutputFile(path)
	if err != nil {
		return err
	}
	switch format {
	case validation.FormatCSV:
		err = exporter.NewCSVWriter(nil).WriteTables(path, tables, exporter.WriteOptions{BOMPrefix: true})
	default:
		err = exporter.NewXLSXWriter().Save(path, tables)
	}
	if err != nil {
		return err
	}
	s.renderer.Infof("wrote %d table(s) to %s", len(tables), path)
	return nil
}
