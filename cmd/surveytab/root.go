package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surveycli/internal/app"
	"surveycli/internal/config"
	"surveycli/internal/console"
	"surveycli/internal/infrastructure"
	"surveycli/internal/services"
	"surveycli/pkg/contracts"
)

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	codebook   string
	data       string
	sheet      string
	duckdb     string
	table      string
	logLevel   string
	noColor    bool
}

// session is what a table command needs once flags and config are resolved
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	service  *services.TabulationService
	renderer *console.Renderer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "surveytab",
		Short: "Tabulate survey responses described by a codebook",
		Long: `surveytab builds frequency tables, cross-tabulations with significance
tests and matrix summaries from survey responses. Responses are read from
CSV, XLSX or a DuckDB table; the codebook is a YAML file naming questions,
their answer choices and the matrices that group them.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default $SURVEY_CONFIG or ./surveycli.yaml)")
	pf.StringVar(&opts.codebook, "codebook", "", "codebook YAML file")
	pf.StringVar(&opts.data, "data", "", "response data file (.csv or .xlsx)")
	pf.StringVar(&opts.sheet, "sheet", "", "worksheet to read from an .xlsx data file (default first sheet)")
	pf.StringVar(&opts.duckdb, "duckdb", "", "DuckDB database holding the responses")
	pf.StringVar(&opts.table, "table", "", "table to read from the DuckDB database")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newDescribeCmd(opts),
		newFreqCmd(opts),
		newCutCmd(opts),
		newMatrixCmd(opts),
		newReportCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// loadConfig reads the config file and environment, then applies the data
// source flags on top
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.codebook != "" {
		cfg.Data.Codebook = o.codebook
	}
	switch {
	case o.duckdb != "":
		cfg.Data.DuckDB, cfg.Data.Table, cfg.Data.File = o.duckdb, o.table, ""
	case o.data != "":
		cfg.Data.File, cfg.Data.Sheet, cfg.Data.DuckDB = o.data, o.sheet, ""
	}
	return cfg, nil
}

// open loads config and survey for a table command. Diagnostics go to the
// command's stderr so table output stays clean.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger := infrastructure.NewLoggerWithWriter(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: infrastructure.ParseLogLevel(o.logLevel),
	})

	cb, ds, err := app.SourceFromConfig(cfg).Load(cmd.Context(), logger)
	if err != nil {
		return nil, err
	}

	renderer := console.NewRenderer(cmd.OutOrStdout())
	if o.noColor || color.NoColor {
		renderer.DisableColor()
	}

	return &session{
		cfg:      cfg,
		logger:   logger,
		service:  services.NewTabulationService(cb, ds, app.TabulationConfig(cfg), nil, logger),
		renderer: renderer,
	}, nil
}

// exactArgs is cobra.ExactArgs with the argument names in the message
func exactArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != len(names) {
			return fmt.Errorf("%s expects %d argument(s): %v, got %d", cmd.Name(), len(names), names, len(args))
		}
		return nil
	}
}
