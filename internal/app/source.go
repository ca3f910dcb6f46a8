package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"surveycli/internal/codebook"
	"surveycli/internal/config"
	"surveycli/internal/dataset"
	apperrors "surveycli/internal/errors"
	"surveycli/internal/validation"
)

// Source names a codebook and the response data it describes. Data comes from
// File (csv, xlsx) or from Table in the DuckDB database DuckDB.
type Source struct {
	Codebook string
	File     string
	Sheet    string
	DuckDB   string
	Table    string
}

// SourceFromConfig returns the data section of cfg as a Source
func SourceFromConfig(cfg *config.Config) Source {
	return Source{
		Codebook: cfg.Data.Codebook,
		File:     cfg.Data.File,
		Sheet:    cfg.Data.Sheet,
		DuckDB:   cfg.Data.DuckDB,
		Table:    cfg.Data.Table,
	}
}

// Load reads the codebook and the response data. Codebook variables missing
// from the data are logged; tables that need them fail when requested.
func (s Source) Load(ctx context.Context, logger *slog.Logger) (*codebook.Codebook, *dataset.Dataset, error) {
	files := validation.NewFileValidator(logger)

	if s.Codebook == "" {
		return nil, nil, apperrors.NewConfigError("no codebook given", nil)
	}
	if err := files.ValidateCodebook(s.Codebook); err != nil {
		return nil, nil, sourceError(apperrors.NewCodebookError, "invalid codebook", err).WithContext("path", s.Codebook)
	}
	cb, err := codebook.Load(s.Codebook)
	if err != nil {
		return nil, nil, apperrors.NewCodebookError("failed to load codebook", err).
			WithContext("path", s.Codebook)
	}

	ds, err := s.loadData(ctx, files)
	if err != nil {
		return nil, nil, err
	}

	var missing []string
	for _, v := range cb.Variables() {
		if !ds.HasColumn(v) {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		logger.WarnContext(ctx, "codebook variables missing from response data",
			slog.String("codebook", s.Codebook),
			slog.String("variables", strings.Join(missing, ", ")))
	}

	logger.InfoContext(ctx, "Survey loaded",
		slog.String("codebook", s.Codebook),
		slog.Int("questions", len(cb.Questions())),
		slog.Int("matrices", len(cb.Matrices())),
		slog.Int("respondents", ds.Len()))
	return cb, ds, nil
}

func (s Source) loadData(ctx context.Context, files *validation.FileValidator) (*dataset.Dataset, error) {
	switch {
	case s.DuckDB != "" && s.File != "":
		return nil, apperrors.NewConfigError("give either a data file or a duckdb database, not both", nil)
	case s.DuckDB != "":
		if s.Table == "" {
			return nil, apperrors.NewConfigError("a duckdb source needs a table", nil)
		}
		if err := files.ValidateDatabase(s.DuckDB); err != nil {
			return nil, apperrors.NewDataError("invalid duckdb database", err).WithContext("path", s.DuckDB)
		}
		ds, err := dataset.LoadDuckDB(ctx, s.DuckDB, s.Table)
		if err != nil {
			return nil, apperrors.NewDataError("failed to load responses", err).WithContext("path", s.DuckDB)
		}
		return ds, nil
	case s.File == "":
		return nil, apperrors.NewConfigError("no response data given", nil)
	}

	format, err := files.ValidateDataFile(s.File)
	if err != nil {
		return nil, sourceError(apperrors.NewDataError, "invalid response data", err).WithContext("path", s.File)
	}

	var ds *dataset.Dataset
	switch format {
	case validation.FormatXLSX:
		ds, err = dataset.LoadXLSX(s.File, s.Sheet)
	default:
		ds, err = dataset.LoadCSV(s.File)
	}
	if err != nil {
		return nil, apperrors.NewDataError("failed to load responses", err).WithContext("path", s.File)
	}
	return ds, nil
}

// sourceError reports an unsupported file type as a configuration error and
// anything else with build
func sourceError(build func(string, error) *apperrors.AppError, message string, err error) *apperrors.AppError {
	if errors.Is(err, validation.ErrUnsupportedType) {
		return apperrors.NewConfigError(message, err)
	}
	return build(message, err)
}
