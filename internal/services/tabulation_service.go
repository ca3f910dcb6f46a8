package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"surveycli/internal/codebook"
	"surveycli/internal/dataset"
	apperrors "surveycli/internal/errors"
	"surveycli/internal/infrastructure"
	"surveycli/internal/survey"
	api "surveycli/pkg/contracts/api/v1"
	"surveycli/pkg/contracts/domain"
)

// TabulationConfig holds the service defaults
type TabulationConfig struct {
	Defaults          survey.Options
	SignificanceLevel float64
	ReportWorkers     int
	ReportTimeout     time.Duration
}

// TableSettings are the per-request options after overrides are applied
type TableSettings struct {
	Options           survey.Options
	SignificanceLevel float64
	AxisLabel         string
}

// TabulationService builds tables from a codebook and one response dataset.
// Both are read-only after construction, so the service is safe for
// concurrent use.
type TabulationService struct {
	codebook *codebook.Codebook
	data     *dataset.Dataset
	cfg      TabulationConfig
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewTabulationService creates a tabulation service. metrics may be nil.
func NewTabulationService(cb *codebook.Codebook, ds *dataset.Dataset, cfg TabulationConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *TabulationService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SignificanceLevel == 0 {
		cfg.SignificanceLevel = survey.DefaultSignificanceLevel
	}
	if cfg.ReportWorkers < 1 {
		cfg.ReportWorkers = 1
	}
	if cfg.Defaults == (survey.Options{}) {
		cfg.Defaults = survey.DefaultOptions()
	}

	s := &TabulationService{
		codebook: cb,
		data:     ds,
		cfg:      cfg,
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.MeterName),
		logger:   infrastructure.WithComponent(logger, "tabulation_service"),
	}

	if metrics != nil {
		metrics.RespondentsLoaded.Record(context.Background(), int64(ds.Len()))
	}
	logger.Info("TabulationService initialized",
		slog.Int("questions", len(cb.Questions())),
		slog.Int("matrices", len(cb.Matrices())),
		slog.Int("respondents", ds.Len()))
	return s
}

// Respondents returns the number of rows in the dataset
func (s *TabulationService) Respondents() int {
	return s.data.Len()
}

// Settings merges request overrides onto the configured defaults
func (s *TabulationService) Settings(req api.TableOptionsRequest) (TableSettings, error) {
	out := TableSettings{
		Options:           s.cfg.Defaults,
		SignificanceLevel: s.cfg.SignificanceLevel,
		AxisLabel:         req.AxisLabel,
	}
	if req.PercentFormat != "" {
		out.Options.PercentFormat = req.PercentFormat
	}
	if req.MeanFormat != "" {
		out.Options.MeanFormat = req.MeanFormat
	}
	if req.RemoveExclusions != nil {
		out.Options.RemoveExclusions = *req.RemoveExclusions
	}
	if req.ShowTotals != nil {
		out.Options.ShowTotals = *req.ShowTotals
	}
	if req.ShowMean != nil {
		out.Options.ShowMean = *req.ShowMean
	}
	if req.SignificanceLevel != nil {
		out.SignificanceLevel = *req.SignificanceLevel
	}

	if err := out.Options.Validate(); err != nil {
		return out, err
	}
	if out.SignificanceLevel <= 0 || out.SignificanceLevel >= 1 {
		return out, apperrors.ErrValidation("significance_level", "must be between 0 and 1")
	}
	return out, nil
}

func (s TableSettings) cut() survey.CutOptions {
	return survey.CutOptions{
		Options:           s.Options,
		AxisLabel:         s.AxisLabel,
		SignificanceLevel: s.SignificanceLevel,
	}
}

// Frequency builds the frequency table of a standalone or matrix child question
func (s *TabulationService) Frequency(ctx context.Context, id string, settings TableSettings) (*domain.Table, error) {
	return s.tabulate(ctx, "frequency", attribute.String("question", id), func() (*domain.Table, error) {
		q, err := s.codebook.Question(id)
		if err != nil {
			return nil, err
		}
		t, err := q.FrequencyTable(s.data, survey.FrequencyOptions{Options: settings.Options})
		if err != nil {
			return nil, err
		}
		t.Title = q.Text()
		return t, nil
	})
}

// CrossTab cuts question id by the single-answer question by
func (s *TabulationService) CrossTab(ctx context.Context, id, by string, settings TableSettings) (*domain.Table, error) {
	return s.tabulate(ctx, "cut", attribute.String("question", id), func() (*domain.Table, error) {
		q, err := s.codebook.Question(id)
		if err != nil {
			return nil, err
		}
		other, err := s.codebook.Question(by)
		if err != nil {
			return nil, err
		}
		t, err := q.CutByQuestion(other, s.data, settings.cut())
		if err != nil {
			return nil, err
		}
		t.Title = fmt.Sprintf("%s by %s", q.Text(), other.Text())
		return t, nil
	})
}

// MatrixFrequency stacks the children of matrix id. An empty show defaults to counts.
func (s *TabulationService) MatrixFrequency(ctx context.Context, id string, show survey.ShowMode, settings TableSettings) (*domain.Table, error) {
	if show == "" {
		show = survey.ShowCount
	}
	return s.tabulate(ctx, "matrix_frequency", attribute.String("matrix", id), func() (*domain.Table, error) {
		m, err := s.codebook.Matrix(id)
		if err != nil {
			return nil, err
		}
		t, err := m.FrequencyTable(s.data, show, settings.Options)
		if err != nil {
			return nil, err
		}
		t.Title = m.Text()
		return t, nil
	})
}

// MatrixCrossTab cuts every child of matrix id by the question by
func (s *TabulationService) MatrixCrossTab(ctx context.Context, id, by string, settings TableSettings) (*domain.Table, error) {
	return s.tabulate(ctx, "matrix_cut", attribute.String("matrix", id), func() (*domain.Table, error) {
		m, err := s.codebook.Matrix(id)
		if err != nil {
			return nil, err
		}
		other, err := s.codebook.Question(by)
		if err != nil {
			return nil, err
		}
		t, err := m.CutByQuestion(other, s.data, settings.cut())
		if err != nil {
			return nil, err
		}
		t.Title = fmt.Sprintf("%s by %s", m.Text(), other.Text())
		return t, nil
	})
}

// Table dispatches a table request to the matching builder
func (s *TabulationService) Table(ctx context.Context, req api.TableRequest, settings TableSettings) (*domain.Table, error) {
	if err := s.codebook.CheckRequest(req); err != nil {
		return nil, err
	}

	var (
		t   *domain.Table
		err error
	)
	switch {
	case req.Question != "" && req.CutBy != "":
		t, err = s.CrossTab(ctx, req.Question, req.CutBy, settings)
	case req.Question != "":
		t, err = s.Frequency(ctx, req.Question, settings)
	case req.CutBy != "":
		t, err = s.MatrixCrossTab(ctx, req.Matrix, req.CutBy, settings)
	default:
		t, err = s.MatrixFrequency(ctx, req.Matrix, survey.ShowMode(req.Show), settings)
	}
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		t.Title = req.Title
	}
	return t, nil
}

// BuildReport computes every table of req concurrently. Tables come back in
// request order; the first failure cancels the rest.
func (s *TabulationService) BuildReport(ctx context.Context, req api.ReportRequest) ([]*domain.Table, error) {
	settings, err := s.Settings(req.Options)
	if err != nil {
		return nil, err
	}
	if len(req.Tables) == 0 {
		return nil, apperrors.ErrValidation("tables", "at least one table is required")
	}

	if s.cfg.ReportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ReportTimeout)
		defer cancel()
	}
	ctx, span := s.tracer.Start(ctx, "tabulation.report",
		trace.WithAttributes(attribute.Int("report.tables", len(req.Tables))))
	defer span.End()

	start := time.Now()
	tables := make([]*domain.Table, len(req.Tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ReportWorkers)

	for i, tr := range req.Tables {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := s.Table(gctx, tr, settings)
			if err != nil {
				return fmt.Errorf("table %d (%s): %w", i+1, describe(tr), err)
			}
			tables[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "report failed", slog.String("error", err.Error()))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReportsBuilt.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "report built",
		slog.String("title", req.Title),
		slog.Int("tables", len(tables)),
		slog.Duration("duration", time.Since(start)))
	return tables, nil
}

// DeclaredReport returns the report section of the codebook as a request.
// Tables is empty when the codebook declares none.
func (s *TabulationService) DeclaredReport() api.ReportRequest {
	return api.ReportRequest{Title: s.codebook.Title, Tables: s.codebook.Report}
}

// DefaultReport builds the report the codebook declares
func (s *TabulationService) DefaultReport(ctx context.Context) ([]*domain.Table, error) {
	req := s.DeclaredReport()
	if len(req.Tables) == 0 {
		return nil, apperrors.NewNotFoundError("codebook report")
	}
	return s.BuildReport(ctx, req)
}

// ListQuestions summarizes the codebook
func (s *TabulationService) ListQuestions(ctx context.Context) api.CodebookResponse {
	resp := api.CodebookResponse{
		Title:       s.codebook.Title,
		Respondents: s.data.Len(),
		Questions:   []api.QuestionSummary{},
		Matrices:    []api.MatrixSummary{},
	}
	for _, q := range s.codebook.Questions() {
		resp.Questions = append(resp.Questions, api.QuestionSummary{
			ID:        q.Label(),
			Text:      q.Text(),
			Type:      q.Variant().String(),
			Variables: q.VariableNames(),
			Answers:   q.AnswerSummary(),
			Matrix:    q.Matrix(),
		})
	}
	for _, m := range s.codebook.Matrices() {
		children := make([]string, 0, len(m.Questions()))
		for _, q := range m.Questions() {
			children = append(children, q.Label())
		}
		resp.Matrices = append(resp.Matrices, api.MatrixSummary{
			ID:        m.Label(),
			Text:      m.Text(),
			Type:      m.Variant().String(),
			Questions: children,
			Answers:   m.AnswerSummary(),
		})
	}
	return resp
}

// tabulate wraps one table build with a span, metrics and logging
func (s *TabulationService) tabulate(ctx context.Context, kind string, subject attribute.KeyValue, build func() (*domain.Table, error)) (*domain.Table, error) {
	ctx, span := s.tracer.Start(ctx, "tabulation."+kind, trace.WithAttributes(subject))
	defer span.End()

	start := time.Now()
	t, err := build()
	duration := time.Since(start)
	infrastructure.RecordTabulation(ctx, s.metrics, kind, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.DebugContext(ctx, "tabulation failed",
			slog.String("kind", kind),
			slog.String(string(subject.Key), subject.Value.AsString()),
			slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.Int("table.rows", t.NumRows()), attribute.Int("table.columns", t.NumColumns()))
	s.logger.DebugContext(ctx, "table generated",
		slog.String("kind", kind),
		slog.String(string(subject.Key), subject.Value.AsString()),
		slog.Duration("duration", duration))
	return t, nil
}

func describe(req api.TableRequest) string {
	id := req.Question
	if id == "" {
		id = "matrix " + req.Matrix
	}
	if req.CutBy != "" {
		id += " by " + req.CutBy
	}
	return id
}
