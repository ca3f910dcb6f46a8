package services

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveycli/internal/codebook"
	"surveycli/internal/infrastructure"
	"surveycli/internal/shared/testutil"
	"surveycli/internal/survey"
	api "surveycli/pkg/contracts/api/v1"
	"surveycli/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, metrics *infrastructure.BusinessMetrics) *TabulationService {
	t.Helper()
	cb, ds := testutil.SurveyFixture(t)
	return NewTabulationService(cb, ds, TabulationConfig{ReportWorkers: 2}, metrics, quietLogger())
}

func defaultSettings(t *testing.T, svc *TabulationService) TableSettings {
	t.Helper()
	s, err := svc.Settings(api.TableOptionsRequest{})
	require.NoError(t, err)
	return s
}

func TestSettings(t *testing.T) {
	svc := newTestService(t, nil)
	no := false
	level := 0.01

	t.Run("defaults", func(t *testing.T) {
		s := defaultSettings(t, svc)
		assert.Equal(t, survey.DefaultOptions(), s.Options)
		assert.Equal(t, 0.05, s.SignificanceLevel)
	})

	t.Run("overrides", func(t *testing.T) {
		s, err := svc.Settings(api.TableOptionsRequest{
			PercentFormat:     ".1%",
			ShowMean:          &no,
			RemoveExclusions:  &no,
			SignificanceLevel: &level,
			AxisLabel:         "Where",
		})
		require.NoError(t, err)
		assert.Equal(t, ".1%", s.Options.PercentFormat)
		assert.Equal(t, ".1f", s.Options.MeanFormat)
		assert.False(t, s.Options.ShowMean)
		assert.False(t, s.Options.RemoveExclusions)
		assert.True(t, s.Options.ShowTotals)
		assert.Equal(t, 0.01, s.SignificanceLevel)
		assert.Equal(t, "Where", s.AxisLabel)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := svc.Settings(api.TableOptionsRequest{MeanFormat: "1dp"})
		assert.ErrorIs(t, err, survey.ErrInvalidFormat)
	})

	t.Run("invalid level", func(t *testing.T) {
		bad := 1.5
		_, err := svc.Settings(api.TableOptionsRequest{SignificanceLevel: &bad})
		assert.Error(t, err)
	})
}

func TestFrequency(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	tbl, err := svc.Frequency(ctx, "agree1", defaultSettings(t, svc))
	require.NoError(t, err)

	assert.Equal(t, "The service is fast", tbl.Title)
	// Yes, No, Total, Mean
	require.Equal(t, 4, tbl.NumRows())
	assert.Equal(t, domain.Int(2), tbl.Cell(0, 1))
	assert.Equal(t, domain.Text("50%"), tbl.Cell(0, 2))
	assert.Equal(t, domain.Int(4), tbl.Cell(2, 1))
	assert.Equal(t, domain.Text("1.5"), tbl.Cell(3, 1))

	_, err = svc.Frequency(ctx, "nope", defaultSettings(t, svc))
	assert.ErrorIs(t, err, codebook.ErrUnknownQuestion)
}

func TestCrossTab(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	settings := defaultSettings(t, svc)

	tbl, err := svc.CrossTab(ctx, "agree1", "region", settings)
	require.NoError(t, err)
	assert.Equal(t, "The service is fast by Region", tbl.Title)
	assert.Equal(t, domain.Key{"Region", "North"}, tbl.RowKey(0))

	_, err = svc.CrossTab(ctx, "agree1", "contact", settings)
	assert.ErrorIs(t, err, survey.ErrWrongQuestionType)

	_, err = svc.CrossTab(ctx, "agree1", "nope", settings)
	assert.ErrorIs(t, err, codebook.ErrUnknownQuestion)
}

func TestMatrixTables(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	settings := defaultSettings(t, svc)

	tbl, err := svc.MatrixFrequency(ctx, "service", "", settings)
	require.NoError(t, err)
	assert.Equal(t, "About our service", tbl.Title)
	assert.Equal(t, 2, tbl.NumRows())

	_, err = svc.MatrixFrequency(ctx, "service", survey.ShowPercentResponses, settings)
	assert.ErrorIs(t, err, survey.ErrInvalidShowMode)

	cut, err := svc.MatrixCrossTab(ctx, "service", "region", settings)
	require.NoError(t, err)
	assert.Equal(t, "About our service by Region", cut.Title)

	_, err = svc.MatrixFrequency(ctx, "nope", survey.ShowCount, settings)
	assert.ErrorIs(t, err, codebook.ErrUnknownMatrix)
}

func TestTableDispatch(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	settings := defaultSettings(t, svc)

	tests := []struct {
		name  string
		req   api.TableRequest
		title string
	}{
		{"frequency", api.TableRequest{Question: "agree2"}, "The service is friendly"},
		{"cut", api.TableRequest{Question: "contact", CutBy: "region"}, "How can we contact you? by Region"},
		{"matrix", api.TableRequest{Matrix: "service", Show: "pct"}, "About our service"},
		{"matrix cut", api.TableRequest{Matrix: "service", CutBy: "region"}, "About our service by Region"},
		{"custom title", api.TableRequest{Question: "region", Title: "Where they live"}, "Where they live"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := svc.Table(ctx, tt.req, settings)
			require.NoError(t, err)
			assert.Equal(t, tt.title, tbl.Title)
		})
	}

	_, err := svc.Table(ctx, api.TableRequest{Question: "agree1", CutBy: "contact"}, settings)
	assert.ErrorIs(t, err, survey.ErrWrongQuestionType)
}

func TestBuildReport(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	t.Run("keeps request order", func(t *testing.T) {
		tables, err := svc.BuildReport(ctx, api.ReportRequest{Tables: []api.TableRequest{
			{Question: "region"},
			{Question: "agree1", CutBy: "region"},
			{Matrix: "service"},
			{Question: "contact"},
		}})
		require.NoError(t, err)
		require.Len(t, tables, 4)
		assert.Equal(t, "Region", tables[0].Title)
		assert.Equal(t, "The service is fast by Region", tables[1].Title)
		assert.Equal(t, "About our service", tables[2].Title)
		assert.Equal(t, "How can we contact you?", tables[3].Title)
	})

	t.Run("one failure fails the report", func(t *testing.T) {
		_, err := svc.BuildReport(ctx, api.ReportRequest{Tables: []api.TableRequest{
			{Question: "region"},
			{Question: "missing"},
		}})
		require.ErrorIs(t, err, codebook.ErrUnknownQuestion)
		assert.Contains(t, err.Error(), "table 2 (missing)")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.BuildReport(cctx, api.ReportRequest{Tables: []api.TableRequest{{Question: "region"}}})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty report", func(t *testing.T) {
		_, err := svc.BuildReport(ctx, api.ReportRequest{})
		assert.Error(t, err)
	})

	t.Run("codebook report", func(t *testing.T) {
		tables, err := svc.DefaultReport(ctx)
		require.NoError(t, err)
		assert.Len(t, tables, 3)
	})
}

func TestListQuestions(t *testing.T) {
	svc := newTestService(t, nil)
	resp := svc.ListQuestions(context.Background())

	assert.Equal(t, "Customer survey", resp.Title)
	assert.Equal(t, 6, resp.Respondents)
	require.Len(t, resp.Questions, 4)
	assert.Equal(t, api.QuestionSummary{
		ID:        "contact",
		Text:      "How can we contact you?",
		Type:      "multi",
		Variables: []string{"q5_1", "q5_2"},
		Answers:   "Email (q5_1), Phone (q5_2)",
	}, resp.Questions[3])
	assert.Equal(t, "service", resp.Questions[0].Matrix)

	require.Len(t, resp.Matrices, 1)
	assert.Equal(t, []string{"agree1", "agree2"}, resp.Matrices[0].Questions)
	assert.Equal(t, "single", resp.Matrices[0].Type)
}

func TestTabulationMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	svc := newTestService(t, metrics)
	settings := defaultSettings(t, svc)
	_, err = svc.Frequency(context.Background(), "agree1", settings)
	require.NoError(t, err)
	_, _ = svc.Frequency(context.Background(), "nope", settings)

	w := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, "tables_generated_total")
	assert.Contains(t, body, "tabulation_errors_total")
	assert.Contains(t, body, "respondents_loaded")
}

func TestHealthService(t *testing.T) {
	ctx := context.Background()

	hs := NewHealthService("1.0.0", "", "", newTestService(t, nil), quietLogger())
	assert.Equal(t, "ready", hs.ReadinessCheck(ctx).Status)
	assert.Equal(t, "alive", hs.LivenessCheck(ctx).Status)
	assert.Equal(t, "1.0.0", hs.Version()["version"])

	empty := NewHealthService("1.0.0", "", "", nil, quietLogger())
	assert.Equal(t, "not_ready", empty.ReadinessCheck(ctx).Status)
}
