package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveycli/internal/config"
	apperrors "surveycli/internal/errors"
	"surveycli/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cbPath, dataPath := testutil.WriteSurveyFiles(t, dir)

	cfg := config.Default()
	cfg.Paths.BaseDir = dir
	cfg.Data.Codebook = cbPath
	cfg.Data.File = dataPath
	cfg.Security.RateLimit.Enabled = false
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestNewApplication(t *testing.T) {
	logger, logs := testutil.NewTestLogger()
	a, err := NewApplication(context.Background(), testConfig(t), logger)
	require.NoError(t, err)
	defer a.OTelProviders.Shutdown(context.Background())

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Survey loaded")
	assert.DirExists(t, a.Paths.ExportDir)

	serve := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	t.Run("routes", func(t *testing.T) {
		for _, target := range []string{
			"/healthz",
			"/readyz",
			"/api/version",
			"/api/questions",
			"/api/questions/agree1/frequency",
			"/api/questions/agree1/cut/region",
			"/api/matrices/service/frequency",
		} {
			w := serve(target)
			assert.Equal(t, http.StatusOK, w.Code, target)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"), target)
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"), target)
		}
	})

	t.Run("problem for unknown route", func(t *testing.T) {
		w := serve("/api/nowhere")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		serve("/api/questions/agree1/frequency")
		w := serve("/metrics")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "tables_generated_total")
		assert.Contains(t, w.Body.String(), "http_requests_total")
	})
}

func TestNewApplicationRateLimit(t *testing.T) {
	logger, _ := testutil.NewTestLogger()
	cfg := testConfig(t)
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.0001, Burst: 1}
	cfg.Telemetry.Enabled = false

	a, err := NewApplication(context.Background(), cfg, logger)
	require.NoError(t, err)

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/questions", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	// health checks sit outside the limiter
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeAndStop(t *testing.T) {
	logger, logs := testutil.NewTestLogger()
	a, err := NewApplication(context.Background(), testConfig(t), logger)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Serve(ctx, ln, cancel))

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, a.Stop(context.Background()))
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Application shutdown complete")
	assert.NoError(t, ctx.Err())
}

func TestSourceLoad(t *testing.T) {
	logger, logs := testutil.NewTestLogger()
	dir := t.TempDir()
	cbPath, dataPath := testutil.WriteSurveyFiles(t, dir)
	ctx := context.Background()

	t.Run("csv", func(t *testing.T) {
		cb, ds, err := Source{Codebook: cbPath, File: dataPath}.Load(ctx, logger)
		require.NoError(t, err)
		assert.Equal(t, 6, ds.Len())
		assert.Len(t, cb.Questions(), 4)
	})

	errType := func(t *testing.T, err error) apperrors.ErrorType {
		t.Helper()
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		return appErr.Type
	}

	cases := []struct {
		name string
		src  Source
		want apperrors.ErrorType
	}{
		{"no codebook", Source{File: dataPath}, apperrors.ErrTypeConfig},
		{"no data", Source{Codebook: cbPath}, apperrors.ErrTypeConfig},
		{"both sources", Source{Codebook: cbPath, File: dataPath, DuckDB: "x.db", Table: "t"}, apperrors.ErrTypeConfig},
		{"duckdb without table", Source{Codebook: cbPath, DuckDB: "x.db"}, apperrors.ErrTypeConfig},
		{"unknown extension", Source{Codebook: cbPath, File: filepath.Join(dir, "responses.sav")}, apperrors.ErrTypeConfig},
		{"missing codebook", Source{Codebook: filepath.Join(dir, "nope.yaml"), File: dataPath}, apperrors.ErrTypeCodebook},
		{"missing data", Source{Codebook: cbPath, File: filepath.Join(dir, "nope.csv")}, apperrors.ErrTypeData},
		{"missing duckdb", Source{Codebook: cbPath, DuckDB: filepath.Join(dir, "nope.duckdb"), Table: "t"}, apperrors.ErrTypeData},
		{"codebook type", Source{Codebook: dataPath, File: dataPath}, apperrors.ErrTypeConfig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := tc.src.Load(ctx, logger)
			assert.Equal(t, tc.want, errType(t, err))
		})
	}

	testutil.AssertLogContains(t, logs, slog.LevelError, "File does not exist")
}
