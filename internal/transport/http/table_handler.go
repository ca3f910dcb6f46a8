package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	apierrors "surveycli/internal/errors"
	"surveycli/internal/exporter"
	"surveycli/internal/middleware"
	api "surveycli/pkg/contracts/api/v1"
	"surveycli/pkg/contracts/domain"
)

// Output formats accepted by the format query parameter
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	formats    = []string{FormatJSON, FormatCSV, FormatXLSX}
	showModes  = []string{"ct", "pct", "pct_respondents", "pct_responses"}
	unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// TableHandler serves codebook listings, single tables and reports
type TableHandler struct {
	service      TabulationServiceInterface
	xlsx         *exporter.XLSXWriter
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTableHandler creates a table handler
func NewTableHandler(service TabulationServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TableHandler {
	return &TableHandler{
		service:      service,
		xlsx:         exporter.NewXLSXWriter(),
		validator:    middleware.NewValidator(),
		query:        middleware.NewQueryParamValidator(),
		logger:       logger.With(slog.String("component", "table_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the table routes
func (h *TableHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/questions", h.ListQuestions)
	r.Route("/questions/{id}", func(r chi.Router) {
		r.Get("/frequency", h.QuestionFrequency)
		r.Get("/cut/{by}", h.QuestionCut)
	})
	r.Route("/matrices/{id}", func(r chi.Router) {
		r.Get("/frequency", h.MatrixFrequency)
		r.Get("/cut/{by}", h.MatrixCut)
	})
	r.Get("/report", h.DefaultReport)
	r.Post("/report", h.BuildReport)

	return r
}

// ListQuestions handles GET /api/questions
func (h *TableHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.ListQuestions(r.Context()))
}

// QuestionFrequency handles GET /api/questions/{id}/frequency
func (h *TableHandler) QuestionFrequency(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, api.TableRequest{Question: chi.URLParam(r, "id")})
}

// QuestionCut handles GET /api/questions/{id}/cut/{by}
func (h *TableHandler) QuestionCut(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, api.TableRequest{
		Question: chi.URLParam(r, "id"),
		CutBy:    chi.URLParam(r, "by"),
	})
}

// MatrixFrequency handles GET /api/matrices/{id}/frequency?show=
func (h *TableHandler) MatrixFrequency(w http.ResponseWriter, r *http.Request) {
	show, err := h.query.Enum(r, "show", showModes, "")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.serveTable(w, r, api.TableRequest{Matrix: chi.URLParam(r, "id"), Show: show})
}

// MatrixCut handles GET /api/matrices/{id}/cut/{by}
func (h *TableHandler) MatrixCut(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, api.TableRequest{
		Matrix: chi.URLParam(r, "id"),
		CutBy:  chi.URLParam(r, "by"),
	})
}

func (h *TableHandler) serveTable(w http.ResponseWriter, r *http.Request, req api.TableRequest) {
	ctx := r.Context()

	format, err := h.query.Enum(r, "format", formats, FormatJSON)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	opts, err := h.query.TableOptions(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req.Title = r.URL.Query().Get("title")

	settings, err := h.service.Settings(opts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	t, err := h.service.Table(ctx, req, settings)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == FormatJSON {
		render.JSON(w, r, api.TableResponse{
			ID:          uuid.New().String(),
			Table:       t,
			GeneratedAt: time.Now().UTC(),
		})
		return
	}
	h.writeTables(w, r, format, t.Title, []*domain.Table{t})
}

// DefaultReport handles GET /api/report, the report declared in the codebook
func (h *TableHandler) DefaultReport(w http.ResponseWriter, r *http.Request) {
	format, err := h.query.Enum(r, "format", formats, FormatXLSX)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	tables, err := h.service.DefaultReport(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeReport(w, r, format, h.service.ListQuestions(r.Context()).Title, tables)
}

// BuildReport handles POST /api/report
func (h *TableHandler) BuildReport(w http.ResponseWriter, r *http.Request) {
	format, err := h.query.Enum(r, "format", formats, FormatXLSX)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var req api.ReportRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	tables, err := h.service.BuildReport(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeReport(w, r, format, req.Title, tables)
}

func (h *TableHandler) writeReport(w http.ResponseWriter, r *http.Request, format, title string, tables []*domain.Table) {
	if format == FormatJSON {
		now := time.Now().UTC()
		out := make([]api.TableResponse, len(tables))
		for i, t := range tables {
			out[i] = api.TableResponse{ID: uuid.New().String(), Table: t, GeneratedAt: now}
		}
		render.JSON(w, r, out)
		return
	}
	if title == "" {
		title = "report"
	}
	h.writeTables(w, r, format, title, tables)
}

// writeTables renders into a buffer first so an export failure still gets a
// problem response
func (h *TableHandler) writeTables(w http.ResponseWriter, r *http.Request, format, name string, tables []*domain.Table) {
	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch format {
	case FormatCSV:
		contentType = "text/csv; charset=utf-8"
		err = exporter.WriteTablesCSV(&buf, tables)
	default:
		contentType = xlsxContentType
		err = h.xlsx.Write(&buf, tables)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("failed to render "+format, err))
		return
	}

	h.logger.InfoContext(r.Context(), "tables exported",
		slog.String("format", format),
		slog.Int("tables", len(tables)),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, fileName(name), format))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func fileName(title string) string {
	name := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(title), "_"), "_.")
	if name == "" {
		return "table"
	}
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}
