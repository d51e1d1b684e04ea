package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"bnfcli/internal/dataprocessing"
	apierrors "bnfcli/internal/errors"
	"bnfcli/internal/exporter"
	"bnfcli/internal/infrastructure"
	"bnfcli/pkg/contracts/domain"
)

// Analyzer runs the labeling pipeline over a source.
type Analyzer interface {
	Run(ctx context.Context, src dataprocessing.Source) (*domain.Result, error)
}

// AnalyzeHandler labels uploaded tick files.
type AnalyzeHandler struct {
	analyzer     Analyzer
	exporter     *exporter.Exporter
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// analyzeQuery holds the query parameters of POST /analyze.
type analyzeQuery struct {
	Format string `validate:"omitempty,oneof=json csv xlsx table"`
}

// NewAnalyzeHandler creates a new analyze handler with RFC 7807 error handling
func NewAnalyzeHandler(analyzer Analyzer, exp *exporter.Exporter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:     analyzer,
		exporter:     exp,
		validate:     validator.New(),
		logger:       infrastructure.WithComponent(logger, "analyze_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the analyze routes
func (h *AnalyzeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Analyze)
	return r
}

// Analyze handles POST /api/v1/analyze. The body is a CSV document or a
// multipart form with a "file" field holding CSV or XLSX.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	q := analyzeQuery{Format: r.URL.Query().Get("format")}
	if err := h.validate.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be one of json, csv, xlsx, table"))
		return
	}

	src, err := h.source(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analyzing upload",
		slog.String("request_id", reqID),
		slog.String("source", src.Name()))

	res, err := h.analyzer.Run(r.Context(), src)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	infrastructure.SetSpanAttributes(r.Context(),
		attribute.String("upload.source", src.Name()),
		attribute.Int("result.rows", len(res.Rows)),
		attribute.Int("result.pairs", res.Pairs))

	h.respond(w, r, q.Format, res)
}

func (h *AnalyzeHandler) source(r *http.Request) (dataprocessing.Source, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				return nil, apierrors.ErrPayloadTooLarge
			}
			return nil, apierrors.ErrValidation("file", "multipart field \"file\" is required")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, apierrors.InvalidRequestWithError(err)
		}
		format := dataprocessing.FormatCSV
		if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
			format = dataprocessing.FormatXLSX
		}
		return dataprocessing.ReaderSource{
			Label:  header.Filename,
			Reader: bytes.NewReader(data),
			Format: format,
		}, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		if isTooLarge(err) {
			return nil, apierrors.ErrPayloadTooLarge
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apierrors.ErrValidation("body", "request body is empty")
	}
	return dataprocessing.ReaderSource{
		Label:  "upload.csv",
		Reader: bytes.NewReader(data),
		Format: dataprocessing.FormatCSV,
	}, nil
}

func (h *AnalyzeHandler) respond(w http.ResponseWriter, r *http.Request, format string, res *domain.Result) {
	switch format {
	case "", exporter.FormatJSON:
		render.JSON(w, r, res)
		return
	case exporter.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case exporter.FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
			"ratchet_"+res.RunID+".xlsx"))
	case exporter.FormatTable:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}

	var buf bytes.Buffer
	if err := h.exporter.Render(&buf, format, res); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// multipart parsing does not always wrap the reader error
	return strings.Contains(err.Error(), "request body too large")
}
