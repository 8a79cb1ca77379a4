package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Piyushkr001/revix/internal/service"
	"github.com/Piyushkr001/revix/pkg/httputil"
)

// ReportHandler handles report snapshot endpoints.
type ReportHandler struct {
	service ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report HTTP handler.
func NewReportHandler(svc ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  logger,
	}
}

// GenerateReportRequest is the JSON body of POST /api/reports/generate. Every
// field is optional.
type GenerateReportRequest struct {
	Preset   string `json:"preset" validate:"omitempty,oneof=7d 30d 90d all custom"`
	DateFrom string `json:"dateFrom" validate:"max=64"`
	DateTo   string `json:"dateTo" validate:"max=64"`
	Title    string `json:"title" validate:"max=200"`
}

// Generate handles POST /api/reports/generate
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req GenerateReportRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	report, err := h.service.Generate(r.Context(), p.UserID, &service.GenerateReportInput{
		Preset:   req.Preset,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Title:    req.Title,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, report)
}

// List handles GET /api/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	reports, err := h.service.List(r.Context(), p.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, reports)
}

// Get handles GET /api/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := httputil.ParseResourceID(w, r, "report", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	report, err := h.service.Get(r.Context(), p.UserID, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, report)
}

// Export handles GET /api/reports/{id}/export
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := httputil.ParseResourceID(w, r, "report", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	out, err := h.service.Export(r.Context(), p.UserID, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write report export",
			slog.String("report_id", id.String()),
			slog.String("error", err.Error()),
		)
	}
}
