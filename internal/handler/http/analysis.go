package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/scoring"
	"github.com/Piyushkr001/revix/internal/service"
	"github.com/Piyushkr001/revix/pkg/httputil"
	"github.com/Piyushkr001/revix/pkg/middleware"
	"github.com/Piyushkr001/revix/pkg/pagination"
)

var (
	minScoreBounds = pagination.Bounds{Default: scoring.MinScore, Min: scoring.MinScore, Max: scoring.MaxScore}
	maxScoreBounds = pagination.Bounds{Default: scoring.MaxScore, Min: scoring.MinScore, Max: scoring.MaxScore}
)

// AnalysisHandler handles submissions, history and the read views built on
// stored analyses.
type AnalysisHandler struct {
	analyses AnalysisService
	insights InsightsService
	users    UserService
	limiter  middleware.Limiter
	logger   *slog.Logger
}

// NewAnalysisHandler creates a new analysis HTTP handler.
// Submissions are checked in order: body, profile row, then rate limit, so
// rejected bodies never use up the caller's quota. A nil limiter disables
// throttling.
func NewAnalysisHandler(
	analyses AnalysisService,
	insights InsightsService,
	users UserService,
	limiter middleware.Limiter,
	logger *slog.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analyses: analyses,
		insights: insights,
		users:    users,
		limiter:  limiter,
		logger:   logger,
	}
}

// --- Request DTOs ---

// SubmitAnalysisRequest is the JSON body of POST /api/analysis. Required
// fields and minimum lengths are checked by service.ValidateSubmission so the
// messages match the dashboard's.
type SubmitAnalysisRequest struct {
	Source      string `json:"source" validate:"max=32"`
	ProductName string `json:"productName" validate:"max=255"`
	ProductURL  string `json:"productUrl" validate:"max=2048"`
	ReviewsText string `json:"reviewsText"`
	ReviewCount int    `json:"reviewCount" validate:"gte=0"`
}

// --- Handlers ---

// Submit handles POST /api/analysis
func (h *AnalysisHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req SubmitAnalysisRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	input := &service.SubmitAnalysisInput{
		Source:      req.Source,
		ProductName: req.ProductName,
		ProductURL:  req.ProductURL,
		ReviewsText: req.ReviewsText,
		ReviewCount: req.ReviewCount,
	}
	if err := service.ValidateSubmission(input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !ensureSynced(w, r, h.users, p.UserID, h.logger) {
		return
	}
	if !middleware.AllowRequest(w, r, h.limiter, "analysis", h.logger) {
		return
	}

	a, err := h.analyses.Submit(r.Context(), p.UserID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, a)
}

// ListRecent handles GET /api/analysis
func (h *AnalysisHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	items, err := h.analyses.ListRecent(r.Context(), p.UserID, pagination.IntParam(r, "limit", service.RecentBounds))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, items)
}

// History handles GET /api/history
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := domain.HistoryFilter{
		Query:     q.Get("q"),
		Sentiment: domain.ParseSentimentFilter(q.Get("sentiment")),
		MinScore:  pagination.IntParam(r, "minScore", minScoreBounds),
		MaxScore:  pagination.IntParam(r, "maxScore", maxScoreBounds),
		Sort:      domain.ParseHistorySort(q.Get("sort")),
	}

	res, err := h.analyses.Search(r.Context(), p.UserID, f, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, res)
}

// Detail handles GET /api/history/{id}
func (h *AnalysisHandler) Detail(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := httputil.ParseResourceID(w, r, "analysis", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	a, err := h.analyses.Get(r.Context(), p.UserID, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, a)
}

// Dashboard handles GET /api/dashboard/summary
func (h *AnalysisHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var since *time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		// An unparsable value is ignored rather than rejected.
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			t = t.UTC()
			since = &t
		}
	}

	out, err := h.insights.DashboardSummary(r.Context(), p.UserID, since, pagination.IntParam(r, "limit", service.DashboardRecentBounds))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, out)
}

// Insights handles GET /api/insights
func (h *AnalysisHandler) Insights(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	out, err := h.insights.Insights(r.Context(), p.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, out)
}
