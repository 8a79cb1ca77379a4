package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/scoring"
	"github.com/Piyushkr001/revix/internal/service"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
	"github.com/Piyushkr001/revix/pkg/health"
	"github.com/Piyushkr001/revix/pkg/httputil"
	"github.com/Piyushkr001/revix/pkg/middleware"
	"github.com/Piyushkr001/revix/pkg/pagination"
)

const reportID = "0b7e2c4a-9d51-4f7e-8a36-2f1f6c0d9e11"

// testRouter holds a fully wired router with mocked services.
type testRouter struct {
	handler  http.Handler
	analyses *mockAnalysisService
	insights *mockInsightsService
	reports  *mockReportService
	users    *mockUserService
	settings *mockSettingsService
	support  *mockSupportService
	limiter  *stubLimiter
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()

	tr := &testRouter{
		analyses: new(mockAnalysisService),
		insights: new(mockInsightsService),
		reports:  new(mockReportService),
		users:    new(mockUserService),
		settings: new(mockSettingsService),
		support:  new(mockSupportService),
		limiter:  &stubLimiter{allowed: true},
	}

	hh := health.NewHandler()
	hh.RegisterCritical("postgres", func(context.Context) error { return nil })

	tr.handler = NewRouter(
		RouterConfig{CORS: middleware.DefaultCORSConfig(), PprofAllowedCIDRs: []string{"127.0.0.1/32"}},
		Services{
			Analyses: tr.analyses,
			Insights: tr.insights,
			Reports:  tr.reports,
			Users:    tr.users,
			Settings: tr.settings,
			Support:  tr.support,
		},
		Deps{
			Verifier:        stubVerifier{},
			AnalysisLimiter: tr.limiter,
			Health:          hh,
			Registry:        prometheus.NewRegistry(),
			Logger:          testLogger(),
		},
	)
	return tr
}

func (tr *testRouter) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	tr.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) *httputil.ErrorResponse {
	t.Helper()
	var env struct {
		Data  json.RawMessage         `json:"data"`
		Error *httputil.ErrorResponse `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.Error
}

// --- Operational endpoints ---

func TestRouter_HealthAndMetrics(t *testing.T) {
	tr := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		tr.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

// --- Authentication ---

func TestRouter_RejectsMissingOrInvalidToken(t *testing.T) {
	tr := newTestRouter(t)

	for _, header := range []string{"", "Bearer nope", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/insights", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		tr.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
	tr.insights.AssertNotCalled(t, "Insights", mock.Anything, mock.Anything)
}

// --- Analysis ---

func TestSubmit_RequiresSyncedUser(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(false, nil)

	rec := tr.do(http.MethodPost, "/api/analysis", `{"productName":"Kettle","reviewsText":"great kettle, love it a lot"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	errResp := decodeEnvelope(t, rec, nil)
	require.NotNil(t, errResp)
	assert.Equal(t, "USER_NOT_SYNCED", errResp.Code)
	assert.Contains(t, errResp.Hint, "/api/users/me")
	tr.analyses.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_Created(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(true, nil)
	tr.analyses.On("Submit", mock.Anything, "user_1", &service.SubmitAnalysisInput{
		Source:      "amazon",
		ProductName: "Kettle",
		ReviewsText: "great kettle, love it a lot",
		ReviewCount: 2,
	}).Return(&domain.Analysis{ID: "a-1", Score10: 7, Sentiment: scoring.SentimentPositive}, nil)

	rec := tr.do(http.MethodPost, "/api/analysis",
		`{"source":"amazon","productName":"Kettle","reviewsText":"great kettle, love it a lot","reviewCount":2}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var a domain.Analysis
	assert.Nil(t, decodeEnvelope(t, rec, &a))
	assert.Equal(t, "a-1", a.ID)
	assert.Equal(t, 7, a.Score10)
	tr.analyses.AssertExpectations(t)
}

func TestSubmit_InvalidBodyBeforeSyncCheck(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"blank product name", `{"productName":"   ","reviewsText":"short"}`, "Product name is required"},
		{"missing product name", `{"reviewsText":"great kettle, love it a lot"}`, "Product name is required"},
		{"short reviews", `{"productName":"Kettle","reviewsText":"  too short  "}`, "Please provide at least 20 characters of reviews"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter(t)
			tr.users.On("IsSynced", mock.Anything, "user_1").Return(false, nil)

			rec := tr.do(http.MethodPost, "/api/analysis", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			errResp := decodeEnvelope(t, rec, nil)
			require.NotNil(t, errResp)
			assert.Equal(t, "INVALID_INPUT", errResp.Code)
			assert.Equal(t, tt.message, errResp.Message)
			tr.users.AssertNotCalled(t, "IsSynced", mock.Anything, mock.Anything)
			assert.Zero(t, tr.limiter.calls)
			tr.analyses.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_UnsyncedUserDoesNotUseQuota(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(false, nil)

	rec := tr.do(http.MethodPost, "/api/analysis", `{"productName":"Kettle","reviewsText":"great kettle, love it a lot"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, tr.limiter.calls)
}

func TestSubmit_ServiceError(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(true, nil)
	tr.analyses.On("Submit", mock.Anything, "user_1", mock.Anything).
		Return(nil, errors.New("create analysis: connection refused"))

	rec := tr.do(http.MethodPost, "/api/analysis", `{"productName":"Kettle","reviewsText":"great kettle, love it a lot"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errResp := decodeEnvelope(t, rec, nil)
	assert.Equal(t, "create analysis: connection refused", errResp.Message)
	assert.Equal(t, 1, tr.limiter.calls)
}

func TestSubmit_MalformedJSON(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(true, nil)

	rec := tr.do(http.MethodPost, "/api/analysis", `{"productName":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	tr.analyses.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_NegativeReviewCount(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(true, nil)

	rec := tr.do(http.MethodPost, "/api/analysis", `{"productName":"Kettle","reviewsText":"fine fine fine fine fine","reviewCount":-2}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeEnvelope(t, rec, nil)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Contains(t, errResp.Fields, "reviewCount")
}

func TestSubmit_RateLimited(t *testing.T) {
	tr := newTestRouter(t)
	tr.limiter.allowed = false
	tr.limiter.retryAfter = 42 * time.Second
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(true, nil)

	rec := tr.do(http.MethodPost, "/api/analysis", `{"productName":"Kettle","reviewsText":"great kettle, love it a lot"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
	tr.analyses.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_LimiterErrorFailsOpen(t *testing.T) {
	tr := newTestRouter(t)
	tr.limiter.allowed = false
	tr.limiter.err = errors.New("redis down")
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(true, nil)
	tr.analyses.On("Submit", mock.Anything, "user_1", mock.Anything).Return(&domain.Analysis{ID: "a-1"}, nil)

	rec := tr.do(http.MethodPost, "/api/analysis", `{"productName":"Kettle","reviewsText":"great kettle, love it a lot"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListRecent_ParsesLimit(t *testing.T) {
	tr := newTestRouter(t)
	tr.analyses.On("ListRecent", mock.Anything, "user_1", 50).Return([]domain.Analysis{}, nil)

	rec := tr.do(http.MethodGet, "/api/analysis?limit=500", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	tr.analyses.AssertExpectations(t)
}

// --- History ---

func TestHistory_ParsesFilter(t *testing.T) {
	tr := newTestRouter(t)
	want := domain.HistoryFilter{
		Query:     "kettle",
		Sentiment: "",
		MinScore:  1,
		MaxScore:  6,
		Sort:      domain.SortScoreLow,
	}
	res := pagination.NewResult([]domain.AnalysisListItem{{ID: "a-1"}}, pagination.Window{Page: 2, PageSize: 5, Total: 6, TotalPages: 2})
	tr.analyses.On("Search", mock.Anything, "user_1", want, pagination.Params{Page: 2, PageSize: 5}).Return(&res, nil)

	rec := tr.do(http.MethodGet, "/api/history?q=kettle&sentiment=all&minScore=-5&maxScore=6&sort=score_low&page=2&pageSize=2", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got pagination.Result[domain.AnalysisListItem]
	assert.Nil(t, decodeEnvelope(t, rec, &got))
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Pagination.TotalPages)
	tr.analyses.AssertExpectations(t)
}

func TestHistoryDetail_MalformedIDIsNotFound(t *testing.T) {
	tr := newTestRouter(t)

	rec := tr.do(http.MethodGet, "/api/history/not-a-uuid", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	tr.analyses.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryDetail_OtherOwnerIsNotFound(t *testing.T) {
	tr := newTestRouter(t)
	tr.analyses.On("Get", mock.Anything, "user_1", reportID).Return(nil, apperrors.NotFound("analysis", reportID))

	rec := tr.do(http.MethodGet, "/api/history/"+reportID, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, rec, nil).Code)
}

// --- Dashboard / Insights ---

func TestDashboard_InvalidSinceIsIgnored(t *testing.T) {
	tr := newTestRouter(t)
	tr.insights.On("DashboardSummary", mock.Anything, "user_1", (*time.Time)(nil), 5).
		Return(&domain.DashboardSummary{HasData: false, Recent: []domain.Analysis{}}, nil)

	rec := tr.do(http.MethodGet, "/api/dashboard/summary?since=yesterday", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]any
	assert.Nil(t, decodeEnvelope(t, rec, &raw))
	assert.Equal(t, false, raw["hasData"])
	_, hasAvg := raw["avgScore10"]
	assert.False(t, hasAvg)
	tr.insights.AssertExpectations(t)
}

func TestDashboard_ParsesSince(t *testing.T) {
	tr := newTestRouter(t)
	since := time.Date(2025, 3, 30, 8, 0, 0, 0, time.UTC)
	tr.insights.On("DashboardSummary", mock.Anything, "user_1", &since, 3).
		Return(&domain.DashboardSummary{HasData: true, Recent: []domain.Analysis{}}, nil)

	rec := tr.do(http.MethodGet, "/api/dashboard/summary?since=2025-03-30T10:00:00%2B02:00&limit=3", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	tr.insights.AssertExpectations(t)
}

func TestInsights_ServiceErrorIs500WithReason(t *testing.T) {
	tr := newTestRouter(t)
	tr.insights.On("Insights", mock.Anything, "user_1").Return(nil, errors.New("insights totals: connection refused"))

	rec := tr.do(http.MethodGet, "/api/insights", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errResp := decodeEnvelope(t, rec, nil)
	assert.Equal(t, "INTERNAL_ERROR", errResp.Code)
	assert.Contains(t, errResp.Message, "connection refused")
}

// --- Reports ---

func TestGenerateReport_EmptyBody(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(true, nil)
	tr.reports.On("Generate", mock.Anything, "user_1", &service.GenerateReportInput{}).
		Return(&domain.Report{ID: reportID, Preset: domain.Preset30d, Title: "Report (30D)"}, nil)

	rec := tr.do(http.MethodPost, "/api/reports/generate", "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	var r domain.Report
	assert.Nil(t, decodeEnvelope(t, rec, &r))
	assert.Equal(t, "Report (30D)", r.Title)
}

func TestGenerateReport_UnknownPreset(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(true, nil)

	rec := tr.do(http.MethodPost, "/api/reports/generate", `{"preset":"1y"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec, nil).Fields, "preset")
	tr.reports.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportExport_SetsDownloadHeaders(t *testing.T) {
	tr := newTestRouter(t)
	tr.reports.On("Export", mock.Anything, "user_1", reportID).Return(&service.ExportedReport{
		Filename:    "revix-q1-2025-03-31.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        []byte("PK\x03\x04"),
	}, nil)

	rec := tr.do(http.MethodGet, "/api/reports/"+reportID+"/export", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="revix-q1-2025-03-31.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "private, no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "PK\x03\x04", rec.Body.String())
}

func TestReportList(t *testing.T) {
	tr := newTestRouter(t)
	tr.reports.On("List", mock.Anything, "user_1").Return([]domain.Report{{ID: reportID}}, nil)

	rec := tr.do(http.MethodGet, "/api/reports", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var out []domain.Report
	assert.Nil(t, decodeEnvelope(t, rec, &out))
	assert.Len(t, out, 1)
}

// --- Users / Settings ---

func TestUsersMe_StatusReflectsCreation(t *testing.T) {
	tests := []struct {
		created bool
		status  int
	}{
		{true, http.StatusCreated},
		{false, http.StatusOK},
	}

	for _, tt := range tests {
		tr := newTestRouter(t)
		tr.users.On("SyncMe", mock.Anything, mock.MatchedBy(func(p *middleware.Principal) bool {
			return p.UserID == "user_1"
		})).Return(&domain.User{ID: "user_1", Email: "ada@example.com"}, tt.created, nil)

		rec := tr.do(http.MethodGet, "/api/users/me", "")

		assert.Equal(t, tt.status, rec.Code)
	}
}

func TestUpdateMe_Validation(t *testing.T) {
	tr := newTestRouter(t)

	rec := tr.do(http.MethodPatch, "/api/users/me", `{"name":"  A  ","imageUrl":"not a url"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeEnvelope(t, rec, nil).Fields
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "imageUrl")
}

func TestUpdateMe_OK(t *testing.T) {
	tr := newTestRouter(t)
	name := "Ada L"
	tr.users.On("UpdateMe", mock.Anything, "user_1", &service.UpdateProfileInput{Name: &name}).
		Return(&domain.User{ID: "user_1", Name: &name}, nil)

	rec := tr.do(http.MethodPatch, "/api/users/me", `{"name":"Ada L"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	tr.users.AssertExpectations(t)
}

func TestSaveSettings_PassesPartialInput(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("IsSynced", mock.Anything, "user_1").Return(true, nil)
	off := false
	tr.settings.On("Save", mock.Anything, "user_1", &service.PrefsInput{EmailSecurityAlerts: &off}).
		Return(&domain.NotificationPrefs{DefaultSource: domain.SourceManual}, nil)

	rec := tr.do(http.MethodPut, "/api/settings", `{"emailSecurityAlerts":false}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"prefs"`))
	tr.settings.AssertExpectations(t)
}

func TestDeleteAccount(t *testing.T) {
	tr := newTestRouter(t)
	tr.users.On("Deactivate", mock.Anything, "user_1").Return(nil)

	rec := tr.do(http.MethodPost, "/api/settings/delete-account", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]bool
	assert.Nil(t, decodeEnvelope(t, rec, &out))
	assert.True(t, out["success"])
}

// --- Support ---

func TestSupportCreate(t *testing.T) {
	tr := newTestRouter(t)
	tr.support.On("Create", mock.Anything, mock.Anything, &service.CreateTicketInput{
		Subject:  "Export broken",
		Message:  "The download is empty.",
		Category: "technical",
		Meta:     domain.TicketMeta{Page: "/reports"},
	}).Return(&domain.SupportTicket{ID: "t-1", Status: domain.TicketStatusOpen}, nil)

	rec := tr.do(http.MethodPost, "/api/support",
		`{"subject":"Export broken","message":"The download is empty.","category":"technical","meta":{"page":"/reports"}}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	tr.support.AssertExpectations(t)
}
