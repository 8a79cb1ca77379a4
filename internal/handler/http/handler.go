package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/service"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
	"github.com/Piyushkr001/revix/pkg/httputil"
	"github.com/Piyushkr001/revix/pkg/middleware"
	"github.com/Piyushkr001/revix/pkg/pagination"
	"github.com/Piyushkr001/revix/pkg/validator"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// AnalysisService is the subset of service.AnalysisService used by the handlers.
type AnalysisService interface {
	Submit(ctx context.Context, userID string, input *service.SubmitAnalysisInput) (*domain.Analysis, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Analysis, error)
	Get(ctx context.Context, userID, id string) (*domain.Analysis, error)
	Search(ctx context.Context, userID string, f domain.HistoryFilter, p pagination.Params) (*pagination.Result[domain.AnalysisListItem], error)
}

// InsightsService is the subset of service.InsightsService used by the handlers.
type InsightsService interface {
	DashboardSummary(ctx context.Context, userID string, since *time.Time, limit int) (*domain.DashboardSummary, error)
	Insights(ctx context.Context, userID string) (*domain.Insights, error)
}

// ReportService is the subset of service.ReportService used by the handlers.
type ReportService interface {
	Generate(ctx context.Context, userID string, input *service.GenerateReportInput) (*domain.Report, error)
	List(ctx context.Context, userID string) ([]domain.Report, error)
	Get(ctx context.Context, userID, id string) (*domain.Report, error)
	Export(ctx context.Context, userID, id string) (*service.ExportedReport, error)
}

// UserService is the subset of service.UserService used by the handlers.
type UserService interface {
	SyncMe(ctx context.Context, p *middleware.Principal) (*domain.User, bool, error)
	IsSynced(ctx context.Context, userID string) (bool, error)
	UpdateMe(ctx context.Context, userID string, input *service.UpdateProfileInput) (*domain.User, error)
	Deactivate(ctx context.Context, userID string) error
}

// SettingsService is the subset of service.SettingsService used by the handlers.
type SettingsService interface {
	Get(ctx context.Context, p *middleware.Principal) (*domain.Settings, error)
	Save(ctx context.Context, userID string, input *service.PrefsInput) (*domain.NotificationPrefs, error)
}

// SupportService is the subset of service.SupportService used by the handlers.
type SupportService interface {
	List(ctx context.Context, userID string) ([]domain.SupportTicket, error)
	Create(ctx context.Context, p *middleware.Principal, input *service.CreateTicketInput) (*domain.SupportTicket, error)
}

// principal returns the authenticated caller. Every /api route is mounted
// behind middleware.Authenticate, so a missing principal is a wiring error
// reported as 401.
func principal(w http.ResponseWriter, r *http.Request) (*middleware.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok || p.UserID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), nil)
		return nil, false
	}
	return p, true
}

// decodeBody decodes and validates a JSON body. An empty body decodes as the
// zero value when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := validator.DecodeAndValidate(r, dst)
	if allowEmpty && errors.Is(err, io.EOF) {
		err = validator.Validate(dst)
	}
	if err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

// RequireSynced rejects callers without a profile mirror row with 409
// USER_NOT_SYNCED. It must be mounted after middleware.Authenticate.
func RequireSynced(users UserService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principal(w, r)
			if !ok {
				return
			}
			if !ensureSynced(w, r, users, p.UserID, logger) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ensureSynced writes 409 USER_NOT_SYNCED and returns false when userID has
// no profile mirror row.
func ensureSynced(w http.ResponseWriter, r *http.Request, users UserService, userID string, logger *slog.Logger) bool {
	synced, err := users.IsSynced(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), logger)
		return false
	}
	if !synced {
		httputil.WriteError(w, r, apperrors.UserNotSynced(), logger)
		return false
	}
	return true
}
