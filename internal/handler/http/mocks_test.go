package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/service"
	"github.com/Piyushkr001/revix/pkg/middleware"
	"github.com/Piyushkr001/revix/pkg/pagination"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Token verifier ---

const testToken = "valid-session"

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (*middleware.Principal, error) {
	if token != testToken {
		return nil, errors.New("invalid token")
	}
	return &middleware.Principal{UserID: "user_1", Email: "ada@example.com", FirstName: "Ada"}, nil
}

// --- Limiter ---

type stubLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
	calls      int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	l.calls++
	return l.allowed, l.retryAfter, l.err
}

// --- Service mocks ---

type mockAnalysisService struct {
	mock.Mock
}

func (m *mockAnalysisService) Submit(ctx context.Context, userID string, input *service.SubmitAnalysisInput) (*domain.Analysis, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *mockAnalysisService) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Analysis, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Analysis), args.Error(1)
}

func (m *mockAnalysisService) Get(ctx context.Context, userID, id string) (*domain.Analysis, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *mockAnalysisService) Search(ctx context.Context, userID string, f domain.HistoryFilter, p pagination.Params) (*pagination.Result[domain.AnalysisListItem], error) {
	args := m.Called(ctx, userID, f, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.Result[domain.AnalysisListItem]), args.Error(1)
}

type mockInsightsService struct {
	mock.Mock
}

func (m *mockInsightsService) DashboardSummary(ctx context.Context, userID string, since *time.Time, limit int) (*domain.DashboardSummary, error) {
	args := m.Called(ctx, userID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardSummary), args.Error(1)
}

func (m *mockInsightsService) Insights(ctx context.Context, userID string) (*domain.Insights, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Insights), args.Error(1)
}

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) Generate(ctx context.Context, userID string, input *service.GenerateReportInput) (*domain.Report, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *mockReportService) List(ctx context.Context, userID string) ([]domain.Report, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Report), args.Error(1)
}

func (m *mockReportService) Get(ctx context.Context, userID, id string) (*domain.Report, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *mockReportService) Export(ctx context.Context, userID, id string) (*service.ExportedReport, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportedReport), args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) SyncMe(ctx context.Context, p *middleware.Principal) (*domain.User, bool, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Bool(1), args.Error(2)
}

func (m *mockUserService) IsSynced(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserService) UpdateMe(ctx context.Context, userID string, input *service.UpdateProfileInput) (*domain.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) Deactivate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSettingsService struct {
	mock.Mock
}

func (m *mockSettingsService) Get(ctx context.Context, p *middleware.Principal) (*domain.Settings, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *mockSettingsService) Save(ctx context.Context, userID string, input *service.PrefsInput) (*domain.NotificationPrefs, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationPrefs), args.Error(1)
}

type mockSupportService struct {
	mock.Mock
}

func (m *mockSupportService) List(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SupportTicket), args.Error(1)
}

func (m *mockSupportService) Create(ctx context.Context, p *middleware.Principal, input *service.CreateTicketInput) (*domain.SupportTicket, error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupportTicket), args.Error(1)
}
