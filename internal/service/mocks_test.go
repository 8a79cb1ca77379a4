package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/pkg/middleware"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// --- Mock Analysis Repository ---

type mockAnalysisRepository struct {
	mock.Mock
}

func (m *mockAnalysisRepository) Create(ctx context.Context, a *domain.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAnalysisRepository) GetByID(ctx context.Context, userID, id string) (*domain.Analysis, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *mockAnalysisRepository) ListRecent(ctx context.Context, userID string, since *time.Time, limit int) ([]domain.Analysis, error) {
	args := m.Called(ctx, userID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Analysis), args.Error(1)
}

func (m *mockAnalysisRepository) Stats(ctx context.Context, userID string, r domain.DateRange) (*domain.AnalysisStats, error) {
	args := m.Called(ctx, userID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisStats), args.Error(1)
}

func (m *mockAnalysisRepository) CountHistory(ctx context.Context, userID string, f domain.HistoryFilter) (int, error) {
	args := m.Called(ctx, userID, f)
	return args.Int(0), args.Error(1)
}

func (m *mockAnalysisRepository) SearchHistory(ctx context.Context, userID string, f domain.HistoryFilter, limit, offset int) ([]domain.AnalysisListItem, error) {
	args := m.Called(ctx, userID, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AnalysisListItem), args.Error(1)
}

func (m *mockAnalysisRepository) SentimentCounts(ctx context.Context, userID string, r domain.DateRange) (domain.SentimentCounts, error) {
	args := m.Called(ctx, userID, r)
	return args.Get(0).(domain.SentimentCounts), args.Error(1)
}

func (m *mockAnalysisRepository) ScoreBuckets(ctx context.Context, userID string) (domain.ScoreBuckets, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.ScoreBuckets), args.Error(1)
}

func (m *mockAnalysisRepository) TopSources(ctx context.Context, userID string, limit int) ([]domain.SourceStat, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SourceStat), args.Error(1)
}

func (m *mockAnalysisRepository) TopProducts(ctx context.Context, userID string, r domain.DateRange, limit int) ([]domain.ProductStat, error) {
	args := m.Called(ctx, userID, r, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductStat), args.Error(1)
}

func (m *mockAnalysisRepository) DailyTrend(ctx context.Context, userID string, since time.Time) ([]domain.TrendPoint, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrendPoint), args.Error(1)
}

// --- Mock Report Repository ---

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) Create(ctx context.Context, r *domain.Report) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReportRepository) GetByID(ctx context.Context, userID, id string) (*domain.Report, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *mockReportRepository) List(ctx context.Context, userID string, limit int) ([]domain.Report, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Report), args.Error(1)
}

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Upsert(ctx context.Context, u *domain.User) (*domain.User, bool, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Bool(1), args.Error(2)
}

func (m *mockUserRepository) EnsureExists(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id string, name, imageURL *string) (*domain.User, error) {
	args := m.Called(ctx, id, name, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// --- Mock Settings / Support Repositories ---

type mockSettingsRepository struct {
	mock.Mock
}

func (m *mockSettingsRepository) GetPrefs(ctx context.Context, userID string) (*domain.NotificationPrefs, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationPrefs), args.Error(1)
}

func (m *mockSettingsRepository) UpsertPrefs(ctx context.Context, userID string, p domain.NotificationPrefs) error {
	return m.Called(ctx, userID, p).Error(0)
}

type mockSupportRepository struct {
	mock.Mock
}

func (m *mockSupportRepository) Create(ctx context.Context, t *domain.SupportTicket) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockSupportRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SupportTicket, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SupportTicket), args.Error(1)
}

// --- Mock Event Publisher ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishAnalysisCreated(ctx context.Context, a *domain.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockEvents) PublishReportGenerated(ctx context.Context, r *domain.Report) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockEvents) PublishTicketCreated(ctx context.Context, t *domain.SupportTicket) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockEvents) PublishUserDeactivated(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// --- Fake Profile Resolver ---

type fakeResolver struct {
	profile *domain.Profile
}

func (f *fakeResolver) Resolve(_ context.Context, p *middleware.Principal) *domain.Profile {
	if f.profile != nil {
		return f.profile
	}
	return &domain.Profile{ID: p.UserID, Email: p.Email, FirstName: p.FirstName}
}
