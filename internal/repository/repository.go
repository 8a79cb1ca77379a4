package repository

import (
	"context"
	"time"

	"github.com/Piyushkr001/revix/internal/domain"
)

// AnalysisRepository persists analyses and computes the aggregates the read
// views are built from. Every method is scoped to a single owner.
type AnalysisRepository interface {
	// Create inserts a new analysis.
	Create(ctx context.Context, a *domain.Analysis) error

	// GetByID returns the owner's analysis or a NOT_FOUND error.
	GetByID(ctx context.Context, userID, id string) (*domain.Analysis, error)

	// ListRecent returns the newest analyses, optionally only those created
	// strictly after since.
	ListRecent(ctx context.Context, userID string, since *time.Time, limit int) ([]domain.Analysis, error)

	// Stats computes count, review total, average, best, worst and latest
	// activity within r.
	Stats(ctx context.Context, userID string, r domain.DateRange) (*domain.AnalysisStats, error)

	// CountHistory counts analyses matching f.
	CountHistory(ctx context.Context, userID string, f domain.HistoryFilter) (int, error)

	// SearchHistory returns one page of analyses matching f.
	SearchHistory(ctx context.Context, userID string, f domain.HistoryFilter, limit, offset int) ([]domain.AnalysisListItem, error)

	// SentimentCounts groups analyses within r by sentiment.
	SentimentCounts(ctx context.Context, userID string, r domain.DateRange) (domain.SentimentCounts, error)

	// ScoreBuckets counts analyses per score range.
	ScoreBuckets(ctx context.Context, userID string) (domain.ScoreBuckets, error)

	// TopSources ranks sources by analysis count.
	TopSources(ctx context.Context, userID string, limit int) ([]domain.SourceStat, error)

	// TopProducts ranks product names within r by analysis count.
	TopProducts(ctx context.Context, userID string, r domain.DateRange, limit int) ([]domain.ProductStat, error)

	// DailyTrend groups analyses created at or after since by UTC day.
	DailyTrend(ctx context.Context, userID string, since time.Time) ([]domain.TrendPoint, error)
}

// ReportRepository persists immutable report snapshots.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) error
	GetByID(ctx context.Context, userID, id string) (*domain.Report, error)
	List(ctx context.Context, userID string, limit int) ([]domain.Report, error)
}

// UserRepository persists the identity-provider mirror rows.
type UserRepository interface {
	// Upsert inserts or refreshes the row and reports whether it was created.
	Upsert(ctx context.Context, u *domain.User) (*domain.User, bool, error)

	// EnsureExists inserts the row only when it is missing.
	EnsureExists(ctx context.Context, u *domain.User) error

	GetByID(ctx context.Context, id string) (*domain.User, error)
	Exists(ctx context.Context, id string) (bool, error)

	// UpdateProfile sets the non-nil fields and returns the updated row.
	UpdateProfile(ctx context.Context, id string, name, imageURL *string) (*domain.User, error)

	// Deactivate marks the user inactive. Analyses are kept.
	Deactivate(ctx context.Context, id string) error
}

// SettingsRepository persists notification preferences.
type SettingsRepository interface {
	// GetPrefs returns ErrNotFound when the user never saved settings.
	GetPrefs(ctx context.Context, userID string) (*domain.NotificationPrefs, error)
	UpsertPrefs(ctx context.Context, userID string, p domain.NotificationPrefs) error
}

// SupportRepository persists support tickets.
type SupportRepository interface {
	Create(ctx context.Context, t *domain.SupportTicket) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.SupportTicket, error)
}

// ProfileCache stores identity-provider profiles for a limited time.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*domain.Profile, bool, error)
	Set(ctx context.Context, p *domain.Profile, ttl time.Duration) error
}
