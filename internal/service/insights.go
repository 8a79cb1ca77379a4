package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/repository"
	"github.com/Piyushkr001/revix/pkg/pagination"
	"github.com/Piyushkr001/revix/pkg/tracing"
)

// DashboardRecentBounds limits the dashboard's recent list.
var DashboardRecentBounds = pagination.Bounds{Default: 5, Min: 1, Max: 20}

const (
	insightsTopLimit  = 5
	insightsTrendDays = 14
)

// InsightsService builds the read-only dashboard and insights views.
type InsightsService struct {
	repo   repository.AnalysisRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewInsightsService creates a new insights service.
func NewInsightsService(repo repository.AnalysisRepository, logger *slog.Logger) *InsightsService {
	return &InsightsService{repo: repo, logger: logger, now: utcNow}
}

// DashboardSummary returns headline KPIs and the most recent analyses. since
// only filters the recent list; KPIs always cover every analysis.
func (s *InsightsService) DashboardSummary(ctx context.Context, userID string, since *time.Time, limit int) (*domain.DashboardSummary, error) {
	stats, err := s.repo.Stats(ctx, userID, domain.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	out := &domain.DashboardSummary{
		HasData:   stats.Total > 0,
		UpdatedAt: s.now(),
		Recent:    []domain.Analysis{},
	}
	if !out.HasData {
		return out, nil
	}

	recent, err := s.repo.ListRecent(ctx, userID, since, DashboardRecentBounds.Clamp(limit))
	if err != nil {
		return nil, fmt.Errorf("dashboard recent: %w", err)
	}

	out.TotalAnalyses = stats.Total
	out.AvgScore10 = domain.Round2Ptr(stats.AvgScore)
	out.BestScore10 = stats.BestScore
	out.WorstScore10 = stats.WorstScore
	out.LastActivityAt = stats.LastActivityAt
	out.Recent = recent
	return out, nil
}

// Insights returns totals, distributions, rankings and the 14-day trend.
// Averages are not rounded.
func (s *InsightsService) Insights(ctx context.Context, userID string) (_ *domain.Insights, err error) {
	ctx, end := tracing.StartSpan(ctx, tracerName, "insights.Insights")
	defer func() { end(err) }()

	now := s.now()

	stats, err := s.repo.Stats(ctx, userID, domain.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("insights totals: %w", err)
	}
	if stats.Total == 0 {
		return domain.EmptyInsights(now), nil
	}

	sentiment, err := s.repo.SentimentCounts(ctx, userID, domain.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("insights sentiment: %w", err)
	}
	buckets, err := s.repo.ScoreBuckets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("insights buckets: %w", err)
	}
	sources, err := s.repo.TopSources(ctx, userID, insightsTopLimit)
	if err != nil {
		return nil, fmt.Errorf("insights sources: %w", err)
	}
	products, err := s.repo.TopProducts(ctx, userID, domain.DateRange{}, insightsTopLimit)
	if err != nil {
		return nil, fmt.Errorf("insights products: %w", err)
	}
	trend, err := s.repo.DailyTrend(ctx, userID, now.AddDate(0, 0, -insightsTrendDays))
	if err != nil {
		return nil, fmt.Errorf("insights trend: %w", err)
	}

	return &domain.Insights{
		HasData:   true,
		UpdatedAt: now,
		Totals: domain.InsightTotals{
			TotalAnalyses: stats.Total,
			TotalReviews:  stats.TotalReviews,
			AvgScore:      stats.AvgScore,
			BestScore:     stats.BestScore,
			WorstScore:    stats.WorstScore,
		},
		Sentiment:   sentiment,
		Buckets:     buckets,
		TopSources:  nonNil(sources),
		TopProducts: nonNil(products),
		Trend14d:    nonNil(trend),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
