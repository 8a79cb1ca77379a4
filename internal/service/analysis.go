package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/repository"
	"github.com/Piyushkr001/revix/internal/scoring"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
	"github.com/Piyushkr001/revix/pkg/pagination"
	"github.com/Piyushkr001/revix/pkg/tracing"
)

// RecentBounds limits the recent-analyses list.
var RecentBounds = pagination.Bounds{Default: 10, Min: 1, Max: 50}

// SubmitAnalysisInput holds a review submission.
type SubmitAnalysisInput struct {
	Source      string
	ProductName string
	ProductURL  string
	ReviewsText string
	ReviewCount int
}

// AnalysisService scores submissions and serves the caller's analyses.
type AnalysisService struct {
	repo    repository.AnalysisRepository
	events  EventPublisher
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(repo repository.AnalysisRepository, events EventPublisher, metrics *Metrics, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		repo:    repo,
		events:  events,
		metrics: metrics,
		logger:  logger,
		now:     utcNow,
	}
}

// ValidateSubmission checks the fields a submission cannot be scored
// without. The HTTP layer runs it before the profile and rate-limit checks.
func ValidateSubmission(input *SubmitAnalysisInput) error {
	if strings.TrimSpace(input.ProductName) == "" {
		return apperrors.InvalidInput("Product name is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.ReviewsText)) < domain.MinReviewsTextLen {
		return apperrors.InvalidInput(fmt.Sprintf("Please provide at least %d characters of reviews", domain.MinReviewsTextLen))
	}
	if input.ReviewCount < 0 {
		return apperrors.InvalidInput("reviewCount must not be negative")
	}
	return nil
}

// Submit scores the review text and stores the analysis.
func (s *AnalysisService) Submit(ctx context.Context, userID string, input *SubmitAnalysisInput) (*domain.Analysis, error) {
	if err := ValidateSubmission(input); err != nil {
		return nil, err
	}
	productName := strings.TrimSpace(input.ProductName)
	reviewsText := strings.TrimSpace(input.ReviewsText)

	var productURL *string
	if u := strings.TrimSpace(input.ProductURL); u != "" {
		productURL = &u
	}

	result := scoring.Score(reviewsText)
	now := s.now()
	a := &domain.Analysis{
		ID:           uuid.New().String(),
		UserID:       userID,
		Source:       domain.NormalizeSource(input.Source),
		ProductName:  productName,
		ProductURL:   productURL,
		ReviewsText:  reviewsText,
		ReviewCount:  input.ReviewCount,
		Score10:      result.Score10,
		Sentiment:    result.Sentiment,
		Summary:      result.Summary,
		Keywords:     result.Keywords,
		AspectScores: map[string]int{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	s.metrics.analysisScored(a.Sentiment)

	s.logger.InfoContext(ctx, "analysis created",
		slog.String("analysis_id", a.ID),
		slog.String("source", string(a.Source)),
		slog.Int("score10", a.Score10),
		slog.String("sentiment", string(a.Sentiment)),
	)

	if err := s.events.PublishAnalysisCreated(ctx, a); err != nil {
		logPublishError(ctx, s.logger, "analysis.created", a.ID, err)
	}
	return a, nil
}

// ListRecent returns the caller's newest analyses. limit is clamped to
// RecentBounds.
func (s *AnalysisService) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Analysis, error) {
	items, err := s.repo.ListRecent(ctx, userID, nil, RecentBounds.Clamp(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent analyses: %w", err)
	}
	return items, nil
}

// Get returns one of the caller's analyses.
func (s *AnalysisService) Get(ctx context.Context, userID, id string) (*domain.Analysis, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Search runs a history query. The total is counted first and the page is
// clamped into the resulting range before fetching.
func (s *AnalysisService) Search(ctx context.Context, userID string, f domain.HistoryFilter, p pagination.Params) (_ *pagination.Result[domain.AnalysisListItem], err error) {
	ctx, end := tracing.StartSpan(ctx, tracerName, "analysis.Search", attribute.String("history.sort", string(f.Sort)))
	defer func() { end(err) }()

	f.MinScore = pagination.Clamp(f.MinScore, scoring.MinScore, scoring.MaxScore)
	f.MaxScore = pagination.Clamp(f.MaxScore, scoring.MinScore, scoring.MaxScore)

	total, err := s.repo.CountHistory(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	w := p.Resolve(total)
	if total == 0 {
		res := pagination.NewResult[domain.AnalysisListItem](nil, w)
		return &res, nil
	}

	items, err := s.repo.SearchHistory(ctx, userID, f, w.PageSize, w.Offset)
	if err != nil {
		return nil, fmt.Errorf("search history: %w", err)
	}
	res := pagination.NewResult(items, w)
	return &res, nil
}
