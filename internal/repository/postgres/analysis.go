package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/pkg/database"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
)

const analysisColumns = `id, user_id, source, product_name, product_url, reviews_text, review_count,
	score10, sentiment, summary, keywords, aspect_scores, created_at, updated_at`

// AnalysisRepository implements analysis persistence using PostgreSQL.
type AnalysisRepository struct {
	pool database.DBTX
}

// NewAnalysisRepository creates a new PostgreSQL-backed analysis repository.
func NewAnalysisRepository(pool database.DBTX) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

// Create inserts a new analysis.
func (r *AnalysisRepository) Create(ctx context.Context, a *domain.Analysis) error {
	query := `
		INSERT INTO product_analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		string(a.Source),
		a.ProductName,
		a.ProductURL,
		a.ReviewsText,
		a.ReviewCount,
		a.Score10,
		string(a.Sentiment),
		a.Summary,
		a.Keywords,
		a.AspectScores,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// GetByID returns the owner's analysis. Rows owned by someone else are
// reported as not found.
func (r *AnalysisRepository) GetByID(ctx context.Context, userID, id string) (*domain.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM product_analyses WHERE id = $1 AND user_id = $2`

	a, err := scanAnalysis(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("analysis", id)
		}
		return nil, fmt.Errorf("get analysis by id: %w", err)
	}
	return a, nil
}

// ListRecent returns up to limit analyses, newest first.
func (r *AnalysisRepository) ListRecent(ctx context.Context, userID string, since *time.Time, limit int) ([]domain.Analysis, error) {
	w := ownedBy(userID)
	if since != nil {
		w.add("created_at > ?", *since)
	}
	query := `SELECT ` + analysisColumns + ` FROM product_analyses ` + w.String() +
		` ORDER BY created_at DESC, id ASC LIMIT ` + w.next(1)

	rows, err := r.pool.Query(ctx, query, append(w.args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("list recent analyses: %w", err)
	}
	defer rows.Close()

	analyses := []domain.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		analyses = append(analyses, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis rows: %w", err)
	}
	return analyses, nil
}

// Stats computes whole-range aggregates in a single pass.
func (r *AnalysisRepository) Stats(ctx context.Context, userID string, dr domain.DateRange) (_ *domain.AnalysisStats, err error) {
	w := ownedBy(userID).dateRange(dr)
	query := `
		SELECT COUNT(*), COALESCE(SUM(review_count), 0), AVG(score10)::float8,
		       MAX(score10), MIN(score10), MAX(created_at)
		FROM product_analyses ` + w.String()

	ctx, end := database.TraceQuery(ctx, "AnalysisStats", query)
	defer func() { end(err) }()

	var s domain.AnalysisStats
	if err = r.pool.QueryRow(ctx, query, w.args...).Scan(
		&s.Total,
		&s.TotalReviews,
		&s.AvgScore,
		&s.BestScore,
		&s.WorstScore,
		&s.LastActivityAt,
	); err != nil {
		return nil, fmt.Errorf("analysis stats: %w", err)
	}
	return &s, nil
}

// CountHistory counts analyses matching f.
func (r *AnalysisRepository) CountHistory(ctx context.Context, userID string, f domain.HistoryFilter) (int, error) {
	w := ownedBy(userID).history(f)
	query := `SELECT COUNT(*) FROM product_analyses ` + w.String()

	var total int
	if err := r.pool.QueryRow(ctx, query, w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return total, nil
}

// SearchHistory returns one page of analyses matching f. Ties in the primary
// sort key are broken by id.
func (r *AnalysisRepository) SearchHistory(ctx context.Context, userID string, f domain.HistoryFilter, limit, offset int) (_ []domain.AnalysisListItem, err error) {
	w := ownedBy(userID).history(f)
	query := `
		SELECT id, product_name, source, score10, sentiment, created_at
		FROM product_analyses ` + w.String() + `
		ORDER BY ` + historyOrder(f.Sort) + `
		LIMIT ` + w.next(1) + ` OFFSET ` + w.next(2)

	ctx, end := database.TraceQuery(ctx, "SearchHistory", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, append(w.args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("search history: %w", err)
	}
	defer rows.Close()

	items := []domain.AnalysisListItem{}
	for rows.Next() {
		var (
			it        domain.AnalysisListItem
			source    string
			sentiment string
		)
		if err = rows.Scan(&it.ID, &it.ProductName, &source, &it.Score10, &sentiment, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		it.Source = domain.Source(source)
		it.Sentiment = sentimentOf(sentiment)
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return items, nil
}

// SentimentCounts groups analyses within dr by sentiment.
func (r *AnalysisRepository) SentimentCounts(ctx context.Context, userID string, dr domain.DateRange) (domain.SentimentCounts, error) {
	w := ownedBy(userID).dateRange(dr)
	query := `SELECT sentiment, COUNT(*) FROM product_analyses ` + w.String() + ` GROUP BY sentiment`

	var counts domain.SentimentCounts
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return counts, fmt.Errorf("sentiment counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return counts, fmt.Errorf("scan sentiment row: %w", err)
		}
		switch label {
		case "positive":
			counts.Positive = n
		case "neutral":
			counts.Neutral = n
		case "negative":
			counts.Negative = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("iterate sentiment rows: %w", err)
	}
	return counts, nil
}

// ScoreBuckets counts analyses per fixed score range.
func (r *AnalysisRepository) ScoreBuckets(ctx context.Context, userID string) (domain.ScoreBuckets, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE score10 BETWEEN 1 AND 3),
		       COUNT(*) FILTER (WHERE score10 BETWEEN 4 AND 6),
		       COUNT(*) FILTER (WHERE score10 BETWEEN 7 AND 8),
		       COUNT(*) FILTER (WHERE score10 BETWEEN 9 AND 10)
		FROM product_analyses
		WHERE user_id = $1`

	var b domain.ScoreBuckets
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&b.Low1To3, &b.Mid4To6, &b.Good7To8, &b.Great9To10); err != nil {
		return b, fmt.Errorf("score buckets: %w", err)
	}
	return b, nil
}

// TopSources ranks sources by count, then by name.
func (r *AnalysisRepository) TopSources(ctx context.Context, userID string, limit int) ([]domain.SourceStat, error) {
	query := `
		SELECT source, COUNT(*) AS n, AVG(score10)::float8
		FROM product_analyses
		WHERE user_id = $1
		GROUP BY source
		ORDER BY n DESC, source ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("top sources: %w", err)
	}
	defer rows.Close()

	stats := []domain.SourceStat{}
	for rows.Next() {
		var s domain.SourceStat
		if err := rows.Scan(&s.Source, &s.Count, &s.AvgScore); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}
	return stats, nil
}

// TopProducts ranks product names within dr by count, then by name.
func (r *AnalysisRepository) TopProducts(ctx context.Context, userID string, dr domain.DateRange, limit int) ([]domain.ProductStat, error) {
	w := ownedBy(userID).dateRange(dr)
	query := `
		SELECT product_name, COUNT(*) AS n, AVG(score10)::float8
		FROM product_analyses ` + w.String() + `
		GROUP BY product_name
		ORDER BY n DESC, product_name ASC
		LIMIT ` + w.next(1)

	rows, err := r.pool.Query(ctx, query, append(w.args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	stats := []domain.ProductStat{}
	for rows.Next() {
		var s domain.ProductStat
		if err := rows.Scan(&s.ProductName, &s.Count, &s.AvgScore); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return stats, nil
}

// DailyTrend groups analyses created at or after since by UTC calendar day,
// oldest first. Days without analyses are absent.
func (r *AnalysisRepository) DailyTrend(ctx context.Context, userID string, since time.Time) (_ []domain.TrendPoint, err error) {
	query := `
		SELECT to_char(date_trunc('day', created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day,
		       COUNT(*), AVG(score10)::float8
		FROM product_analyses
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY 1
		ORDER BY 1 ASC`

	ctx, end := database.TraceQuery(ctx, "DailyTrend", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	defer rows.Close()

	points := []domain.TrendPoint{}
	for rows.Next() {
		var p domain.TrendPoint
		if err = rows.Scan(&p.Day, &p.Count, &p.AvgScore); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		points = append(points, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend rows: %w", err)
	}
	return points, nil
}

func scanAnalysis(row pgx.Row) (*domain.Analysis, error) {
	var (
		a         domain.Analysis
		source    string
		sentiment string
	)
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&source,
		&a.ProductName,
		&a.ProductURL,
		&a.ReviewsText,
		&a.ReviewCount,
		&a.Score10,
		&sentiment,
		&a.Summary,
		&a.Keywords,
		&a.AspectScores,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Source = domain.Source(source)
	a.Sentiment = sentimentOf(sentiment)
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	if a.AspectScores == nil {
		a.AspectScores = map[string]int{}
	}
	return &a, nil
}
