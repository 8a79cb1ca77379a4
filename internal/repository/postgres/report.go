package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/pkg/database"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
)

const reportColumns = `id, user_id, title, preset, date_from, date_to, kpis, sentiment, top_products, created_at`

// ReportRepository implements report snapshot persistence using PostgreSQL.
// Snapshots are insert-only.
type ReportRepository struct {
	pool database.DBTX
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool database.DBTX) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create inserts a snapshot. The JSON columns hold the frozen aggregates.
func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		rep.ID,
		rep.UserID,
		rep.Title,
		string(rep.Preset),
		rep.DateFrom,
		rep.DateTo,
		rep.KPIs,
		rep.Sentiment,
		rep.TopProducts,
		rep.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetByID returns the owner's report or NOT_FOUND.
func (r *ReportRepository) GetByID(ctx context.Context, userID, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1 AND user_id = $2`

	rep, err := scanReport(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("report", id)
		}
		return nil, fmt.Errorf("get report by id: %w", err)
	}
	return rep, nil
}

// List returns the owner's newest reports.
func (r *ReportRepository) List(ctx context.Context, userID string, limit int) ([]domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE user_id = $1 ORDER BY created_at DESC, id ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		reports = append(reports, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return reports, nil
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var (
		rep    domain.Report
		preset string
	)
	if err := row.Scan(
		&rep.ID,
		&rep.UserID,
		&rep.Title,
		&preset,
		&rep.DateFrom,
		&rep.DateTo,
		&rep.KPIs,
		&rep.Sentiment,
		&rep.TopProducts,
		&rep.CreatedAt,
	); err != nil {
		return nil, err
	}
	rep.Preset = domain.Preset(preset)
	if rep.TopProducts == nil {
		rep.TopProducts = []domain.ReportProduct{}
	}
	return &rep, nil
}
