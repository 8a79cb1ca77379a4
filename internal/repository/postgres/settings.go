package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/pkg/database"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
)

// SettingsRepository implements notification preference persistence.
type SettingsRepository struct {
	pool database.DBTX
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(pool database.DBTX) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetPrefs returns apperrors.ErrNotFound when no row exists.
func (r *SettingsRepository) GetPrefs(ctx context.Context, userID string) (*domain.NotificationPrefs, error) {
	query := `
		SELECT email_product_insights, email_weekly_digest, email_security_alerts,
		       default_source, auto_save_analyses
		FROM notification_prefs
		WHERE user_id = $1`

	var (
		p      domain.NotificationPrefs
		source string
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.EmailProductInsights,
		&p.EmailWeeklyDigest,
		&p.EmailSecurityAlerts,
		&source,
		&p.AutoSaveAnalyses,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get notification prefs: %w", err)
	}
	p.DefaultSource = domain.NormalizeSource(source)
	return &p, nil
}

// UpsertPrefs writes p, replacing any earlier row. Last write wins.
func (r *SettingsRepository) UpsertPrefs(ctx context.Context, userID string, p domain.NotificationPrefs) error {
	query := `
		INSERT INTO notification_prefs (id, user_id, email_product_insights, email_weekly_digest,
		                                email_security_alerts, default_source, auto_save_analyses)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET email_product_insights = EXCLUDED.email_product_insights,
		    email_weekly_digest = EXCLUDED.email_weekly_digest,
		    email_security_alerts = EXCLUDED.email_security_alerts,
		    default_source = EXCLUDED.default_source,
		    auto_save_analyses = EXCLUDED.auto_save_analyses,
		    updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query,
		uuid.New().String(),
		userID,
		p.EmailProductInsights,
		p.EmailWeeklyDigest,
		p.EmailSecurityAlerts,
		string(p.DefaultSource),
		p.AutoSaveAnalyses,
	); err != nil {
		return fmt.Errorf("upsert notification prefs: %w", err)
	}
	return nil
}
