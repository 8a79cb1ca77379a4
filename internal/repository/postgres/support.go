package postgres

import (
	"context"
	"fmt"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/pkg/database"
)

const ticketColumns = `id, user_id, subject, message, category, priority, status, meta, is_deleted, created_at, updated_at`

// SupportRepository implements support ticket persistence.
type SupportRepository struct {
	pool database.DBTX
}

// NewSupportRepository creates a new PostgreSQL-backed support repository.
func NewSupportRepository(pool database.DBTX) *SupportRepository {
	return &SupportRepository{pool: pool}
}

// Create inserts a ticket.
func (r *SupportRepository) Create(ctx context.Context, t *domain.SupportTicket) error {
	query := `
		INSERT INTO support_tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Subject,
		t.Message,
		string(t.Category),
		string(t.Priority),
		t.Status,
		t.Meta,
		t.IsDeleted,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert support ticket: %w", err)
	}
	return nil
}

// ListByUser returns the owner's tickets that are not soft-deleted, newest first.
func (r *SupportRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SupportTicket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM support_tickets
		WHERE user_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list support tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.SupportTicket{}
	for rows.Next() {
		var (
			t                  domain.SupportTicket
			category, priority string
		)
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Subject,
			&t.Message,
			&category,
			&priority,
			&t.Status,
			&t.Meta,
			&t.IsDeleted,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan support ticket row: %w", err)
		}
		t.Category = domain.TicketCategory(category)
		t.Priority = domain.TicketPriority(priority)
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate support ticket rows: %w", err)
	}
	return tickets, nil
}
