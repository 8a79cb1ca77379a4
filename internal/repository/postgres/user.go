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

const userColumns = `id, email, name, image_url, is_active, created_at, updated_at`

// UserRepository implements the identity mirror using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert inserts u or refreshes email, name and image of an existing row.
// created reports whether the row was inserted.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) (*domain.User, bool, error) {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    image_url = EXCLUDED.image_url,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + userColumns + `, (xmax = 0) AS inserted`

	var (
		out      domain.User
		inserted bool
	)
	err := r.pool.QueryRow(ctx, query,
		u.ID, u.Email, u.Name, u.ImageURL, u.IsActive, u.CreatedAt, u.UpdatedAt,
	).Scan(
		&out.ID, &out.Email, &out.Name, &out.ImageURL, &out.IsActive, &out.CreatedAt, &out.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert user: %w", err)
	}
	return &out, inserted, nil
}

// EnsureExists inserts u unless a row with the same id exists.
func (r *UserRepository) EnsureExists(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.Name, u.ImageURL, u.IsActive, u.CreatedAt, u.UpdatedAt,
	); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// GetByID returns the mirror row or NOT_FOUND.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// Exists reports whether a mirror row exists for id.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// UpdateProfile sets the non-nil fields and bumps updated_at.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, name, imageURL *string) (*domain.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    image_url = COALESCE($3, image_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, id, name, imageURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return u, nil
}

// Deactivate clears is_active. Missing rows are not an error.
func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id,
	); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.ImageURL, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
