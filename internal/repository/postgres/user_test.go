package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Piyushkr001/revix/internal/domain"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
)

func newUserTestFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewUserRepository(mock), mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:        "user_2abc",
		Email:     "ada@example.com",
		Name:      ptr("Ada Lovelace"),
		ImageURL:  nil,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func userColumnNames() []string {
	return []string{"id", "email", "name", "image_url", "is_active", "created_at", "updated_at"}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumnNames()).
		AddRow(u.ID, u.Email, u.Name, u.ImageURL, u.IsActive, u.CreatedAt, u.UpdatedAt)
}

func TestUserRepository_Upsert_Inserted(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery("INSERT INTO users .+ ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs(u.ID, u.Email, u.Name, u.ImageURL, u.IsActive, u.CreatedAt, u.UpdatedAt).
		WillReturnRows(pgxmock.NewRows(append(userColumnNames(), "inserted")).
			AddRow(u.ID, u.Email, u.Name, u.ImageURL, u.IsActive, u.CreatedAt, u.UpdatedAt, true))

	got, created, err := repo.Upsert(context.Background(), u)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Ada Lovelace", *got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Upsert_KeepsOriginalCreatedAt(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	original := u.CreatedAt.Add(-48 * time.Hour)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.Name, u.ImageURL, u.IsActive, u.CreatedAt, u.UpdatedAt).
		WillReturnRows(pgxmock.NewRows(append(userColumnNames(), "inserted")).
			AddRow(u.ID, u.Email, u.Name, u.ImageURL, u.IsActive, original, u.UpdatedAt, false))

	got, created, err := repo.Upsert(context.Background(), u)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, original, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_EnsureExists(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("ON CONFLICT \\(id\\) DO NOTHING").
		WithArgs(u.ID, u.Email, u.Name, u.ImageURL, u.IsActive, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, repo.EnsureExists(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Exists(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user_2abc").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "user_2abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	u.ImageURL = ptr("https://img.example.com/a.png")
	var name *string

	mock.ExpectQuery("UPDATE users").
		WithArgs(u.ID, name, u.ImageURL).
		WillReturnRows(userRow(u))

	got, err := repo.UpdateProfile(context.Background(), u.ID, nil, u.ImageURL)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/a.png", *got.ImageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("UPDATE users").
		WithArgs("missing", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateProfile(context.Background(), "missing", ptr("x"), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Deactivate(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE users SET is_active = FALSE").
		WithArgs("user_2abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Deactivate(context.Background(), "user_2abc"))

	mock.ExpectExec("UPDATE users SET is_active = FALSE").
		WithArgs("user_2abc").
		WillReturnError(errors.New("boom"))
	assert.Error(t, repo.Deactivate(context.Background(), "user_2abc"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
