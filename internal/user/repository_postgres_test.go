package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "name", "email", "password", "role", "created_at", "updated_at"}

func TestPostgresRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM users WHERE lower").WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(3, "A", "a@example.com", "$2a$hash", "admin", now, now))
	mock.ExpectQuery("FROM users WHERE lower").WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	u, err := repo.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, u.ID)
	assert.Equal(t, RoleAdmin, u.Role)

	_, err = repo.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("B", "b@example.com", "hash", RoleCustomer).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = repo.Create(context.Background(), User{Name: "B", Email: "b@example.com", Password: "hash", Role: RoleCustomer})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdatePasswordMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE users SET password").WithArgs("h", 77).WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdatePassword(context.Background(), 77, "h")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM users WHERE id = ANY").WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "A", "a@example.com", "x", "customer", now, now).
			AddRow(2, "B", "b@example.com", "x", "customer", now, now))

	users, err := repo.ListByIDs(context.Background(), []int{1, 2})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	empty, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}
