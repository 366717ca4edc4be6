package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupreneurx/submissions-api/internal/models"
)

var adminColumnNames = []string{"id", "email", "password_hash", "full_name", "active", "last_login", "created_at", "updated_at"}

func TestAdminFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(adminColumnNames).AddRow("1", "info@edupreneurx.com", "hash", "Info Desk", true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, active, last_login, created_at, updated_at FROM admin_users WHERE LOWER(email) = $1 LIMIT 1")).
		WithArgs("info@edupreneurx.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), " Info@EduPreneurX.com ")
	require.NoError(t, err)
	assert.Equal(t, "Info Desk", user.FullName)
	assert.Nil(t, user.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admin_users WHERE id = $1")).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestAdminCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	mock.ExpectExec("INSERT INTO admin_users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.AdminUser{Email: "Ops@EduPreneurX.com", PasswordHash: "hash", FullName: "Ops", Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ops@edupreneurx.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUpdatePassword(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admin_users SET password_hash = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("1", "new-hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), "1", "new-hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
