package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupreneurx/submissions-api/internal/models"
)

var notificationColumnNames = []string{"id", "kind", "recipients", "submission_id", "payload", "status", "attempts", "last_error", "message_id", "created_at", "updated_at", "sent_at"}

func TestNotificationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notification_outbox")).
		WithArgs(anyArgs(len(notificationColumnNames))...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	n := &models.Notification{
		Kind:       models.EmailConfirmation,
		Recipients: []string{"ada@example.com"},
		Payload:    types.JSONText(`{"referenceNumber":"EduPX140420250042"}`),
	}
	require.NoError(t, repo.Create(context.Background(), n))
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, models.NotificationPending, n.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkSent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_outbox SET status = $1, message_id = $2, attempts = $3, last_error = NULL, sent_at = $4, updated_at = $4 WHERE id = $5")).
		WithArgs("sent", "msg-1", 1, sqlmock.AnyArg(), "n-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkSent(context.Background(), "n-1", "msg-1", 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkAttemptMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_outbox SET status = $1, attempts = $2, last_error = $3, updated_at = $4 WHERE id = $5")).
		WithArgs("failed", 3, "provider down", sqlmock.AnyArg(), "n-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkAttempt(context.Background(), "n-x", models.NotificationFailed, 3, "provider down")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestNotificationRepositoryListPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(notificationColumnNames).
		AddRow("n-1", "status-update", "{ada@example.com}", "sub-1", `{"newStatus":"contacted"}`, "pending", 1, "timeout", nil, now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_outbox WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(100).
		WillReturnRows(rows)

	items, err := repo.ListPending(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.EmailStatusUpdate, items[0].Kind)
	assert.Equal(t, []string{"ada@example.com"}, []string(items[0].Recipients))
	assert.JSONEq(t, `{"newStatus":"contacted"}`, string(items[0].Payload))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notification_outbox WHERE status = $1")).
		WithArgs("failed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("failed", 20, 0).
		WillReturnRows(sqlmock.NewRows(notificationColumnNames))

	items, total, err := repo.List(context.Background(), models.NotificationFilter{Status: models.NotificationFailed})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}
