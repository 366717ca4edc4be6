package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupreneurx/submissions-api/internal/models"
)

const notificationColumns = `id, kind, recipients, submission_id, payload, status, attempts, last_error, message_id, created_at, updated_at, sent_at`

// NotificationRepository stores the email outbox.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a pending outbox row.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = models.NotificationPending
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	const query = `INSERT INTO notification_outbox (` + notificationColumns + `)
VALUES (:id, :kind, :recipients, :submission_id, :payload, :status, :attempts, :last_error, :message_id, :created_at, :updated_at, :sent_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// GetByID returns an outbox row.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notification_outbox WHERE id = $1`
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

// MarkSent records a successful delivery.
func (r *NotificationRepository) MarkSent(ctx context.Context, id, messageID string, attempts int) error {
	now := time.Now().UTC()
	const query = `UPDATE notification_outbox SET status = $1, message_id = $2, attempts = $3, last_error = NULL, sent_at = $4, updated_at = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, models.NotificationSent, nullableString(messageID), attempts, now, id)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return requireAffected(res, "mark notification sent")
}

// MarkAttempt records a failed delivery. status is pending while retries
// remain and failed once the worker gives up.
func (r *NotificationRepository) MarkAttempt(ctx context.Context, id string, status models.NotificationStatus, attempts int, lastError string) error {
	const query = `UPDATE notification_outbox SET status = $1, attempts = $2, last_error = $3, updated_at = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, status, attempts, lastError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark notification attempt: %w", err)
	}
	return requireAffected(res, "mark notification attempt")
}

// ListPending returns pending rows oldest first, used to replay the outbox at boot.
func (r *NotificationRepository) ListPending(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + notificationColumns + ` FROM notification_outbox WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1`
	var items []models.Notification
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	return items, nil
}

// List returns a page of outbox rows newest first.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM notification_outbox"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf("SELECT %s FROM notification_outbox%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", notificationColumns, where, len(args)-1, len(args))

	var items []models.Notification
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, total, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
