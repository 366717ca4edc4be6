package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edupreneurx/submissions-api/internal/emails"
	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
	"github.com/edupreneurx/submissions-api/pkg/jobs"
)

const (
	recoverBatchSize   = 100
	outboxWriteTimeout = 5 * time.Second
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	MarkSent(ctx context.Context, id, messageID string, attempts int) error
	MarkAttempt(ctx context.Context, id string, status models.NotificationStatus, attempts int, lastError string) error
	ListPending(ctx context.Context, limit int) ([]models.Notification, error)
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// NotifierConfig sets who receives staff copies.
type NotifierConfig struct {
	AdminAddress string
	NotifyStaff  bool
}

// Notifier records outgoing emails in the outbox and schedules their delivery.
// Queueing never blocks: rows that do not fit stay pending and are replayed by
// RecoverPending, which runs at boot and on a schedule.
type Notifier struct {
	store  notificationStore
	queue  jobEnqueuer
	logger *zap.Logger
	cfg    NotifierConfig
}

// NewNotifier constructs a Notifier. A nil queue leaves every row pending.
func NewNotifier(store notificationStore, queue jobEnqueuer, logger *zap.Logger, cfg NotifierConfig) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{store: store, queue: queue, logger: logger, cfg: cfg}
}

// SubmissionCreated queues the confirmation and, when enabled, the staff copy.
// The outbox writes outlive a cancelled request ctx.
func (n *Notifier) SubmissionCreated(ctx context.Context, s models.Submission) {
	ctx, cancel := detach(ctx)
	defer cancel()
	id := s.ID
	if _, err := n.Enqueue(ctx, models.EmailConfirmation, []string{s.Email}, &id, emails.ConfirmationFromSubmission(s, false)); err != nil {
		n.logger.Sugar().Errorw("failed to queue confirmation", "submission_id", s.ID, "reference", s.ReferenceNumber, "error", err)
	}
	if !n.cfg.NotifyStaff || n.cfg.AdminAddress == "" {
		return
	}
	if _, err := n.Enqueue(ctx, models.EmailConfirmation, []string{n.cfg.AdminAddress}, &id, emails.ConfirmationFromSubmission(s, true)); err != nil {
		n.logger.Sugar().Errorw("failed to queue staff copy", "submission_id", s.ID, "reference", s.ReferenceNumber, "error", err)
	}
}

// StatusChanged queues the status-update email. s carries the identity
// fields read before the patch.
func (n *Notifier) StatusChanged(ctx context.Context, s models.Submission, oldStatus, newStatus models.SubmissionStatus) {
	ctx, cancel := detach(ctx)
	defer cancel()
	id := s.ID
	if _, err := n.Enqueue(ctx, models.EmailStatusUpdate, []string{s.Email}, &id, emails.StatusUpdateFromSubmission(s, oldStatus, newStatus)); err != nil {
		n.logger.Sugar().Errorw("failed to queue status update", "submission_id", s.ID, "old_status", oldStatus, "new_status", newStatus, "error", err)
	}
}

// Digest queues the admin digest.
func (n *Notifier) Digest(ctx context.Context, data emails.DigestData) (*models.Notification, error) {
	if n.cfg.AdminAddress == "" {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "admin address not configured")
	}
	return n.Enqueue(ctx, models.EmailAdminDigest, []string{n.cfg.AdminAddress}, nil, data)
}

// Enqueue writes a pending outbox row for payload and pushes it to the queue.
// Only the outbox write can fail; queue errors are logged.
func (n *Notifier) Enqueue(ctx context.Context, kind models.EmailKind, recipients []string, submissionID *string, payload interface{}) (*models.Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	record := &models.Notification{
		ID:           uuid.NewString(),
		Kind:         kind,
		Recipients:   recipients,
		SubmissionID: submissionID,
		Payload:      raw,
		Status:       models.NotificationPending,
	}
	if err := n.store.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to record notification")
	}

	n.push(record)
	return record, nil
}

// RecoverPending re-queues pending rows that are not already in the queue and
// returns how many were queued.
func (n *Notifier) RecoverPending(ctx context.Context) int {
	pending, err := n.store.ListPending(ctx, recoverBatchSize)
	if err != nil {
		n.logger.Sugar().Warnw("failed to recover pending notifications", "error", err)
		return 0
	}
	queued := 0
	for i := range pending {
		if n.push(&pending[i]) {
			queued++
		}
	}
	if queued > 0 {
		n.logger.Sugar().Infow("recovered pending notifications", "count", queued, "pending", len(pending))
	}
	return queued
}

// List returns outbox rows for the admin console.
func (n *Notifier) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error) {
	if filter.Status != "" && filter.Status != models.NotificationPending && filter.Status != models.NotificationSent && filter.Status != models.NotificationFailed {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown notification status")
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown email type")
	}
	filter.Page, filter.PageSize = pageOrDefault(filter.Page, filter.PageSize)

	items, total, err := n.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list notifications")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

func (n *Notifier) push(record *models.Notification) bool {
	if n.queue == nil {
		return false
	}
	err := n.queue.TryEnqueue(jobs.Job{ID: record.ID, Type: string(record.Kind)})
	switch {
	case err == nil:
		return true
	case errors.Is(err, jobs.ErrJobActive):
	case errors.Is(err, jobs.ErrQueueFull):
		n.logger.Sugar().Infow("notification queue full, left pending", "notification_id", record.ID, "kind", record.Kind)
	default:
		n.logger.Sugar().Warnw("failed to queue notification", "notification_id", record.ID, "kind", record.Kind, "error", err)
	}
	return false
}

// detach keeps request values such as the request id but drops its
// cancellation, bounding the outbox write on its own.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), outboxWriteTimeout)
}

func pageOrDefault(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
