package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/edupreneurx/submissions-api/internal/dto"
	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
	"github.com/edupreneurx/submissions-api/pkg/jobs"
)

const giveUpTimeout = 5 * time.Second

type emailDispatcher interface {
	Dispatch(ctx context.Context, req dto.EmailRequest) (*dto.EmailResponse, error)
}

// NotificationWorker delivers outbox rows pulled from the queue.
type NotificationWorker struct {
	store      notificationStore
	dispatcher emailDispatcher
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewNotificationWorker constructs a worker.
func NewNotificationWorker(store notificationStore, dispatcher emailDispatcher, metrics *MetricsService, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{store: store, dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// Handle sends one notification. Configuration and validation failures are
// returned as permanent so the queue does not retry them.
func (w *NotificationWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.store.GetByID(ctx, job.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return jobs.Permanent(err)
		}
		return err
	}
	if record.Status != models.NotificationPending {
		return nil
	}

	attempts := record.Attempts + 1
	resp, err := w.dispatcher.Dispatch(ctx, dto.EmailRequest{
		Type: record.Kind,
		To:   record.Recipients,
		Data: []byte(record.Payload),
	})
	if err != nil {
		if markErr := w.store.MarkAttempt(ctx, record.ID, models.NotificationPending, attempts, err.Error()); markErr != nil {
			w.logger.Sugar().Warnw("failed to record notification attempt", "notification_id", record.ID, "error", markErr)
		}
		if errors.Is(err, appErrors.ErrConfiguration) || errors.Is(err, appErrors.ErrValidation) {
			return jobs.Permanent(err)
		}
		w.metrics.ObserveNotification(string(record.Kind), DispatchResultRetry)
		return err
	}

	if err := w.store.MarkSent(ctx, record.ID, resp.MessageID, attempts); err != nil {
		w.logger.Sugar().Warnw("failed to mark notification sent", "notification_id", record.ID, "error", err)
	}
	w.metrics.ObserveNotification(string(record.Kind), DispatchResultSent)
	return nil
}

// GiveUp marks a notification failed once the queue stops retrying it.
func (w *NotificationWorker) GiveUp(job jobs.Job, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), giveUpTimeout)
	defer cancel()

	w.metrics.ObserveNotification(job.Type, DispatchResultFailed)

	record, err := w.store.GetByID(ctx, job.ID)
	if err != nil {
		w.logger.Sugar().Warnw("failed to load abandoned notification", "notification_id", job.ID, "error", err)
		return
	}
	if err := w.store.MarkAttempt(ctx, record.ID, models.NotificationFailed, record.Attempts, cause.Error()); err != nil {
		w.logger.Sugar().Warnw("failed to mark notification failed", "notification_id", record.ID, "error", err)
		return
	}
	w.logger.Sugar().Errorw("notification abandoned", "notification_id", record.ID, "kind", record.Kind, "attempts", record.Attempts, "error", cause)
}
