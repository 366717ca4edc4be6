package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/edupreneurx/submissions-api/internal/dto"
	"github.com/edupreneurx/submissions-api/internal/emails"
	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
)

type pendingSubmissionLister interface {
	ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.Submission, error)
}

type digestNotifier interface {
	Digest(ctx context.Context, data emails.DigestData) (*models.Notification, error)
}

// DigestConfig controls the empty-digest policy.
type DigestConfig struct {
	SkipEmpty bool
}

// DigestService builds the daily summary of submissions still awaiting contact.
type DigestService struct {
	store    pendingSubmissionLister
	notifier digestNotifier
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      DigestConfig
	now      func() time.Time
}

// NewDigestService constructs a DigestService.
func NewDigestService(store pendingSubmissionLister, notifier digestNotifier, metrics *MetricsService, logger *zap.Logger, cfg DigestConfig) *DigestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DigestService{store: store, notifier: notifier, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
}

// Run collects every submission in status new and queues the digest. With
// SkipEmpty set an empty result queues nothing.
func (s *DigestService) Run(ctx context.Context) (*dto.DigestRunResponse, error) {
	pending, err := s.store.ListByStatus(ctx, models.StatusNew)
	if err != nil {
		s.metrics.ObserveDigestRun(DispatchResultFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load pending submissions")
	}

	result := &dto.DigestRunResponse{Pending: len(pending)}
	if len(pending) == 0 && s.cfg.SkipEmpty {
		s.metrics.ObserveDigestRun(DispatchResultSkipped)
		s.logger.Sugar().Infow("digest skipped", "pending", 0)
		return result, nil
	}

	record, err := s.notifier.Digest(ctx, emails.DigestFromSubmissions(pending, s.now().UTC()))
	if err != nil {
		s.metrics.ObserveDigestRun(DispatchResultFailed)
		return nil, err
	}

	s.metrics.ObserveDigestRun("queued")
	s.logger.Sugar().Infow("digest queued", "pending", len(pending), "notification_id", record.ID)
	result.Queued = true
	result.NotificationID = record.ID
	return result, nil
}
