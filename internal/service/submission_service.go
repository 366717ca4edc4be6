package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edupreneurx/submissions-api/internal/dto"
	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
)

const submissionReceivedMessage = "Submission received successfully"

type submissionStore interface {
	Create(ctx context.Context, s *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByReference(ctx context.Context, reference string) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
	ListByType(ctx context.Context, t models.SubmissionType) ([]models.Submission, error)
	ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.Submission, error)
	UpdateStatus(ctx context.Context, id string, patch models.StatusPatch) error
	Delete(ctx context.Context, id string) error
}

type referenceGenerator interface {
	GenerateAt(at time.Time) string
}

type submissionNotifier interface {
	SubmissionCreated(ctx context.Context, s models.Submission)
	StatusChanged(ctx context.Context, s models.Submission, oldStatus, newStatus models.SubmissionStatus)
}

// SubmissionServiceConfig tunes caching of the dashboard statistics.
type SubmissionServiceConfig struct {
	StatsCacheTTL time.Duration
}

// SubmissionService owns the submission lifecycle: intake, admin triage and
// the dashboard read paths.
type SubmissionService struct {
	store     submissionStore
	refs      referenceGenerator
	notifier  submissionNotifier
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SubmissionServiceConfig
	now       func() time.Time
}

// NewSubmissionService wires the lifecycle controller. cache, metrics and
// notifier may be nil.
func NewSubmissionService(store submissionStore, refs referenceGenerator, notifier submissionNotifier, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SubmissionServiceConfig) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.StatsCacheTTL <= 0 {
		cfg.StatsCacheTTL = defaultStatsCacheTTL
	}
	return &SubmissionService{
		store:     store,
		refs:      refs,
		notifier:  notifier,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create validates and stores a form submission, then queues the
// confirmation emails. Answers are stored exactly as submitted; only the
// required fields are checked. Notification problems never fail the request.
func (s *SubmissionService) Create(ctx context.Context, req dto.CreateSubmissionRequest) (*dto.CreateSubmissionResponse, error) {
	check := req
	check.FirstName = strings.TrimSpace(req.FirstName)
	check.LastName = strings.TrimSpace(req.LastName)
	check.Email = strings.TrimSpace(req.Email)
	check.Phone = strings.TrimSpace(req.Phone)
	check.Country = strings.TrimSpace(req.Country)

	if err := s.validator.Struct(check); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "missing required fields")
	}
	if foreign := req.SubmissionFields.ForeignTo(req.SubmissionType); len(foreign) > 0 {
		s.logger.Sugar().Infow("submission carries answers owned by other types", "type", req.SubmissionType, "fields", foreign)
	}

	submittedAt := s.now().UTC()
	record := &models.Submission{
		ReferenceNumber:  s.refs.GenerateAt(submittedAt),
		SubmissionType:   req.SubmissionType,
		SubmissionDate:   submittedAt,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Country:          req.Country,
		ProgramPosition:  req.ProgramPosition,
		Status:           models.StatusNew,
		SubmissionFields: req.SubmissionFields,
	}
	if err := s.store.Create(ctx, record); err != nil {
		s.logger.Sugar().Errorw("failed to store submission", "type", record.SubmissionType, "reference", record.ReferenceNumber, "error", err)
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to save submission")
	}

	s.invalidate(ctx)
	s.metrics.ObserveSubmission(string(record.SubmissionType))
	s.logger.Sugar().Infow("submission received", "submission_id", record.ID, "type", record.SubmissionType, "reference", record.ReferenceNumber)

	if s.notifier != nil {
		s.notifier.SubmissionCreated(ctx, *record)
	}

	return &dto.CreateSubmissionResponse{
		Success:         true,
		ReferenceNumber: record.ReferenceNumber,
		SubmissionID:    record.ID,
		Message:         submissionReceivedMessage,
	}, nil
}

// UpdateStatus applies an admin status change. The submitter is notified only
// when the status actually changes.
func (s *SubmissionService) UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusRequest) (*dto.SuccessResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	id = current.ID
	oldStatus := current.Status.OrNew()

	patch := models.StatusPatch{Status: req.Status, AdminNotes: req.AdminNotes, FollowUpDate: req.FollowUpDate}
	if err := s.store.UpdateStatus(ctx, id, patch); err != nil {
		return nil, translateStoreError(err, "submission not found", "failed to update submission")
	}
	s.invalidate(ctx)

	s.logger.Sugar().Infow("submission status updated", "submission_id", id, "old_status", oldStatus, "new_status", req.Status)
	if oldStatus != req.Status && s.notifier != nil {
		s.notifier.StatusChanged(ctx, *current, oldStatus, req.Status)
	}

	return &dto.SuccessResponse{Success: true}, nil
}

// Delete permanently removes a submission.
func (s *SubmissionService) Delete(ctx context.Context, id string) (*dto.SuccessResponse, error) {
	id, err := submissionID(id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, translateStoreError(err, "submission not found", "failed to delete submission")
	}
	s.invalidate(ctx)
	s.logger.Sugar().Infow("submission deleted", "submission_id", id)
	return &dto.SuccessResponse{Success: true}, nil
}

// Get returns a submission by id.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	id, err := submissionID(id)
	if err != nil {
		return nil, err
	}
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "submission not found", "failed to load submission")
	}
	return record, nil
}

// GetByReference returns the first submission carrying reference.
func (s *SubmissionService) GetByReference(ctx context.Context, reference string) (*models.Submission, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reference number is required")
	}
	record, err := s.store.FindByReference(ctx, reference)
	if err != nil {
		return nil, translateStoreError(err, "submission not found", "failed to load submission")
	}
	return record, nil
}

// List returns a filtered page of submissions, newest first.
func (s *SubmissionService) List(ctx context.Context, query dto.ListSubmissionsQuery) ([]models.Submission, *models.Pagination, error) {
	filter := models.SubmissionFilter{
		Type:   models.SubmissionType(strings.TrimSpace(query.Type)),
		Status: models.SubmissionStatus(strings.TrimSpace(query.Status)),
		Search: strings.TrimSpace(query.Search),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown submission type")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown submission status")
	}
	filter.Page, filter.PageSize = pageOrDefault(query.Page, query.Limit)

	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list submissions")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ListByType returns every submission of type t, newest first.
func (s *SubmissionService) ListByType(ctx context.Context, t models.SubmissionType) ([]models.Submission, error) {
	if !t.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown submission type")
	}
	items, err := s.store.ListByType(ctx, t)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list submissions")
	}
	return items, nil
}

// ListByStatus returns every submission in status, newest first.
func (s *SubmissionService) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.Submission, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown submission status")
	}
	items, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list submissions")
	}
	return items, nil
}

// Stats aggregates the whole collection for the dashboard.
func (s *SubmissionService) Stats(ctx context.Context) (*models.SubmissionStats, error) {
	var cached models.SubmissionStats
	if s.cache.Get(ctx, cacheKeyStats, &cached) {
		return &cached, nil
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to compute statistics")
	}
	stats := models.BuildSubmissionStats(records)
	s.cache.Set(ctx, cacheKeyStats, stats, s.cfg.StatsCacheTTL)
	return &stats, nil
}

func (s *SubmissionService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, cachePatternSubmits)
}

// submissionID canonicalises id. Anything that is not a UUID cannot name a
// stored submission and is reported as not found.
func submissionID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}
	return parsed.String(), nil
}

func translateStoreError(err error, notFound, failure string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, failure)
}
