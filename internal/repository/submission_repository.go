package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupreneurx/submissions-api/internal/models"
)

const submissionColumns = `id, reference_number, submission_type, submission_date, first_name, last_name, email, phone, country,
program_position, age, education, field, business_experience, business_tracks, business_idea, motivation,
total_experience, current_salary, relevant_experience, why_join, availability_date, reservation_reason,
preferred_start_date, enquiry_type, enquiry_message, interest_type, interest_message, payment_for, payment_method,
payment_message, international_experience, language_skills, newsletter, status, admin_notes, follow_up_date,
created_at, updated_at`

// SubmissionRepository persists submissions in PostgreSQL.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a submission, filling id, status and timestamps when unset.
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = models.StatusNew
	}
	now := time.Now().UTC()
	if s.SubmissionDate.IsZero() {
		s.SubmissionDate = now
	}
	s.CreatedAt = now
	s.UpdatedAt = now

	const query = `INSERT INTO submissions (` + submissionColumns + `)
VALUES (:id, :reference_number, :submission_type, :submission_date, :first_name, :last_name, :email, :phone, :country,
:program_position, :age, :education, :field, :business_experience, :business_tracks, :business_idea, :motivation,
:total_experience, :current_salary, :relevant_experience, :why_join, :availability_date, :reservation_reason,
:preferred_start_date, :enquiry_type, :enquiry_message, :interest_type, :interest_message, :payment_for, :payment_method,
:payment_message, :international_experience, :language_skills, :newsletter, :status, :admin_notes, :follow_up_date,
:created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// FindByID returns a submission by id. sql.ErrNoRows is wrapped when absent.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	var s models.Submission
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &s, nil
}

// FindByReference returns the earliest submission carrying reference.
func (r *SubmissionRepository) FindByReference(ctx context.Context, reference string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE reference_number = $1 ORDER BY created_at ASC LIMIT 1`
	var s models.Submission
	if err := r.db.GetContext(ctx, &s, query, reference); err != nil {
		return nil, fmt.Errorf("find submission by reference: %w", err)
	}
	return &s, nil
}

// List returns a page of submissions newest first together with the total match count.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("submission_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR reference_number ILIKE $%d)", n, n, n, n))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM submissions"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf("SELECT %s FROM submissions%s ORDER BY submission_date DESC LIMIT $%d OFFSET $%d", submissionColumns, where, len(args)-1, len(args))

	var items []models.Submission
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	return items, total, nil
}

// ListAll returns every submission newest first.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY submission_date DESC`
	var items []models.Submission
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list all submissions: %w", err)
	}
	return items, nil
}

// ListByType returns submissions of one type newest first.
func (r *SubmissionRepository) ListByType(ctx context.Context, t models.SubmissionType) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE submission_type = $1 ORDER BY submission_date DESC`
	var items []models.Submission
	if err := r.db.SelectContext(ctx, &items, query, t); err != nil {
		return nil, fmt.Errorf("list submissions by type: %w", err)
	}
	return items, nil
}

// ListByStatus returns submissions in one status newest first.
func (r *SubmissionRepository) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE status = $1 ORDER BY submission_date DESC`
	var items []models.Submission
	if err := r.db.SelectContext(ctx, &items, query, status); err != nil {
		return nil, fmt.Errorf("list submissions by status: %w", err)
	}
	return items, nil
}

// UpdateStatus applies an admin patch. Nil annotations keep their stored value.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, patch models.StatusPatch) error {
	set := []string{"status = $1", "updated_at = $2"}
	args := []interface{}{patch.Status, time.Now().UTC()}

	if patch.AdminNotes != nil {
		args = append(args, *patch.AdminNotes)
		set = append(set, fmt.Sprintf("admin_notes = $%d", len(args)))
	}
	if patch.FollowUpDate != nil {
		args = append(args, *patch.FollowUpDate)
		set = append(set, fmt.Sprintf("follow_up_date = $%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE submissions SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	return requireAffected(res, "update submission status")
}

// Delete removes a submission permanently.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return requireAffected(res, "delete submission")
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

func normalizePage(page, size int) (int, int) {
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
