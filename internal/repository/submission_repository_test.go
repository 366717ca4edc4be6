package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupreneurx/submissions-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func submissionColumnNames() []string {
	raw := strings.Split(submissionColumns, ",")
	cols := make([]string, 0, len(raw))
	for _, c := range raw {
		cols = append(cols, strings.TrimSpace(c))
	}
	return cols
}

// submissionRow builds a row in column order. Overrides are keyed by column name.
func submissionRow(overrides map[string]driver.Value) []driver.Value {
	now := time.Date(2025, time.April, 14, 9, 30, 0, 0, time.UTC)
	defaults := map[string]driver.Value{
		"id":               "sub-1",
		"reference_number": "EduPX140420250042",
		"submission_type":  "application",
		"submission_date":  now,
		"first_name":       "Ada",
		"last_name":        "Lovelace",
		"email":            "ada@example.com",
		"phone":            "+44 20 7946 0000",
		"country":          "UK",
		"status":           "new",
		"created_at":       now,
		"updated_at":       now,
	}
	row := make([]driver.Value, 0, len(submissionColumnNames()))
	for _, col := range submissionColumnNames() {
		if v, ok := overrides[col]; ok {
			row = append(row, v)
			continue
		}
		row = append(row, defaults[col])
	}
	return row
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestSubmissionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submissions")).
		WithArgs(anyArgs(len(submissionColumnNames()))...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := &models.Submission{ReferenceNumber: "EduPX140420250042", SubmissionType: models.SubmissionTypeEnquiry, FirstName: "Ada"}
	require.NoError(t, repo.Create(context.Background(), s))
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, models.StatusNew, s.Status)
	assert.False(t, s.SubmissionDate.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryCreateError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submissions")).WillReturnError(errors.New("column does not exist"))

	err := repo.Create(context.Background(), &models.Submission{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create submission")
}

func TestSubmissionRepositoryFindByReference(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := sqlmock.NewRows(submissionColumnNames()).AddRow(submissionRow(map[string]driver.Value{
		"program_position": "GEEP",
		"business_idea":    "Solar micro-grids",
	})...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE reference_number = $1 ORDER BY created_at ASC LIMIT 1")).
		WithArgs("EduPX140420250042").
		WillReturnRows(rows)

	s, err := repo.FindByReference(context.Background(), "EduPX140420250042")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionTypeApplication, s.SubmissionType)
	require.NotNil(t, s.ProgramPosition)
	assert.Equal(t, "GEEP", *s.ProgramPosition)
	require.NotNil(t, s.BusinessIdea)
	assert.Equal(t, "Solar micro-grids", *s.BusinessIdea)
	assert.Nil(t, s.EnquiryMessage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSubmissionRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	where := "WHERE submission_type = $1 AND status = $2 AND (first_name ILIKE $3 OR last_name ILIKE $3 OR email ILIKE $3 OR reference_number ILIKE $3)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM submissions " + where)).
		WithArgs("application", "new", "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY submission_date DESC LIMIT $4 OFFSET $5")).
		WithArgs("application", "new", "%ada%", 10, 10).
		WillReturnRows(sqlmock.NewRows(submissionColumnNames()).AddRow(submissionRow(nil)...))

	items, total, err := repo.List(context.Background(), models.SubmissionFilter{
		Type:     models.SubmissionTypeApplication,
		Status:   models.StatusNew,
		Search:   " ada ",
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "sub-1", items[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := sqlmock.NewRows(submissionColumnNames()).
		AddRow(submissionRow(map[string]driver.Value{"id": "sub-2"})...).
		AddRow(submissionRow(nil)...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE status = $1 ORDER BY submission_date DESC")).
		WithArgs("new").
		WillReturnRows(rows)

	items, err := repo.ListByStatus(context.Background(), models.StatusNew)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "sub-2", items[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	notes := "Called on Monday"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET status = $1, updated_at = $2, admin_notes = $3 WHERE id = $4")).
		WithArgs("contacted", sqlmock.AnyArg(), notes, "sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "sub-1", models.StatusPatch{Status: models.StatusContacted, AdminNotes: &notes})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM submissions WHERE id = $1")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
