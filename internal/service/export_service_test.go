package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupreneurx/submissions-api/internal/dto"
	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
)

type pagedSubmissionStore struct {
	records []models.Submission
	filters []models.SubmissionFilter
	err     error
}

func (p *pagedSubmissionStore) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	p.filters = append(p.filters, filter)
	if p.err != nil {
		return nil, 0, p.err
	}
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(p.records) {
		return nil, len(p.records), nil
	}
	end := start + filter.PageSize
	if end > len(p.records) {
		end = len(p.records)
	}
	return p.records[start:end], len(p.records), nil
}

func exportFixtures(n int) []models.Submission {
	out := make([]models.Submission, n)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.Submission{
			ID:              fmt.Sprintf("sub-%d", i),
			ReferenceNumber: fmt.Sprintf("EduPX01032024%04d", i),
			SubmissionType:  models.SubmissionTypeApplication,
			SubmissionDate:  base.Add(-time.Duration(i) * time.Hour),
			FirstName:       "Lead",
			LastName:        fmt.Sprint(i),
			Email:           fmt.Sprintf("lead%d@example.com", i),
			Phone:           "+1 555",
			Country:         "Kenya",
			ProgramPosition: strPtr("GEEP"),
		}
	}
	return out
}

func newTestExportService(store *pagedSubmissionStore) *ExportService {
	svc := NewExportService(store, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceCSVWalksEveryPage(t *testing.T) {
	records := exportFixtures(230)
	records[0].AdminNotes = strPtr("called, left voicemail")
	store := &pagedSubmissionStore{records: records}

	file, err := newTestExportService(store).Export(context.Background(), dto.ExportSubmissionsQuery{Type: "application"})
	require.NoError(t, err)

	assert.Len(t, store.filters, 3)
	for i, f := range store.filters {
		assert.Equal(t, i+1, f.Page)
		assert.Equal(t, models.SubmissionTypeApplication, f.Type)
	}
	assert.Equal(t, "submissions-20240302-0830.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, 230, file.Rows)
	assert.False(t, file.Truncated)

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 231)
	assert.Equal(t, "Reference", rows[0][0])
	assert.Equal(t, []string{
		"EduPX010320240000", "application", "2024-03-01 09:00", "Lead 0", "lead0@example.com",
		"+1 555", "Kenya", "GEEP", "new", "", "called, left voicemail",
	}, rows[1])
}

func TestExportServicePDF(t *testing.T) {
	store := &pagedSubmissionStore{records: exportFixtures(3)}

	file, err := newTestExportService(store).Export(context.Background(), dto.ExportSubmissionsQuery{Format: "PDF", Status: "new"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "submissions-20240302-0830.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))
	assert.Equal(t, models.StatusNew, store.filters[0].Status)
}

func TestExportServiceCapsRows(t *testing.T) {
	store := &pagedSubmissionStore{records: exportFixtures(MaxExportRows + 150)}

	file, err := newTestExportService(store).Export(context.Background(), dto.ExportSubmissionsQuery{})
	require.NoError(t, err)
	assert.Equal(t, MaxExportRows, file.Rows)
	assert.True(t, file.Truncated)
}

func TestExportServiceValidation(t *testing.T) {
	svc := newTestExportService(&pagedSubmissionStore{})

	cases := []dto.ExportSubmissionsQuery{
		{Format: "xlsx"},
		{Type: "newsletter"},
		{Status: "archived"},
	}
	for _, query := range cases {
		_, err := svc.Export(context.Background(), query)
		assert.ErrorIs(t, err, appErrors.ErrValidation, "query %+v", query)
	}
}

func TestExportServiceStorageError(t *testing.T) {
	svc := newTestExportService(&pagedSubmissionStore{err: errors.New("connection reset")})

	_, err := svc.Export(context.Background(), dto.ExportSubmissionsQuery{})
	assert.ErrorIs(t, err, appErrors.ErrStorage)
}

func TestExportTitle(t *testing.T) {
	at := time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "Submissions (Mar 2, 2024 08:30 UTC)", exportTitle(models.SubmissionFilter{}, at))
	assert.Equal(t, "Submissions / enquiry / contacted (Mar 2, 2024 08:30 UTC)",
		exportTitle(models.SubmissionFilter{Type: models.SubmissionTypeEnquiry, Status: models.StatusContacted}, at))
}
