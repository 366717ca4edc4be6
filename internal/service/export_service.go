package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edupreneurx/submissions-api/internal/dto"
	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
	"github.com/edupreneurx/submissions-api/pkg/export"
)

const (
	exportPageSize = 100
	// MaxExportRows caps a single download.
	MaxExportRows = 5000
)

type submissionPager interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
	Truncated   bool
}

// ExportService renders filtered submission listings for offline follow-up.
type ExportService struct {
	store     submissionPager
	renderers map[string]datasetRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(store submissionPager, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		store: store,
		renderers: map[string]datasetRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

var exportColumns = []export.Column{
	{Header: "Reference", Width: 2.2},
	{Header: "Type", Width: 1.5},
	{Header: "Submitted", Width: 1.8},
	{Header: "Name", Width: 2},
	{Header: "Email", Width: 2.6},
	{Header: "Phone", Width: 1.6},
	{Header: "Country", Width: 1.3},
	{Header: "Program/Position", Width: 1.8},
	{Header: "Status", Width: 1.2},
	{Header: "Follow-up", Width: 1.2},
	{Header: "Admin Notes", Width: 2.6},
}

// Export renders every submission matching query, newest first. The format
// defaults to csv.
func (s *ExportService) Export(ctx context.Context, query dto.ExportSubmissionsQuery) (*ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	filter := models.SubmissionFilter{
		Type:   models.SubmissionType(strings.TrimSpace(query.Type)),
		Status: models.SubmissionStatus(strings.TrimSpace(query.Status)),
		Search: strings.TrimSpace(query.Search),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown submission type")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown submission status")
	}

	records, total, err := s.collect(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load submissions for export")
	}
	truncated := total > len(records)
	if truncated {
		s.logger.Sugar().Warnw("export truncated", "total", total, "rows", len(records))
	}

	generated := s.now().UTC()
	data := export.Dataset{
		Title:   exportTitle(filter, generated),
		Columns: exportColumns,
		Rows:    make([][]string, 0, len(records)),
	}
	for _, record := range records {
		data.Rows = append(data.Rows, exportRow(record))
	}

	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("submissions-%s.%s", generated.Format("20060102-1504"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        body,
		Rows:        len(records),
		Truncated:   truncated,
	}, nil
}

func (s *ExportService) collect(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	filter.PageSize = exportPageSize
	var out []models.Submission
	total := 0
	for page := 1; len(out) < MaxExportRows; page++ {
		filter.Page = page
		items, count, err := s.store.List(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		total = count
		out = append(out, items...)
		if len(items) < exportPageSize || len(out) >= count {
			break
		}
	}
	if len(out) > MaxExportRows {
		out = out[:MaxExportRows]
	}
	return out, total, nil
}

func exportRow(s models.Submission) []string {
	return []string{
		s.ReferenceNumber,
		string(s.SubmissionType),
		s.SubmissionDate.UTC().Format("2006-01-02 15:04"),
		s.FullName(),
		s.Email,
		s.Phone,
		s.Country,
		s.Program(),
		string(s.Status.OrNew()),
		derefString(s.FollowUpDate),
		derefString(s.AdminNotes),
	}
}

func exportTitle(filter models.SubmissionFilter, generated time.Time) string {
	parts := []string{"Submissions"}
	if filter.Type != "" {
		parts = append(parts, string(filter.Type))
	}
	if filter.Status != "" {
		parts = append(parts, string(filter.Status))
	}
	return strings.Join(parts, " / ") + " (" + generated.Format("Jan 2, 2006 15:04 UTC") + ")"
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
