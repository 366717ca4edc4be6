package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edupreneurx/submissions-api/internal/dto"
	"github.com/edupreneurx/submissions-api/internal/service"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
	"github.com/edupreneurx/submissions-api/pkg/response"
)

type submissionExporter interface {
	Export(ctx context.Context, query dto.ExportSubmissionsQuery) (*service.ExportFile, error)
}

// ExportHandler serves submission downloads.
type ExportHandler struct {
	service submissionExporter
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc submissionExporter) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Download submissions
// @Tags Submissions
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param type query string false "Submission type"
// @Param status query string false "Status"
// @Param search query string false "Matches name, email or reference number"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /submissions/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	var query dto.ExportSubmissionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	file, err := h.service.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("X-Export-Rows", strconv.Itoa(file.Rows))
	if file.Truncated {
		c.Header("X-Export-Truncated", "true")
	}
	response.Download(c, file.Filename, file.ContentType, file.Data)
}
