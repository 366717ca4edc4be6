package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupreneurx/submissions-api/internal/dto"
	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
	"github.com/edupreneurx/submissions-api/pkg/response"
)

type emailDispatcher interface {
	Dispatch(ctx context.Context, req dto.EmailRequest) (*dto.EmailResponse, error)
}

type digestRunner interface {
	Run(ctx context.Context) (*dto.DigestRunResponse, error)
}

type notificationLister interface {
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error)
}

// EmailHandler exposes the admin email dispatch, digest and outbox endpoints.
type EmailHandler struct {
	dispatcher    emailDispatcher
	digest        digestRunner
	notifications notificationLister
}

// NewEmailHandler constructs an email handler.
func NewEmailHandler(dispatcher emailDispatcher, digest digestRunner, notifications notificationLister) *EmailHandler {
	return &EmailHandler{dispatcher: dispatcher, digest: digest, notifications: notifications}
}

// Send godoc
// @Summary Render and send an email
// @Description Sends a confirmation, status-update or admin-digest email synchronously
// @Tags Emails
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.EmailRequest true "Email request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /emails/send [post]
func (h *EmailHandler) Send(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid email payload"))
		return
	}

	res, err := h.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		response.JSON(c, appErrors.FromError(err).Status, res, nil)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// RunDigest godoc
// @Summary Queue the pending-submissions digest now
// @Tags Emails
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /digest/run [post]
func (h *EmailHandler) RunDigest(c *gin.Context) {
	res, err := h.digest.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ListNotifications godoc
// @Summary List outbox notifications
// @Tags Emails
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, sent or failed"
// @Param kind query string false "confirmation, status-update or admin-digest"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *EmailHandler) ListNotifications(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		Kind   string `form:"kind"`
		Page   int    `form:"page"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	items, pagination, err := h.notifications.List(c.Request.Context(), models.NotificationFilter{
		Status:   models.NotificationStatus(query.Status),
		Kind:     models.EmailKind(query.Kind),
		Page:     query.Page,
		PageSize: query.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
