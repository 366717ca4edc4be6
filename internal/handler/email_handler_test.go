package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupreneurx/submissions-api/internal/dto"
	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
)

type dispatcherMock struct {
	req  dto.EmailRequest
	resp *dto.EmailResponse
	err  error
}

func (m *dispatcherMock) Dispatch(ctx context.Context, req dto.EmailRequest) (*dto.EmailResponse, error) {
	m.req = req
	return m.resp, m.err
}

type digestRunnerMock struct {
	resp *dto.DigestRunResponse
	err  error
}

func (m *digestRunnerMock) Run(ctx context.Context) (*dto.DigestRunResponse, error) {
	return m.resp, m.err
}

type notificationListerMock struct {
	filter models.NotificationFilter
	err    error
}

func (m *notificationListerMock) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error) {
	m.filter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.Notification{{ID: "n-1", Kind: models.EmailConfirmation}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func TestEmailHandlerSend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dispatcher := &dispatcherMock{resp: &dto.EmailResponse{Success: true, MessageID: "msg-1"}}
	h := NewEmailHandler(dispatcher, nil, nil)

	c, w := newGinContext(http.MethodPost, "/emails/send", []byte(`{"type":"confirmation","data":{"firstName":"Ada"}}`))
	h.Send(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.EmailConfirmation, dispatcher.req.Type)
	assert.JSONEq(t, `{"firstName":"Ada"}`, string(dispatcher.req.Data))

	var res dto.EmailResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &res))
	assert.Equal(t, "msg-1", res.MessageID)
}

func TestEmailHandlerSendReportsFailureBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dispatcher := &dispatcherMock{
		resp: &dto.EmailResponse{Success: false, Error: "email service not configured"},
		err:  appErrors.ErrConfiguration,
	}
	h := NewEmailHandler(dispatcher, nil, nil)

	c, w := newGinContext(http.MethodPost, "/emails/send", []byte(`{"type":"admin-digest","data":{}}`))
	h.Send(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var res dto.EmailResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &res))
	assert.False(t, res.Success)
	assert.Equal(t, "email service not configured", res.Error)
}

func TestEmailHandlerRunDigest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewEmailHandler(nil, &digestRunnerMock{resp: &dto.DigestRunResponse{Pending: 3, Queued: true, NotificationID: "n-7"}}, nil)

	c, w := newGinContext(http.MethodPost, "/digest/run", nil)
	h.RunDigest(c)

	require.Equal(t, http.StatusOK, w.Code)
	var res dto.DigestRunResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &res))
	assert.Equal(t, 3, res.Pending)
	assert.Equal(t, "n-7", res.NotificationID)
}

func TestEmailHandlerListNotifications(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lister := &notificationListerMock{}
	h := NewEmailHandler(nil, nil, lister)

	c, w := newGinContext(http.MethodGet, "/notifications?status=failed&kind=status-update&page=3&limit=5", nil)
	h.ListNotifications(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.NotificationFilter{
		Status:   models.NotificationFailed,
		Kind:     models.EmailStatusUpdate,
		Page:     3,
		PageSize: 5,
	}, lister.filter)
	assert.Equal(t, 1, decodeEnvelope(t, w).Pagination.TotalCount)
}

func TestEmailHandlerListNotificationsValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewEmailHandler(nil, nil, &notificationListerMock{err: appErrors.Clone(appErrors.ErrValidation, "unknown notification status")})

	c, w := newGinContext(http.MethodGet, "/notifications?status=bogus", nil)
	h.ListNotifications(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
