package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/edupreneurx/submissions-api/internal/models"
)

func newAuditRouter(logs *zap.Logger, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/submissions/:id", func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin-1", Email: "ops@edupreneurx.com"})
		c.Next()
	}, Audit(logs, "submission.delete"), func(c *gin.Context) {
		c.Status(status)
	})
	return r
}

func TestAuditLogsSuccessfulMutation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newAuditRouter(zap.New(core), http.StatusOK)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/submissions/sub-42", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "audit", entry.LoggerName)
	assert.Equal(t, "admin action", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "submission.delete", fields["action"])
	assert.Equal(t, "sub-42", fields["resource_id"])
	assert.Equal(t, "admin-1", fields["admin_id"])
	assert.Equal(t, "/submissions/:id", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestAuditSkipsFailedRequests(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newAuditRouter(zap.New(core), http.StatusNotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/submissions/missing", nil))

	assert.Equal(t, 0, logs.Len())
}
