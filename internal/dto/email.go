package dto

import (
	"encoding/json"

	"github.com/edupreneurx/submissions-api/internal/models"
)

// EmailRequest asks the dispatcher to render and send one email. Data is the
// renderer input for Type. To overrides the default recipients when set.
type EmailRequest struct {
	Type models.EmailKind `json:"type" validate:"required,oneof=confirmation status-update admin-digest"`
	To   []string         `json:"to,omitempty" validate:"omitempty,dive,email"`
	Data json.RawMessage  `json:"data" validate:"required"`
}

// EmailResponse reports the dispatch outcome.
type EmailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DigestRunResponse summarises a digest run.
type DigestRunResponse struct {
	Pending        int    `json:"pending"`
	Queued         bool   `json:"queued"`
	NotificationID string `json:"notificationId,omitempty"`
}
