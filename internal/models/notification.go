package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// EmailKind selects the renderer for an outgoing email.
type EmailKind string

const (
	EmailConfirmation EmailKind = "confirmation"
	EmailStatusUpdate EmailKind = "status-update"
	EmailAdminDigest  EmailKind = "admin-digest"
)

// Valid reports whether k is a known email kind.
func (k EmailKind) Valid() bool {
	switch k {
	case EmailConfirmation, EmailStatusUpdate, EmailAdminDigest:
		return true
	}
	return false
}

// NotificationStatus tracks delivery of an outbox row.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is a durable record of an email that must be sent.
// Payload holds the renderer input for Kind as JSON.
type Notification struct {
	ID           string             `db:"id" json:"id"`
	Kind         EmailKind          `db:"kind" json:"kind"`
	Recipients   pq.StringArray     `db:"recipients" json:"recipients"`
	SubmissionID *string            `db:"submission_id" json:"submission_id,omitempty"`
	Payload      types.JSONText     `db:"payload" json:"payload"`
	Status       NotificationStatus `db:"status" json:"status"`
	Attempts     int                `db:"attempts" json:"attempts"`
	LastError    *string            `db:"last_error" json:"last_error,omitempty"`
	MessageID    *string            `db:"message_id" json:"message_id,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
	SentAt       *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
}

// NotificationFilter narrows the outbox listing.
type NotificationFilter struct {
	Status   NotificationStatus
	Kind     EmailKind
	Page     int
	PageSize int
}
