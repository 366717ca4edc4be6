package dto

import "github.com/edupreneurx/submissions-api/internal/models"

// CreateSubmissionRequest is the public form payload.
type CreateSubmissionRequest struct {
	SubmissionType  models.SubmissionType `json:"submissionType" validate:"required,oneof=application reservation enquiry interest payment-inquiry"`
	FirstName       string                `json:"firstName" validate:"required"`
	LastName        string                `json:"lastName" validate:"required"`
	Email           string                `json:"email" validate:"required"`
	Phone           string                `json:"phone" validate:"required"`
	Country         string                `json:"country" validate:"required"`
	ProgramPosition *string               `json:"programPosition,omitempty"`
	models.SubmissionFields
}

// CreateSubmissionResponse is returned to the form after a successful insert.
type CreateSubmissionResponse struct {
	Success         bool   `json:"success"`
	ReferenceNumber string `json:"referenceNumber"`
	SubmissionID    string `json:"submissionId"`
	Message         string `json:"message"`
}

// UpdateStatusRequest is the admin status change payload.
type UpdateStatusRequest struct {
	Status       models.SubmissionStatus `json:"status" validate:"required,oneof=new contacted in-progress completed rejected"`
	AdminNotes   *string                 `json:"adminNotes,omitempty"`
	FollowUpDate *string                 `json:"followUpDate,omitempty"`
}

// SuccessResponse acknowledges a mutation.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ListSubmissionsQuery binds GET /submissions query parameters.
type ListSubmissionsQuery struct {
	Type   string `form:"type"`
	Status string `form:"status"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ExportSubmissionsQuery binds GET /submissions/export query parameters.
type ExportSubmissionsQuery struct {
	Format string `form:"format"`
	Type   string `form:"type"`
	Status string `form:"status"`
	Search string `form:"search"`
}
