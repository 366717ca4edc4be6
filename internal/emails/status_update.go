package emails

import (
	"fmt"
	"time"

	"github.com/edupreneurx/submissions-api/internal/models"
)

// StatusUpdateData is the snapshot behind a status change notice.
type StatusUpdateData struct {
	ReferenceNumber string    `json:"referenceNumber"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	SubmissionType  string    `json:"submissionType"`
	ProgramPosition string    `json:"programPosition,omitempty"`
	OldStatus       string    `json:"oldStatus"`
	NewStatus       string    `json:"newStatus"`
	SubmissionDate  time.Time `json:"submissionDate"`
}

// StatusUpdateFromSubmission snapshots the identity of s before the patch.
func StatusUpdateFromSubmission(s models.Submission, oldStatus, newStatus models.SubmissionStatus) StatusUpdateData {
	return StatusUpdateData{
		ReferenceNumber: s.ReferenceNumber,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		Email:           s.Email,
		SubmissionType:  string(s.SubmissionType),
		ProgramPosition: s.Program(),
		OldStatus:       string(oldStatus),
		NewStatus:       string(newStatus),
		SubmissionDate:  s.SubmissionDate,
	}
}

type statusUpdateView struct {
	StatusUpdateData
	FullName string
	Date     string
	Message  string
	CTA      *CallToAction
}

// StatusUpdate renders the email sent when an admin changes a status.
func (r *Renderer) StatusUpdate(data StatusUpdateData) (*Email, error) {
	view := statusUpdateView{
		StatusUpdateData: data,
		FullName:         joinName(data.FirstName, data.LastName),
		Date:             formatDate(data.SubmissionDate, longDateLayout),
		Message:          StatusMessage(data.NewStatus),
	}
	if cta, ok := CallToActionFor(data.NewStatus); ok {
		view.CTA = &cta
	}

	html, err := r.execute(r.statusUpdate, layout{
		Title:   "Status Update - " + r.brand.InstituteName,
		Heading: r.brand.InstituteName + " Status Update",
		Tagline: "ENTREPRENEURSHIP EXCELLENCE",
		Data:    view,
	})
	if err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("Status Update: %s - %s | %s", StatusLabel(data.NewStatus), data.ReferenceNumber, r.brand.InstituteName)
	return &Email{Subject: subject, HTML: html}, nil
}
