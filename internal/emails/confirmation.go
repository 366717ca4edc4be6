package emails

import (
	"fmt"
	"strings"
	"time"

	"github.com/edupreneurx/submissions-api/internal/models"
)

const (
	longDateLayout  = "January 2, 2006 at 03:04 PM"
	shortDateLayout = "Jan 2, 2006, 03:04 PM"
)

// ConfirmationData is the snapshot behind a submission confirmation.
type ConfirmationData struct {
	ReferenceNumber   string    `json:"referenceNumber"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Country           string    `json:"country"`
	SubmissionType    string    `json:"submissionType"`
	ProgramPosition   string    `json:"programPosition,omitempty"`
	SubmissionDate    time.Time `json:"submissionDate"`
	BusinessIdea      string    `json:"businessIdea,omitempty"`
	Motivation        string    `json:"motivation,omitempty"`
	EnquiryMessage    string    `json:"enquiryMessage,omitempty"`
	ReservationReason string    `json:"reservationReason,omitempty"`
	InterestMessage   string    `json:"interestMessage,omitempty"`
	PaymentMessage    string    `json:"paymentMessage,omitempty"`
	// StaffCopy adds the admin follow-up panels.
	StaffCopy bool `json:"staffCopy,omitempty"`
}

// ConfirmationFromSubmission snapshots a stored submission.
func ConfirmationFromSubmission(s models.Submission, staffCopy bool) ConfirmationData {
	data := ConfirmationData{
		ReferenceNumber: s.ReferenceNumber,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		Email:           s.Email,
		Phone:           s.Phone,
		Country:         s.Country,
		SubmissionType:  string(s.SubmissionType),
		ProgramPosition: s.Program(),
		SubmissionDate:  s.SubmissionDate,
		StaffCopy:       staffCopy,
	}

	details, err := s.Details()
	if err != nil {
		return data
	}
	switch d := details.(type) {
	case models.ApplicationDetails:
		data.BusinessIdea = deref(d.BusinessIdea)
		data.Motivation = deref(d.Motivation)
	case models.EnquiryDetails:
		data.EnquiryMessage = deref(d.EnquiryMessage)
	case models.ReservationDetails:
		data.ReservationReason = deref(d.ReservationReason)
	case models.InterestDetails:
		data.InterestMessage = deref(d.InterestMessage)
	case models.PaymentInquiryDetails:
		data.PaymentMessage = deref(d.PaymentMessage)
	}
	return data
}

type messageBlock struct {
	Title string
	Body  string
}

type feeView struct {
	Code       string
	Name       string
	Admission  string
	Monthly    string
	Tuition    string
	Total      string
	PaidMonths int
	PaidYears  int
	FreeYears  int
	Fallback   bool
}

type programView struct {
	Selected string
	Name     string
	Fees     feeView
}

type confirmationView struct {
	ConfirmationData
	FullName  string
	TypeLabel string
	Date      string
	Program   *programView
	Messages  []messageBlock
}

// Confirmation renders the email sent when a submission is received.
func (r *Renderer) Confirmation(data ConfirmationData) (*Email, error) {
	view := confirmationView{
		ConfirmationData: data,
		FullName:         joinName(data.FirstName, data.LastName),
		TypeLabel:        TypeLabel(data.SubmissionType),
		Date:             formatDate(data.SubmissionDate, longDateLayout),
		Messages:         confirmationMessages(data),
	}
	if data.ProgramPosition != "" {
		view.Program = buildProgramView(data.ProgramPosition)
	}

	heading := r.brand.InstituteName + " Submission Received"
	subject := fmt.Sprintf("✓ Submission Received - %s | %s", data.ReferenceNumber, r.brand.InstituteName)
	if data.StaffCopy {
		heading = r.brand.InstituteName + " New Submission"
		subject = fmt.Sprintf("New %s - %s | %s Admin", view.TypeLabel, data.ReferenceNumber, r.brand.InstituteName)
	}

	html, err := r.execute(r.confirmation, layout{
		Title:   "Submission Confirmation - " + r.brand.InstituteName,
		Heading: heading,
		Tagline: "ENTREPRENEURSHIP EXCELLENCE",
		Data:    view,
	})
	if err != nil {
		return nil, err
	}
	return &Email{Subject: subject, HTML: html}, nil
}

func confirmationMessages(data ConfirmationData) []messageBlock {
	candidates := []messageBlock{
		{Title: "Business Idea", Body: data.BusinessIdea},
		{Title: "Motivation", Body: data.Motivation},
		{Title: "Your Message", Body: data.EnquiryMessage},
		{Title: "Reservation Reason", Body: data.ReservationReason},
		{Title: "Your Interest", Body: data.InterestMessage},
		{Title: "Payment Message", Body: data.PaymentMessage},
	}
	blocks := make([]messageBlock, 0, 2)
	for _, c := range candidates {
		if strings.TrimSpace(c.Body) != "" {
			blocks = append(blocks, c)
		}
	}
	return blocks
}

func buildProgramView(selected string) *programView {
	schedule := models.FeeScheduleFor(selected)
	_, known := models.LookupProgram(selected)

	view := &programView{
		Selected: selected,
		Fees: feeView{
			Code:       schedule.Program.Code,
			Name:       schedule.Program.Name,
			Admission:  Money(schedule.AdmissionFee),
			Monthly:    Money(schedule.MonthlyFee),
			Tuition:    Money(schedule.Tuition()),
			Total:      Money(schedule.Total()),
			PaidMonths: schedule.PaidMonths,
			PaidYears:  schedule.Program.PaidYears,
			FreeYears:  schedule.Program.FreeYears(),
			Fallback:   !known,
		},
	}
	if known {
		view.Name = schedule.Program.Name
	}
	return view
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layout)
}
