package emails

import (
	"fmt"
	"time"

	"github.com/edupreneurx/submissions-api/internal/models"
)

// urgentCount is how many leading digest entries carry the urgent flag.
const urgentCount = 3

// PendingSubmission is one digest entry.
type PendingSubmission struct {
	ReferenceNumber string    `json:"referenceNumber"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Country         string    `json:"country"`
	SubmissionType  string    `json:"submissionType"`
	ProgramPosition string    `json:"programPosition,omitempty"`
	SubmissionDate  time.Time `json:"submissionDate"`
}

// DigestData is the input of the daily admin digest.
type DigestData struct {
	PendingSubmissions []PendingSubmission `json:"pendingSubmissions"`
	DigestDate         time.Time           `json:"digestDate"`
}

// DigestFromSubmissions snapshots submissions in the order given.
func DigestFromSubmissions(items []models.Submission, at time.Time) DigestData {
	pending := make([]PendingSubmission, 0, len(items))
	for _, s := range items {
		pending = append(pending, PendingSubmission{
			ReferenceNumber: s.ReferenceNumber,
			FirstName:       s.FirstName,
			LastName:        s.LastName,
			Email:           s.Email,
			Phone:           s.Phone,
			Country:         s.Country,
			SubmissionType:  string(s.SubmissionType),
			ProgramPosition: s.Program(),
			SubmissionDate:  s.SubmissionDate,
		})
	}
	return DigestData{PendingSubmissions: pending, DigestDate: at}
}

type digestItem struct {
	PendingSubmission
	Index    int
	Urgent   bool
	FullName string
	Program  string
	Date     string
}

type typeCount struct {
	Type  string
	Count int
}

type digestView struct {
	Total      int
	Date       string
	Items      []digestItem
	TypeCounts []typeCount
}

// Digest renders the daily summary of submissions awaiting first contact.
func (r *Renderer) Digest(data DigestData) (*Email, error) {
	view := digestView{
		Total:      len(data.PendingSubmissions),
		Date:       formatDate(data.DigestDate, shortDateLayout),
		Items:      make([]digestItem, 0, len(data.PendingSubmissions)),
		TypeCounts: countByType(data.PendingSubmissions),
	}
	for i, p := range data.PendingSubmissions {
		program := p.ProgramPosition
		if program == "" {
			program = "N/A"
		}
		view.Items = append(view.Items, digestItem{
			PendingSubmission: p,
			Index:             i + 1,
			Urgent:            i < urgentCount,
			FullName:          joinName(p.FirstName, p.LastName),
			Program:           program,
			Date:              formatDate(p.SubmissionDate, shortDateLayout),
		})
	}

	html, err := r.execute(r.digest, layout{
		Title:   "Admin Daily Digest - " + r.brand.InstituteName,
		Heading: r.brand.InstituteName + " Admin Digest",
		Tagline: "DAILY PENDING SUBMISSIONS REPORT",
		Width:   700,
		Data:    view,
	})
	if err != nil {
		return nil, err
	}

	plural := "s"
	if view.Total == 1 {
		plural = ""
	}
	subject := fmt.Sprintf("📊 Daily Digest: %d Pending Submission%s | %s Admin", view.Total, plural, r.brand.InstituteName)
	return &Email{Subject: subject, HTML: html}, nil
}

// countByType groups entries by type in first-seen order.
func countByType(items []PendingSubmission) []typeCount {
	index := make(map[string]int)
	counts := make([]typeCount, 0, len(typeLabels))
	for _, p := range items {
		if i, ok := index[p.SubmissionType]; ok {
			counts[i].Count++
			continue
		}
		index[p.SubmissionType] = len(counts)
		counts = append(counts, typeCount{Type: p.SubmissionType, Count: 1})
	}
	return counts
}
