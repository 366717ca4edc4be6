package models

import (
	"strings"
	"time"
)

// SubmissionType discriminates which form produced a submission.
type SubmissionType string

const (
	SubmissionTypeApplication    SubmissionType = "application"
	SubmissionTypeReservation    SubmissionType = "reservation"
	SubmissionTypeEnquiry        SubmissionType = "enquiry"
	SubmissionTypeInterest       SubmissionType = "interest"
	SubmissionTypePaymentInquiry SubmissionType = "payment-inquiry"
)

// SubmissionTypes lists every recognised type in display order.
var SubmissionTypes = []SubmissionType{
	SubmissionTypeApplication,
	SubmissionTypeReservation,
	SubmissionTypeEnquiry,
	SubmissionTypeInterest,
	SubmissionTypePaymentInquiry,
}

// Valid reports whether t is one of the recognised types.
func (t SubmissionType) Valid() bool {
	for _, known := range SubmissionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SubmissionStatus tracks where an admin is with a submission.
type SubmissionStatus string

const (
	StatusNew        SubmissionStatus = "new"
	StatusContacted  SubmissionStatus = "contacted"
	StatusInProgress SubmissionStatus = "in-progress"
	StatusCompleted  SubmissionStatus = "completed"
	StatusRejected   SubmissionStatus = "rejected"
)

// SubmissionStatuses lists every recognised status.
var SubmissionStatuses = []SubmissionStatus{StatusNew, StatusContacted, StatusInProgress, StatusCompleted, StatusRejected}

// Valid reports whether s is one of the recognised statuses.
func (s SubmissionStatus) Valid() bool {
	for _, known := range SubmissionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrNew treats an unset status as new.
func (s SubmissionStatus) OrNew() SubmissionStatus {
	if s == "" {
		return StatusNew
	}
	return s
}

// Submission is the persisted lead record. Type-specific answers are stored
// flat; use Details to get the variant for SubmissionType.
type Submission struct {
	ID              string           `db:"id" json:"id"`
	ReferenceNumber string           `db:"reference_number" json:"referenceNumber"`
	SubmissionType  SubmissionType   `db:"submission_type" json:"submissionType"`
	SubmissionDate  time.Time        `db:"submission_date" json:"submissionDate"`
	FirstName       string           `db:"first_name" json:"firstName"`
	LastName        string           `db:"last_name" json:"lastName"`
	Email           string           `db:"email" json:"email"`
	Phone           string           `db:"phone" json:"phone"`
	Country         string           `db:"country" json:"country"`
	ProgramPosition *string          `db:"program_position" json:"programPosition,omitempty"`
	Status          SubmissionStatus `db:"status" json:"status"`
	AdminNotes      *string          `db:"admin_notes" json:"adminNotes,omitempty"`
	FollowUpDate    *string          `db:"follow_up_date" json:"followUpDate,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
	SubmissionFields
}

// FullName joins first and last name.
func (s Submission) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Program returns the program code or job title, empty when unset.
func (s Submission) Program() string {
	if s.ProgramPosition == nil {
		return ""
	}
	return strings.TrimSpace(*s.ProgramPosition)
}

// Details returns the typed view of the stored answers.
func (s Submission) Details() (SubmissionDetails, error) {
	return s.SubmissionFields.Details(s.SubmissionType)
}

// SubmissionFilter narrows the admin listing.
type SubmissionFilter struct {
	Type     SubmissionType
	Status   SubmissionStatus
	Search   string
	Page     int
	PageSize int
}

// StatusPatch carries an admin status change. Nil annotations are left untouched.
type StatusPatch struct {
	Status       SubmissionStatus
	AdminNotes   *string
	FollowUpDate *string
}

// SubmissionStats aggregates the whole collection for the dashboard.
type SubmissionStats struct {
	Total     int            `json:"total"`
	ByType    map[string]int `json:"byType"`
	ByStatus  map[string]int `json:"byStatus"`
	ByProgram map[string]int `json:"byProgram"`
	Recent    []Submission   `json:"recent"`
}

// RecentSubmissionsLimit caps SubmissionStats.Recent.
const RecentSubmissionsLimit = 5

// BuildSubmissionStats aggregates records that are already ordered newest first.
func BuildSubmissionStats(records []Submission) SubmissionStats {
	stats := SubmissionStats{
		Total:     len(records),
		ByType:    make(map[string]int),
		ByStatus:  make(map[string]int),
		ByProgram: make(map[string]int),
		Recent:    make([]Submission, 0, RecentSubmissionsLimit),
	}
	for i, record := range records {
		stats.ByType[string(record.SubmissionType)]++
		stats.ByStatus[string(record.Status.OrNew())]++
		if program := record.Program(); program != "" {
			stats.ByProgram[program]++
		}
		if i < RecentSubmissionsLimit {
			stats.Recent = append(stats.Recent, record)
		}
	}
	return stats
}
