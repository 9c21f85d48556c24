package models

import (
	"time"

	"gorm.io/datatypes"
)

// AcceptanceState describes where an assignment currently sits in its
// submission window. It is derived from the clock on every check and never
// persisted, so editing the late deadline changes the outcome for attempts
// that have not happened yet.
type AcceptanceState string

const (
	// AcceptanceOpen means the due date has not passed.
	AcceptanceOpen AcceptanceState = "open"
	// AcceptanceLateWindow means the due date passed but late work is still accepted.
	AcceptanceLateWindow AcceptanceState = "late_window"
	// AcceptanceClosed means no further submissions are accepted.
	AcceptanceClosed AcceptanceState = "closed"
)

// Assignment belongs to exactly one course and defines the submission window
// and grading parameters for student work.
type Assignment struct {
	ID                     uint              `gorm:"primaryKey" json:"id"`
	CourseID               uint              `gorm:"not null;index" json:"course_id"`
	Title                  string            `gorm:"size:200;not null" json:"title"`
	Description            string            `gorm:"type:text" json:"description"`
	DueDate                time.Time         `gorm:"not null" json:"due_date"`
	MaxPoints              float64           `gorm:"not null;default:100" json:"max_points"`
	AllowLateSubmissions   bool              `gorm:"not null;default:false" json:"allow_late_submissions"`
	LateSubmissionDeadline *time.Time        `json:"late_submission_deadline"`
	AttachmentRequired     bool              `gorm:"not null;default:false" json:"attachment_required"`
	Weight                 float64           `gorm:"not null;default:1" json:"weight"`
	Status                 string            `gorm:"size:20;not null;default:active" json:"status"`
	Metadata               datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
	Course                 Course            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// Acceptance evaluates the submission window state at the reference time.
func (a Assignment) Acceptance(reference time.Time) AcceptanceState {
	if !reference.After(a.DueDate) {
		return AcceptanceOpen
	}
	if !a.AllowLateSubmissions {
		return AcceptanceClosed
	}
	if a.LateSubmissionDeadline == nil || !reference.After(*a.LateSubmissionDeadline) {
		return AcceptanceLateWindow
	}
	return AcceptanceClosed
}

// CanAcceptSubmission reports whether a submission attempt at the reference
// time would be accepted.
func (a Assignment) CanAcceptSubmission(reference time.Time) bool {
	return a.Acceptance(reference) != AcceptanceClosed
}
