package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is a student's answer to one assignment. The (assignment,
// student) pair is unique; resubmissions update the row in place and bump
// ResubmissionCount. IsLate is fixed when the row is created and never
// re-evaluated afterwards.
type Submission struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	AssignmentID      uint              `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	StudentID         uint              `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"student_id"`
	Content           string            `gorm:"type:text;not null" json:"content"`
	Attachment        string            `gorm:"size:512" json:"attachment"`
	Points            *float64          `json:"points"`
	IsReviewed        bool              `gorm:"not null;default:false" json:"is_reviewed"`
	Feedback          string            `gorm:"type:text" json:"feedback"`
	IsLate            bool              `gorm:"not null;default:false" json:"is_late"`
	ResubmissionCount int               `gorm:"not null;default:0" json:"resubmission_count"`
	Status            string            `gorm:"size:20;not null;default:active" json:"status"`
	Metadata          datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Assignment        Assignment        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student           StudentProfile    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// Score returns the points earned as a fraction of the assignment maximum.
// The second return value is false until the submission has been reviewed.
func (s Submission) Score(maxPoints float64) (float64, bool) {
	if !s.IsReviewed || s.Points == nil || maxPoints <= 0 {
		return 0, false
	}
	return *s.Points / maxPoints, true
}

// SubmissionGradeHistory is an append-only record of grading events.
type SubmissionGradeHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	Points       float64   `gorm:"not null" json:"points"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	GradedBy     uint      `gorm:"not null" json:"graded_by"`
	GradedAt     time.Time `gorm:"not null" json:"graded_at"`
}
