package models

import (
	"time"

	"gorm.io/datatypes"
)

// Enrollment is the membership record linking one student to one course. The
// (student, course) pair is unique for the lifetime of the system; leaving a
// course deactivates the row instead of deleting it.
type Enrollment struct {
	ID                   uint              `gorm:"primaryKey" json:"id"`
	StudentID            uint              `gorm:"not null;uniqueIndex:idx_enrollments_student_course" json:"student_id"`
	CourseID             uint              `gorm:"not null;uniqueIndex:idx_enrollments_student_course" json:"course_id"`
	IsActive             bool              `gorm:"not null;default:true" json:"is_active"`
	EnrolledAt           time.Time         `gorm:"not null" json:"enrolled_at"`
	LastActivity         *time.Time        `json:"last_activity"`
	CompletionPercentage float64           `gorm:"not null;default:0" json:"completion_percentage"`
	Grade                *float64          `json:"grade"`
	Status               string            `gorm:"size:20;not null;default:active" json:"status"`
	Metadata             datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
	Student              StudentProfile    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Course               Course            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}
