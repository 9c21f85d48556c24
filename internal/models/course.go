package models

import (
	"time"

	"gorm.io/datatypes"
)

// Course groups assignments under an owning teacher and bounds enrollment by
// capacity and an enrollment window.
type Course struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	Title          string            `gorm:"size:200;not null" json:"title"`
	Code           string            `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Description    string            `gorm:"type:text" json:"description"`
	TeacherID      uint              `gorm:"not null;index" json:"teacher_id"`
	StartDate      time.Time         `gorm:"not null" json:"start_date"`
	EndDate        time.Time         `gorm:"not null" json:"end_date"`
	MaxStudents    int               `gorm:"not null;default:30" json:"max_students"`
	EnrollmentOpen bool              `gorm:"not null;default:true" json:"enrollment_open"`
	IsActive       bool              `gorm:"not null;default:true" json:"is_active"`
	Status         string            `gorm:"size:20;not null;default:active" json:"status"`
	Metadata       datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Teacher        TeacherProfile    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
}

// IsEnrollmentActive reports whether new enrollments are accepted at the given
// reference time. The end date is compared at day granularity: a course still
// accepts enrollments on its final day.
func (c Course) IsEnrollmentActive(reference time.Time) bool {
	today := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, reference.Location())
	return c.IsActive && c.EnrollmentOpen && !c.EndDate.Before(today)
}

// AvailableSlots returns how many seats remain given the current number of
// active enrollments, never going below zero.
func (c Course) AvailableSlots(activeEnrollments int64) int {
	slots := c.MaxStudents - int(activeEnrollments)
	if slots < 0 {
		return 0
	}
	return slots
}
