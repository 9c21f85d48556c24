package dto

import (
	"time"

	"github.com/edunexa/edunexa-api/internal/models"
)

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID            uint   `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	StudentNumber string `json:"student_number"`
}

// CourseLite summarizes the course a membership belongs to.
type CourseLite struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Code  string `json:"code"`
}

// EnrollmentResponse is returned to API clients when viewing memberships.
type EnrollmentResponse struct {
	ID                   uint        `json:"id"`
	StudentID            uint        `json:"student_id"`
	CourseID             uint        `json:"course_id"`
	IsActive             bool        `json:"is_active"`
	EnrolledAt           time.Time   `json:"enrolled_at"`
	LastActivity         *time.Time  `json:"last_activity"`
	CompletionPercentage float64     `json:"completion_percentage"`
	Grade                *float64    `json:"grade"`
	Reactivated          bool        `json:"reactivated"`
	Status               string      `json:"status"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
	Student              StudentLite `json:"student"`
	Course               *CourseLite `json:"course,omitempty"`
}

// NewEnrollmentResponse converts an Enrollment model into a DTO. Reactivated
// tells enroll callers whether the membership already existed.
func NewEnrollmentResponse(model models.Enrollment, reactivated bool) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:                   model.ID,
		StudentID:            model.StudentID,
		CourseID:             model.CourseID,
		IsActive:             model.IsActive,
		EnrolledAt:           model.EnrolledAt,
		LastActivity:         model.LastActivity,
		CompletionPercentage: model.CompletionPercentage,
		Grade:                model.Grade,
		Reactivated:          reactivated,
		Status:               model.Status,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:            model.Student.ID,
			FullName:      model.Student.FullName,
			Email:         model.Student.Email,
			StudentNumber: model.Student.StudentNumber,
		}
	}

	if model.Course.ID != 0 {
		response.Course = &CourseLite{
			ID:    model.Course.ID,
			Title: model.Course.Title,
			Code:  model.Course.Code,
		}
	}

	return response
}
