package dto

import (
	"time"

	"github.com/edunexa/edunexa-api/internal/models"
)

const dateLayout = "2006-01-02"

// CourseCreateRequest describes the payload for creating a new course.
type CourseCreateRequest struct {
	Title          string `json:"title" validate:"required,min=3,max=200"`
	Code           string `json:"code" validate:"required,min=2,max=20"`
	Description    string `json:"description" validate:"required,min=10"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"required,datetime=2006-01-02"`
	MaxStudents    int    `json:"max_students" validate:"required,gt=0"`
	EnrollmentOpen *bool  `json:"enrollment_open"`
}

// CourseUpdateRequest describes the payload for updating an existing course.
type CourseUpdateRequest struct {
	Title          *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description    *string `json:"description" validate:"omitempty,min=10"`
	StartDate      *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	MaxStudents    *int    `json:"max_students" validate:"omitempty,gt=0"`
	EnrollmentOpen *bool   `json:"enrollment_open"`
	IsActive       *bool   `json:"is_active"`
}

// CourseListRequest describes query options for course listings.
type CourseListRequest struct {
	Search   string `query:"search"`
	Sort     string `query:"sort"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// TeacherLite summarizes the owning teacher in course responses.
type TeacherLite struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// CourseResponse is the serialized representation returned to API clients.
// StudentCount, AvailableSlots, and IsEnrollmentActive are recomputed from the
// enrollment ledger on every read, never cached.
type CourseResponse struct {
	ID                 uint        `json:"id"`
	Title              string      `json:"title"`
	Code               string      `json:"code"`
	Description        string      `json:"description"`
	Teacher            TeacherLite `json:"teacher"`
	StartDate          time.Time   `json:"start_date"`
	EndDate            time.Time   `json:"end_date"`
	MaxStudents        int         `json:"max_students"`
	EnrollmentOpen     bool        `json:"enrollment_open"`
	IsActive           bool        `json:"is_active"`
	StudentCount       int64       `json:"student_count"`
	AvailableSlots     int         `json:"available_slots"`
	IsEnrollmentActive bool        `json:"is_enrollment_active"`
	Status             string      `json:"status"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// CourseListResponse wraps a paginated course listing.
type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
	Total   int64            `json:"total"`
}

// NewCourseResponse converts a model and its derived metrics into a DTO.
func NewCourseResponse(model models.Course, activeEnrollments int64, now time.Time) CourseResponse {
	response := CourseResponse{
		ID:                 model.ID,
		Title:              model.Title,
		Code:               model.Code,
		Description:        model.Description,
		StartDate:          model.StartDate,
		EndDate:            model.EndDate,
		MaxStudents:        model.MaxStudents,
		EnrollmentOpen:     model.EnrollmentOpen,
		IsActive:           model.IsActive,
		StudentCount:       activeEnrollments,
		AvailableSlots:     model.AvailableSlots(activeEnrollments),
		IsEnrollmentActive: model.IsEnrollmentActive(now),
		Status:             model.Status,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}

	if model.Teacher.ID != 0 {
		response.Teacher = TeacherLite{
			ID:       model.Teacher.ID,
			FullName: model.Teacher.FullName,
			Email:    model.Teacher.Email,
		}
	}

	return response
}

// ParseDate parses a date-only request field.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}
