package dto

import (
	"time"

	"github.com/edunexa/edunexa-api/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting an assignment.
// Attachment is an opaque blob reference; the service only checks presence.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	Content      string `json:"content" validate:"required,min=1"`
	Attachment   string `json:"attachment" validate:"omitempty,max=512"`
}

// SubmissionResubmitRequest describes the explicit resubmission payload.
type SubmissionResubmitRequest struct {
	Content    string `json:"content" validate:"required,min=1"`
	Attachment string `json:"attachment" validate:"omitempty,max=512"`
}

// GradeSubmissionRequest describes the payload for grading a submission.
type GradeSubmissionRequest struct {
	Points   float64 `json:"points" validate:"gte=0"`
	Feedback string  `json:"feedback" validate:"omitempty,min=3"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID        uint      `json:"id"`
	CourseID  uint      `json:"course_id"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"due_date"`
	MaxPoints float64   `json:"max_points"`
	Weight    float64   `json:"weight"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                uint           `json:"id"`
	AssignmentID      uint           `json:"assignment_id"`
	StudentID         uint           `json:"student_id"`
	Content           string         `json:"content"`
	Attachment        string         `json:"attachment"`
	Points            *float64       `json:"points"`
	IsReviewed        bool           `json:"is_reviewed"`
	Feedback          string         `json:"feedback"`
	IsLate            bool           `json:"is_late"`
	ResubmissionCount int            `json:"resubmission_count"`
	Status            string         `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Assignment        AssignmentLite `json:"assignment"`
	Student           StudentLite    `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:                model.ID,
		AssignmentID:      model.AssignmentID,
		StudentID:         model.StudentID,
		Content:           model.Content,
		Attachment:        model.Attachment,
		Points:            model.Points,
		IsReviewed:        model.IsReviewed,
		Feedback:          model.Feedback,
		IsLate:            model.IsLate,
		ResubmissionCount: model.ResubmissionCount,
		Status:            model.Status,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:        model.Assignment.ID,
			CourseID:  model.Assignment.CourseID,
			Title:     model.Assignment.Title,
			DueDate:   model.Assignment.DueDate,
			MaxPoints: model.Assignment.MaxPoints,
			Weight:    model.Assignment.Weight,
		}
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:            model.Student.ID,
			FullName:      model.Student.FullName,
			Email:         model.Student.Email,
			StudentNumber: model.Student.StudentNumber,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
