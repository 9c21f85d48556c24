package dto

import (
	"time"

	"github.com/edunexa/edunexa-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	Title                  string  `json:"title" validate:"required,min=3,max=200"`
	Description            string  `json:"description" validate:"required,min=10"`
	DueDate                string  `json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	MaxPoints              float64 `json:"max_points" validate:"required,gt=0"`
	AllowLateSubmissions   bool    `json:"allow_late_submissions"`
	LateSubmissionDeadline *string `json:"late_submission_deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	AttachmentRequired     bool    `json:"attachment_required"`
	Weight                 float64 `json:"weight" validate:"omitempty,gt=0"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title                  *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description            *string  `json:"description" validate:"omitempty,min=10"`
	DueDate                *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	MaxPoints              *float64 `json:"max_points" validate:"omitempty,gt=0"`
	AllowLateSubmissions   *bool    `json:"allow_late_submissions"`
	LateSubmissionDeadline *string  `json:"late_submission_deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	AttachmentRequired     *bool    `json:"attachment_required"`
	Weight                 *float64 `json:"weight" validate:"omitempty,gt=0"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID                     uint       `json:"id"`
	CourseID               uint       `json:"course_id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	DueDate                time.Time  `json:"due_date"`
	MaxPoints              float64    `json:"max_points"`
	AllowLateSubmissions   bool       `json:"allow_late_submissions"`
	LateSubmissionDeadline *time.Time `json:"late_submission_deadline"`
	AttachmentRequired     bool       `json:"attachment_required"`
	Weight                 float64    `json:"weight"`
	IsPastDue              bool       `json:"is_past_due"`
	CanAcceptSubmission    bool       `json:"can_accept_submission"`
	AcceptanceState        string     `json:"acceptance_state"`
	Status                 string     `json:"status"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO, deriving the submission
// window state at the given reference time.
func NewAssignmentResponse(model models.Assignment, now time.Time) AssignmentResponse {
	return AssignmentResponse{
		ID:                     model.ID,
		CourseID:               model.CourseID,
		Title:                  model.Title,
		Description:            model.Description,
		DueDate:                model.DueDate,
		MaxPoints:              model.MaxPoints,
		AllowLateSubmissions:   model.AllowLateSubmissions,
		LateSubmissionDeadline: model.LateSubmissionDeadline,
		AttachmentRequired:     model.AttachmentRequired,
		Weight:                 model.Weight,
		IsPastDue:              model.IsPastDue(now),
		CanAcceptSubmission:    model.CanAcceptSubmission(now),
		AcceptanceState:        string(model.Acceptance(now)),
		Status:                 model.Status,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, now time.Time) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, now))
	}

	return responses
}
