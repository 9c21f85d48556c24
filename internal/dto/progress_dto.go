package dto

import "time"

// AssignmentProgress describes one assignment's state for a student.
type AssignmentProgress struct {
	AssignmentID uint       `json:"assignment_id"`
	Title        string     `json:"title"`
	DueDate      time.Time  `json:"due_date"`
	MaxPoints    float64    `json:"max_points"`
	Weight       float64    `json:"weight"`
	Submitted    bool       `json:"submitted"`
	SubmissionID *uint      `json:"submission_id"`
	Points       *float64   `json:"points"`
	IsReviewed   bool       `json:"is_reviewed"`
	IsLate       bool       `json:"is_late"`
	Overdue      bool       `json:"overdue"`
	SubmittedAt  *time.Time `json:"submitted_at"`
}

// CourseProgressResponse aggregates a student's standing in one course.
type CourseProgressResponse struct {
	CourseID             uint                 `json:"course_id"`
	CourseTitle          string               `json:"course_title"`
	CompletionPercentage float64              `json:"completion_percentage"`
	Grade                *float64             `json:"grade"`
	TotalAssignments     int                  `json:"total_assignments"`
	SubmittedCount       int                  `json:"submitted_count"`
	ReviewedCount        int                  `json:"reviewed_count"`
	Assignments          []AssignmentProgress `json:"assignments"`
	GeneratedAt          time.Time            `json:"generated_at"`
}
