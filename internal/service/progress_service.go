package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexa/edunexa-api/internal/dto"
	"github.com/edunexa/edunexa-api/internal/models"
	"github.com/edunexa/edunexa-api/internal/repository"
)

// ProgressService builds the per-course progress read model.
type ProgressService interface {
	GetCourseProgress(ctx context.Context, principal models.Principal, courseID, studentID uint) (dto.CourseProgressResponse, error)
}

type progressService struct {
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProgressService builds the progress aggregator. The cache client may be
// nil, in which case every call recomputes from the database.
func NewProgressService(
	courseRepo repository.CourseRepository,
	assignmentRepo repository.AssignmentRepository,
	enrollmentRepo repository.EnrollmentRepository,
	submissionRepo repository.SubmissionRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) ProgressService {
	return &progressService{
		courses:     courseRepo,
		assignments: assignmentRepo,
		enrollments: enrollmentRepo,
		submissions: submissionRepo,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "progress_service").Logger(),
		now:         time.Now,
	}
}

// GetCourseProgress returns the aggregated standing of one student in one
// course. Students always read their own progress; teachers may read any
// student's progress in a course they own.
func (s *progressService) GetCourseProgress(ctx context.Context, principal models.Principal, courseID, studentID uint) (dto.CourseProgressResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseProgressResponse{}, ErrCourseNotFound
		}
		return dto.CourseProgressResponse{}, err
	}

	switch {
	case principal.IsStudent():
		studentID = principal.StudentID
	case principal.IsTeacher():
		if course.TeacherID != principal.TeacherID {
			return dto.CourseProgressResponse{}, ErrNotCourseOwner
		}
	default:
		return dto.CourseProgressResponse{}, ErrCourseAccessDenied
	}

	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseProgressResponse{}, ErrNotEnrolled
		}
		return dto.CourseProgressResponse{}, err
	}
	if !enrollment.IsActive {
		return dto.CourseProgressResponse{}, ErrNotEnrolled
	}

	cacheKey := fmt.Sprintf("progress:student:%d:course:%d", studentID, courseID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.CourseProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Uint("course_id", courseID).Msg("progress cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	submissions, err := s.submissions.ListForCourse(ctx, courseID, studentID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	response := s.buildResponse(course, enrollment, assignments, submissions)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress cache")
			}
		}
	}

	return response, nil
}

func (s *progressService) buildResponse(course models.Course, enrollment models.Enrollment, assignments []models.Assignment, submissions []models.Submission) dto.CourseProgressResponse {
	byAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = submission
	}

	now := s.now()
	items := make([]dto.AssignmentProgress, 0, len(assignments))
	submitted := 0
	reviewed := 0

	for _, assignment := range assignments {
		item := dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			DueDate:      assignment.DueDate,
			MaxPoints:    assignment.MaxPoints,
			Weight:       assignment.Weight,
		}

		if submission, ok := byAssignment[assignment.ID]; ok {
			submitted++
			if submission.IsReviewed {
				reviewed++
			}
			id := submission.ID
			submittedAt := submission.CreatedAt
			item.Submitted = true
			item.SubmissionID = &id
			item.Points = submission.Points
			item.IsReviewed = submission.IsReviewed
			item.IsLate = submission.IsLate
			item.SubmittedAt = &submittedAt
		} else {
			item.Overdue = assignment.IsPastDue(now)
		}

		items = append(items, item)
	}

	return dto.CourseProgressResponse{
		CourseID:             course.ID,
		CourseTitle:          course.Title,
		CompletionPercentage: enrollment.CompletionPercentage,
		Grade:                enrollment.Grade,
		TotalAssignments:     len(assignments),
		SubmittedCount:       submitted,
		ReviewedCount:        reviewed,
		Assignments:          items,
		GeneratedAt:          now,
	}
}
