package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexa/edunexa-api/internal/dto"
	"github.com/edunexa/edunexa-api/internal/models"
	"github.com/edunexa/edunexa-api/internal/repository"
)

// ErrAssignmentNotFound indicates an assignment could not be located.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrDueDateInPast indicates a new assignment is already past due. This is a
// creation-time rule only; updates may move the due date freely.
var ErrDueDateInPast = errors.New("due date must not be in the past")

// ErrInvalidLateDeadline indicates the late deadline precedes the due date.
var ErrInvalidLateDeadline = errors.New("late submission deadline must not precede due date")

// ErrCourseAccessDenied indicates the principal can neither own nor attend the course.
var ErrCourseAccessDenied = errors.New("course access denied")

// AssignmentService orchestrates the assignment catalog.
type AssignmentService interface {
	Create(ctx context.Context, principal models.Principal, courseID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, principal models.Principal, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	ListByCourse(ctx context.Context, principal models.Principal, courseID uint) ([]dto.AssignmentResponse, error)
	Delete(ctx context.Context, principal models.Principal, id uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		courses:     courseRepo,
		enrollments: enrollmentRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, principal models.Principal, courseID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !principal.IsTeacher() {
		return dto.AssignmentResponse{}, ErrTeacherRoleRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if course.TeacherID != principal.TeacherID {
		return dto.AssignmentResponse{}, ErrNotCourseOwner
	}

	now := s.now()
	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if dueDate.Before(now) {
		return dto.AssignmentResponse{}, ErrDueDateInPast
	}

	var lateDeadline *time.Time
	if payload.LateSubmissionDeadline != nil {
		parsed, err := time.Parse(time.RFC3339, *payload.LateSubmissionDeadline)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		if parsed.Before(dueDate) {
			return dto.AssignmentResponse{}, ErrInvalidLateDeadline
		}
		lateDeadline = &parsed
	}

	weight := payload.Weight
	if weight <= 0 {
		weight = 1
	}

	assignment := models.Assignment{
		CourseID:               courseID,
		Title:                  strings.TrimSpace(payload.Title),
		Description:            payload.Description,
		DueDate:                dueDate,
		MaxPoints:              payload.MaxPoints,
		AllowLateSubmissions:   payload.AllowLateSubmissions,
		LateSubmissionDeadline: lateDeadline,
		AttachmentRequired:     payload.AttachmentRequired,
		Weight:                 weight,
		Status:                 models.StatusActive,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", courseID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment, now), nil
}

func (s *assignmentService) Update(ctx context.Context, principal models.Principal, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if !principal.IsTeacher() {
		return dto.AssignmentResponse{}, ErrTeacherRoleRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if assignment.Course.TeacherID != principal.TeacherID {
		return dto.AssignmentResponse{}, ErrNotCourseOwner
	}

	if payload.Title != nil {
		assignment.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.DueDate != nil {
		// The past-due rule applies at creation only.
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
	}
	if payload.MaxPoints != nil {
		assignment.MaxPoints = *payload.MaxPoints
	}
	if payload.AllowLateSubmissions != nil {
		assignment.AllowLateSubmissions = *payload.AllowLateSubmissions
	}
	if payload.LateSubmissionDeadline != nil {
		parsed, err := time.Parse(time.RFC3339, *payload.LateSubmissionDeadline)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.LateSubmissionDeadline = &parsed
	}
	if payload.AttachmentRequired != nil {
		assignment.AttachmentRequired = *payload.AttachmentRequired
	}
	if payload.Weight != nil {
		assignment.Weight = *payload.Weight
	}

	if assignment.LateSubmissionDeadline != nil && assignment.LateSubmissionDeadline.Before(assignment.DueDate) {
		return dto.AssignmentResponse{}, ErrInvalidLateDeadline
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, principal models.Principal, courseID uint) ([]dto.AssignmentResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if err := s.authorizeCourseRead(ctx, principal, course); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments, s.now()), nil
}

func (s *assignmentService) Delete(ctx context.Context, principal models.Principal, id uint) error {
	if !principal.IsTeacher() {
		return ErrTeacherRoleRequired
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if assignment.Course.TeacherID != principal.TeacherID {
		return ErrNotCourseOwner
	}

	return s.assignments.Delete(ctx, id)
}

// authorizeCourseRead grants the owning teacher and actively enrolled students
// access to course content.
func (s *assignmentService) authorizeCourseRead(ctx context.Context, principal models.Principal, course models.Course) error {
	switch {
	case principal.IsTeacher():
		if course.TeacherID != principal.TeacherID {
			return ErrNotCourseOwner
		}
		return nil
	case principal.IsStudent():
		enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, principal.StudentID, course.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseAccessDenied
			}
			return err
		}
		if !enrollment.IsActive {
			return ErrCourseAccessDenied
		}
		return nil
	default:
		return ErrCourseAccessDenied
	}
}
