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

// ErrCourseNotFound indicates a course could not be located.
var ErrCourseNotFound = errors.New("course not found")

// ErrInvalidCourseDates indicates the course end date precedes its start date.
var ErrInvalidCourseDates = errors.New("course end date must not precede start date")

// ErrCourseCodeTaken indicates the requested course code is already in use.
var ErrCourseCodeTaken = errors.New("course code already in use")

// ErrNotCourseOwner indicates the acting teacher does not own the course.
var ErrNotCourseOwner = errors.New("teacher does not own this course")

// ErrTeacherRoleRequired indicates the operation is reserved for teachers.
var ErrTeacherRoleRequired = errors.New("teacher role required")

// ErrStudentRoleRequired indicates the operation is reserved for students.
var ErrStudentRoleRequired = errors.New("student role required")

// CourseService orchestrates the course registry.
type CourseService interface {
	Create(ctx context.Context, principal models.Principal, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, principal models.Principal, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	List(ctx context.Context, principal models.Principal, req dto.CourseListRequest) (dto.CourseListResponse, error)
	Delete(ctx context.Context, principal models.Principal, id uint) error
}

type courseService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courseRepo repository.CourseRepository, enrollmentRepo repository.EnrollmentRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:     courseRepo,
		enrollments: enrollmentRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "course_service").Logger(),
		now:         time.Now,
	}
}

func (s *courseService) Create(ctx context.Context, principal models.Principal, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if !principal.IsTeacher() {
		return dto.CourseResponse{}, ErrTeacherRoleRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	startDate, err := dto.ParseDate(payload.StartDate)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	endDate, err := dto.ParseDate(payload.EndDate)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if endDate.Before(startDate) {
		return dto.CourseResponse{}, ErrInvalidCourseDates
	}

	code := strings.ToUpper(strings.TrimSpace(payload.Code))
	if _, err := s.courses.GetByCode(ctx, code); err == nil {
		return dto.CourseResponse{}, ErrCourseCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CourseResponse{}, err
	}

	enrollmentOpen := true
	if payload.EnrollmentOpen != nil {
		enrollmentOpen = *payload.EnrollmentOpen
	}

	course := models.Course{
		Title:          strings.TrimSpace(payload.Title),
		Code:           code,
		Description:    payload.Description,
		TeacherID:      principal.TeacherID,
		StartDate:      startDate,
		EndDate:        endDate,
		MaxStudents:    payload.MaxStudents,
		EnrollmentOpen: enrollmentOpen,
		IsActive:       true,
		Status:         models.StatusActive,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Str("code", course.Code).Msg("course created")

	return dto.NewCourseResponse(course, 0, s.now()), nil
}

func (s *courseService) Update(ctx context.Context, principal models.Principal, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if !principal.IsTeacher() {
		return dto.CourseResponse{}, ErrTeacherRoleRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if course.TeacherID != principal.TeacherID {
		return dto.CourseResponse{}, ErrNotCourseOwner
	}

	if payload.Title != nil {
		course.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = *payload.Description
	}
	if payload.StartDate != nil {
		startDate, err := dto.ParseDate(*payload.StartDate)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		course.StartDate = startDate
	}
	if payload.EndDate != nil {
		endDate, err := dto.ParseDate(*payload.EndDate)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		course.EndDate = endDate
	}
	if payload.MaxStudents != nil {
		course.MaxStudents = *payload.MaxStudents
	}
	if payload.EnrollmentOpen != nil {
		course.EnrollmentOpen = *payload.EnrollmentOpen
	}
	if payload.IsActive != nil {
		course.IsActive = *payload.IsActive
	}

	// The date invariant holds on every mutation, not just creation.
	if course.EndDate.Before(course.StartDate) {
		return dto.CourseResponse{}, ErrInvalidCourseDates
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	return s.respond(ctx, course)
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	return s.respond(ctx, course)
}

func (s *courseService) List(ctx context.Context, principal models.Principal, req dto.CourseListRequest) (dto.CourseListResponse, error) {
	filter := repository.CourseFilter{
		Search:   req.Search,
		Sort:     req.Sort,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	// Teachers see the courses they own; students see the courses they are
	// actively enrolled in.
	switch {
	case principal.IsTeacher():
		filter.TeacherID = &principal.TeacherID
	case principal.IsStudent():
		filter.StudentID = &principal.StudentID
	}

	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return dto.CourseListResponse{}, err
	}

	now := s.now()
	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		count, err := s.enrollments.CountActiveByCourse(ctx, course.ID)
		if err != nil {
			return dto.CourseListResponse{}, err
		}
		responses = append(responses, dto.NewCourseResponse(course, count, now))
	}

	return dto.CourseListResponse{Courses: responses, Total: total}, nil
}

func (s *courseService) Delete(ctx context.Context, principal models.Principal, id uint) error {
	if !principal.IsTeacher() {
		return ErrTeacherRoleRequired
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	if course.TeacherID != principal.TeacherID {
		return ErrNotCourseOwner
	}

	return s.courses.Delete(ctx, id)
}

func (s *courseService) respond(ctx context.Context, course models.Course) (dto.CourseResponse, error) {
	count, err := s.enrollments.CountActiveByCourse(ctx, course.ID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course, count, s.now()), nil
}
