package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexa/edunexa-api/internal/dto"
	"github.com/edunexa/edunexa-api/internal/models"
	"github.com/edunexa/edunexa-api/internal/repository"
)

// ErrCourseFull indicates the course has no remaining seats.
var ErrCourseFull = errors.New("course is full")

// ErrEnrollmentClosed indicates the course is not accepting enrollments.
var ErrEnrollmentClosed = errors.New("enrollment is closed for this course")

// ErrEnrollmentNotFound indicates no membership exists for the pair.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// EnrollmentMetrics recomputes derived enrollment metrics. The submission and
// grading engines call these synchronously after every write that can change
// them; there is no background recomputation.
type EnrollmentMetrics interface {
	RecomputeCompletion(ctx context.Context, enrollment *models.Enrollment) error
	RecomputeGrade(ctx context.Context, enrollment *models.Enrollment) error
}

// EnrollmentService manages course memberships and their derived metrics.
type EnrollmentService interface {
	EnrollmentMetrics
	Enroll(ctx context.Context, principal models.Principal, courseID uint) (dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, principal models.Principal, courseID uint) error
	GetLedgerEntry(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
	ListForStudent(ctx context.Context, principal models.Principal, activeOnly bool) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	notifier    Notifier
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	assignmentRepo repository.AssignmentRepository,
	submissionRepo repository.SubmissionRepository,
	notifier Notifier,
	activity ActivityRecorder,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollmentRepo,
		courses:     courseRepo,
		assignments: assignmentRepo,
		submissions: submissionRepo,
		notifier:    notifier,
		activity:    activity,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		now:         time.Now,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, principal models.Principal, courseID uint) (dto.EnrollmentResponse, error) {
	if !principal.IsStudent() {
		return dto.EnrollmentResponse{}, ErrStudentRoleRequired
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrCourseNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	if !course.IsEnrollmentActive(s.now()) {
		return dto.EnrollmentResponse{}, ErrEnrollmentClosed
	}

	// Capacity is re-checked inside the repository transaction while the
	// course row is locked, so two concurrent enrolls cannot both pass.
	enrollment, created, err := s.enrollments.CreateOrReactivate(ctx, principal.StudentID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseCapacityReached) {
			return dto.EnrollmentResponse{}, ErrCourseFull
		}
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", principal.StudentID).
		Uint("course_id", courseID).
		Bool("reactivated", !created).
		Msg("student enrolled")

	s.dispatch(ctx, "enrollment.created", principal, "enrollment", enrollment.ID, map[string]interface{}{
		"course_id":   courseID,
		"course_code": course.Code,
		"student_id":  principal.StudentID,
		"reactivated": !created,
	})

	return dto.NewEnrollmentResponse(enrollment, !created), nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, principal models.Principal, courseID uint) error {
	if !principal.IsStudent() {
		return ErrStudentRoleRequired
	}

	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, principal.StudentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	// History is preserved: the row is deactivated, never deleted.
	enrollment.IsActive = false
	if err := s.enrollments.Update(ctx, &enrollment); err != nil {
		return err
	}

	s.dispatch(ctx, "enrollment.deactivated", principal, "enrollment", enrollment.ID, map[string]interface{}{
		"course_id":  courseID,
		"student_id": principal.StudentID,
	})

	return nil
}

func (s *enrollmentService) GetLedgerEntry(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Enrollment{}, ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

// ListForStudent returns the caller's own membership history, newest first.
func (s *enrollmentService) ListForStudent(ctx context.Context, principal models.Principal, activeOnly bool) ([]dto.EnrollmentResponse, error) {
	if !principal.IsStudent() {
		return nil, ErrStudentRoleRequired
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, principal.StudentID, activeOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, dto.NewEnrollmentResponse(enrollment, false))
	}

	return responses, nil
}

// RecomputeCompletion refreshes the percentage of course assignments the
// student has submitted anything for. A course without assignments yields 0.
func (s *enrollmentService) RecomputeCompletion(ctx context.Context, enrollment *models.Enrollment) error {
	total, err := s.assignments.CountByCourse(ctx, enrollment.CourseID)
	if err != nil {
		return err
	}

	percentage := 0.0
	if total > 0 {
		submitted, err := s.submissions.CountDistinctAssignments(ctx, enrollment.CourseID, enrollment.StudentID)
		if err != nil {
			return err
		}
		percentage = float64(submitted) / float64(total) * 100
	}

	enrollment.CompletionPercentage = percentage
	return s.enrollments.Update(ctx, enrollment)
}

// RecomputeGrade refreshes the weight-normalized average over reviewed
// submissions. With no reviewed submissions the grade is nil: absence of
// graded work is not a zero.
func (s *enrollmentService) RecomputeGrade(ctx context.Context, enrollment *models.Enrollment) error {
	reviewed, err := s.submissions.ListReviewedForCourse(ctx, enrollment.CourseID, enrollment.StudentID)
	if err != nil {
		return err
	}

	var weightedScore, weightSum float64
	for _, submission := range reviewed {
		score, ok := submission.Score(submission.Assignment.MaxPoints)
		if !ok {
			continue
		}
		weight := submission.Assignment.Weight
		if weight <= 0 {
			weight = 1
		}
		weightedScore += score * weight
		weightSum += weight
	}

	if weightSum == 0 {
		enrollment.Grade = nil
	} else {
		grade := math.Round(weightedScore/weightSum*100*100) / 100
		enrollment.Grade = &grade
	}

	return s.enrollments.Update(ctx, enrollment)
}

// dispatch records the audit entry and fires the notification for a ledger
// event. Neither failure is surfaced to the caller.
func (s *enrollmentService) dispatch(ctx context.Context, event string, principal models.Principal, entityType string, entityID uint, payload map[string]interface{}) {
	if s.activity != nil {
		id := entityID
		if err := s.activity.Record(ctx, ActivityEntry{
			ActorID:    principal.UserID,
			ActorRole:  principal.Role,
			Action:     event,
			EntityType: entityType,
			EntityID:   &id,
			Metadata:   payload,
		}); err != nil {
			s.logger.Warn().Err(err).Str("event", event).Msg("failed to record activity")
		}
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, event, payload); err != nil {
			s.logger.Warn().Err(err).Str("event", event).Msg("failed to dispatch notification")
		}
	}
}
