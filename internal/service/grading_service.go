package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/edunexa/edunexa-api/internal/dto"
	"github.com/edunexa/edunexa-api/internal/models"
	"github.com/edunexa/edunexa-api/internal/repository"
)

// ErrPointsOutOfRange indicates a grading score outside [0, max_points].
var ErrPointsOutOfRange = errors.New("points outside assignment range")

// GradingService encapsulates grading workflows for teachers.
type GradingService interface {
	Grade(ctx context.Context, principal models.Principal, submissionID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	metrics     EnrollmentMetrics
	notifier    Notifier
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(
	submissionRepo repository.SubmissionRepository,
	assignmentRepo repository.AssignmentRepository,
	enrollmentRepo repository.EnrollmentRepository,
	metrics EnrollmentMetrics,
	notifier Notifier,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		submissions: submissionRepo,
		assignments: assignmentRepo,
		enrollments: enrollmentRepo,
		metrics:     metrics,
		notifier:    notifier,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, principal models.Principal, submissionID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/edunexa/edunexa-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.review")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(principal.UserID)),
	)
	defer span.End()

	if !principal.IsTeacher() {
		span.SetStatus(codes.Error, "role_mismatch")
		return dto.SubmissionResponse{}, ErrTeacherRoleRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if assignment.Course.TeacherID != principal.TeacherID {
		span.SetStatus(codes.Error, "not_course_owner")
		return dto.SubmissionResponse{}, ErrNotCourseOwner
	}

	if payload.Points < 0 || payload.Points > assignment.MaxPoints+1e-9 {
		span.SetStatus(codes.Error, "points_out_of_range")
		return dto.SubmissionResponse{}, ErrPointsOutOfRange
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if submission.IsReviewed && submission.Points != nil &&
		math.Abs(*submission.Points-payload.Points) < 1e-6 &&
		strings.TrimSpace(submission.Feedback) == feedback {
		// Repeating an identical review is a no-op.
		span.SetAttributes(attribute.Bool("grading.idempotent", true))
		return dto.NewSubmissionResponse(submission), nil
	}

	points := payload.Points
	submission.Points = &points
	submission.Feedback = feedback
	submission.IsReviewed = true

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	history := models.SubmissionGradeHistory{
		SubmissionID: submission.ID,
		Points:       payload.Points,
		Feedback:     feedback,
		GradedBy:     principal.TeacherID,
		GradedAt:     s.now(),
	}
	if err := s.submissions.CreateGradeHistory(ctx, &history); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to persist grading history")
		span.RecordError(err)
	}

	s.recomputeGrade(ctx, submission.StudentID, assignment.CourseID)

	payloadMeta := map[string]interface{}{
		"submission_id": submission.ID,
		"assignment_id": submission.AssignmentID,
		"student_id":    submission.StudentID,
		"points":        payload.Points,
	}
	if s.activity != nil {
		id := submission.ID
		if err := s.activity.Record(ctx, ActivityEntry{
			ActorID:    principal.UserID,
			ActorRole:  principal.Role,
			Action:     "submission.graded",
			EntityType: "submission",
			EntityID:   &id,
			Metadata:   payloadMeta,
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record grading activity")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, "submission.graded", payloadMeta); err != nil {
			s.logger.Warn().Err(err).Msg("failed to dispatch grading notification")
		}
	}

	span.SetAttributes(attribute.Float64("grading.points", payload.Points))

	graded, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(graded), nil
}

// recomputeGrade refreshes the weighted grade on the owning enrollment. A
// failure leaves the grade stale and is only logged.
func (s *gradingService) recomputeGrade(ctx context.Context, studentID, courseID uint) {
	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Uint("course_id", courseID).Msg("failed to load enrollment for grade recompute")
		return
	}

	if err := s.metrics.RecomputeGrade(ctx, &enrollment); err != nil {
		s.logger.Warn().Err(err).Uint("enrollment_id", enrollment.ID).Msg("failed to recompute grade")
	}
}
