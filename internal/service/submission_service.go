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

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrNotEnrolled indicates the student holds no active enrollment in the
// assignment's course.
var ErrNotEnrolled = errors.New("student is not enrolled in this course")

// ErrSubmissionClosed indicates the assignment no longer accepts submissions.
var ErrSubmissionClosed = errors.New("assignment is closed for submissions")

// ErrAttachmentRequired indicates the assignment demands an attachment.
var ErrAttachmentRequired = errors.New("assignment requires an attachment")

// ErrDuplicateSubmission indicates the student already submitted this
// assignment; resubmission is an explicit separate operation.
var ErrDuplicateSubmission = errors.New("assignment already submitted")

// ErrNotSubmissionOwner indicates the submission belongs to another student.
var ErrNotSubmissionOwner = errors.New("submission belongs to another student")

// SubmissionService accepts and validates student submissions.
type SubmissionService interface {
	Submit(ctx context.Context, principal models.Principal, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Resubmit(ctx context.Context, principal models.Principal, id uint, payload dto.SubmissionResubmitRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, principal models.Principal, id uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, principal models.Principal, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
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

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	assignmentRepo repository.AssignmentRepository,
	enrollmentRepo repository.EnrollmentRepository,
	metrics EnrollmentMetrics,
	notifier Notifier,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissionRepo,
		assignments: assignmentRepo,
		enrollments: enrollmentRepo,
		metrics:     metrics,
		notifier:    notifier,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, principal models.Principal, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if !principal.IsStudent() {
		return dto.SubmissionResponse{}, ErrStudentRoleRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, principal.StudentID, assignment.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrNotEnrolled
		}
		return dto.SubmissionResponse{}, err
	}
	if !enrollment.IsActive {
		return dto.SubmissionResponse{}, ErrNotEnrolled
	}

	now := s.now()
	if !assignment.CanAcceptSubmission(now) {
		return dto.SubmissionResponse{}, ErrSubmissionClosed
	}

	if assignment.AttachmentRequired && strings.TrimSpace(payload.Attachment) == "" {
		return dto.SubmissionResponse{}, ErrAttachmentRequired
	}

	if _, err := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, principal.StudentID); err == nil {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    principal.StudentID,
		Content:      payload.Content,
		Attachment:   strings.TrimSpace(payload.Attachment),
		// Fixed now and never re-evaluated, even if the due date moves later.
		IsLate: now.After(assignment.DueDate),
		Status: models.StatusActive,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// A concurrent first submission can land between the existence check
		// and the insert; the unique index reports it here.
		if errors.Is(err, repository.ErrSubmissionExists) {
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		return dto.SubmissionResponse{}, err
	}

	s.afterSubmissionWrite(ctx, &enrollment, now)

	s.dispatch(ctx, "submission.created", principal, submission.ID, map[string]interface{}{
		"assignment_id": assignment.ID,
		"course_id":     assignment.CourseID,
		"student_id":    principal.StudentID,
		"is_late":       submission.IsLate,
	})

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", created.ID).Bool("is_late", created.IsLate).Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) Resubmit(ctx context.Context, principal models.Principal, id uint, payload dto.SubmissionResubmitRequest) (dto.SubmissionResponse, error) {
	if !principal.IsStudent() {
		return dto.SubmissionResponse{}, ErrStudentRoleRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.StudentID != principal.StudentID {
		return dto.SubmissionResponse{}, ErrNotSubmissionOwner
	}

	assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !assignment.CanAcceptSubmission(s.now()) {
		return dto.SubmissionResponse{}, ErrSubmissionClosed
	}

	if assignment.AttachmentRequired && strings.TrimSpace(payload.Attachment) == "" {
		return dto.SubmissionResponse{}, ErrAttachmentRequired
	}

	// IsLate keeps the value computed at first submission.
	submission.Content = payload.Content
	submission.Attachment = strings.TrimSpace(payload.Attachment)
	submission.ResubmissionCount++

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.dispatch(ctx, "submission.resubmitted", principal, submission.ID, map[string]interface{}{
		"assignment_id":      assignment.ID,
		"course_id":          assignment.CourseID,
		"student_id":         principal.StudentID,
		"resubmission_count": submission.ResubmissionCount,
	})

	updated, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(updated), nil
}

func (s *submissionService) Get(ctx context.Context, principal models.Principal, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	switch {
	case principal.IsStudent():
		if submission.StudentID != principal.StudentID {
			return dto.SubmissionResponse{}, ErrNotSubmissionOwner
		}
	case principal.IsTeacher():
		assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		if assignment.Course.TeacherID != principal.TeacherID {
			return dto.SubmissionResponse{}, ErrNotCourseOwner
		}
	default:
		return dto.SubmissionResponse{}, ErrCourseAccessDenied
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, principal models.Principal, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	switch {
	case principal.IsStudent():
		// Students only ever see their own work.
		filter.StudentID = &principal.StudentID
	case principal.IsTeacher():
		if filter.AssignmentID == nil {
			return nil, ErrAssignmentNotFound
		}
		assignment, err := s.assignments.GetByID(ctx, *filter.AssignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssignmentNotFound
			}
			return nil, err
		}
		if assignment.Course.TeacherID != principal.TeacherID {
			return nil, ErrNotCourseOwner
		}
	default:
		return nil, ErrCourseAccessDenied
	}

	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// afterSubmissionWrite refreshes completion and activity tracking on the
// owning enrollment. A failed recompute leaves the metric stale; it never
// fails the submission itself.
func (s *submissionService) afterSubmissionWrite(ctx context.Context, enrollment *models.Enrollment, now time.Time) {
	enrollment.LastActivity = &now
	if err := s.metrics.RecomputeCompletion(ctx, enrollment); err != nil {
		s.logger.Warn().Err(err).Uint("enrollment_id", enrollment.ID).Msg("failed to recompute completion")
	}
}

func (s *submissionService) dispatch(ctx context.Context, event string, principal models.Principal, submissionID uint, payload map[string]interface{}) {
	if s.activity != nil {
		id := submissionID
		if err := s.activity.Record(ctx, ActivityEntry{
			ActorID:    principal.UserID,
			ActorRole:  principal.Role,
			Action:     event,
			EntityType: "submission",
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
