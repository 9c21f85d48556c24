package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edunexa/edunexa-api/internal/models"
	"github.com/edunexa/edunexa-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func ptrString(v string) *string {
	return &v
}

func ptrFloat(v float64) *float64 {
	return &v
}

func ptrBool(v bool) *bool {
	return &v
}

// memCourseRepo is an in-memory CourseRepository.
type memCourseRepo struct {
	courses map[uint]models.Course
	nextID  uint
}

func newMemCourseRepo() *memCourseRepo {
	return &memCourseRepo{courses: make(map[uint]models.Course), nextID: 1}
}

func (m *memCourseRepo) List(ctx context.Context, filter repository.CourseFilter) ([]models.Course, int64, error) {
	var out []models.Course
	for _, course := range m.courses {
		if filter.TeacherID != nil && course.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(course.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, course)
	}
	return out, int64(len(out)), nil
}

func (m *memCourseRepo) GetByID(ctx context.Context, id uint) (models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (m *memCourseRepo) GetByCode(ctx context.Context, code string) (models.Course, error) {
	for _, course := range m.courses {
		if course.Code == code {
			return course, nil
		}
	}
	return models.Course{}, gorm.ErrRecordNotFound
}

func (m *memCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = m.nextID
	m.nextID++
	m.courses[course.ID] = *course
	return nil
}

func (m *memCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = *course
	return nil
}

func (m *memCourseRepo) Delete(ctx context.Context, id uint) error {
	delete(m.courses, id)
	return nil
}

// memAssignmentRepo is an in-memory AssignmentRepository.
type memAssignmentRepo struct {
	assignments map[uint]models.Assignment
	courses     *memCourseRepo
	nextID      uint
}

func newMemAssignmentRepo(courses *memCourseRepo) *memAssignmentRepo {
	return &memAssignmentRepo{assignments: make(map[uint]models.Assignment), courses: courses, nextID: 1}
}

func (m *memAssignmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, assignment := range m.assignments {
		if assignment.CourseID == courseID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (m *memAssignmentRepo) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	list, _ := m.ListByCourse(ctx, courseID)
	return int64(len(list)), nil
}

func (m *memAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	if m.courses != nil {
		if course, err := m.courses.GetByID(ctx, assignment.CourseID); err == nil {
			assignment.Course = course
		}
	}
	return assignment, nil
}

func (m *memAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	m.nextID++
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memAssignmentRepo) Delete(ctx context.Context, id uint) error {
	delete(m.assignments, id)
	return nil
}

// memEnrollmentRepo is an in-memory EnrollmentRepository with the same
// capacity semantics as the GORM implementation.
type memEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[uint]models.Enrollment
	courses     *memCourseRepo
	nextID      uint
}

func newMemEnrollmentRepo(courses *memCourseRepo) *memEnrollmentRepo {
	return &memEnrollmentRepo{enrollments: make(map[uint]models.Enrollment), courses: courses, nextID: 1}
}

func (m *memEnrollmentRepo) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	for _, enrollment := range m.enrollments {
		if enrollment.StudentID == studentID && enrollment.CourseID == courseID {
			return enrollment, nil
		}
	}
	return models.Enrollment{}, gorm.ErrRecordNotFound
}

func (m *memEnrollmentRepo) CountActiveByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	for _, enrollment := range m.enrollments {
		if enrollment.CourseID == courseID && enrollment.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *memEnrollmentRepo) ListByStudent(ctx context.Context, studentID uint, activeOnly bool) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, enrollment := range m.enrollments {
		if enrollment.StudentID != studentID {
			continue
		}
		if activeOnly && !enrollment.IsActive {
			continue
		}
		out = append(out, enrollment)
	}
	return out, nil
}

func (m *memEnrollmentRepo) CreateOrReactivate(ctx context.Context, studentID, courseID uint) (models.Enrollment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	course, err := m.courses.GetByID(ctx, courseID)
	if err != nil {
		return models.Enrollment{}, false, err
	}

	existing, err := m.GetByStudentAndCourse(ctx, studentID, courseID)
	if err == nil && existing.IsActive {
		return existing, false, nil
	}

	active, _ := m.CountActiveByCourse(ctx, courseID)
	if course.MaxStudents > 0 && active >= int64(course.MaxStudents) {
		return models.Enrollment{}, false, repository.ErrCourseCapacityReached
	}

	if err == nil {
		existing.IsActive = true
		m.enrollments[existing.ID] = existing
		return existing, false, nil
	}

	enrollment := models.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		IsActive:   true,
		EnrolledAt: time.Now(),
		Status:     models.StatusActive,
	}
	enrollment.ID = m.nextID
	m.nextID++
	m.enrollments[enrollment.ID] = enrollment
	return enrollment, true, nil
}

func (m *memEnrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	m.enrollments[enrollment.ID] = *enrollment
	return nil
}

// memSubmissionRepo is an in-memory SubmissionRepository.
type memSubmissionRepo struct {
	submissions map[uint]models.Submission
	history     []models.SubmissionGradeHistory
	assignments *memAssignmentRepo
	nextID      uint
}

func newMemSubmissionRepo(assignments *memAssignmentRepo) *memSubmissionRepo {
	return &memSubmissionRepo{submissions: make(map[uint]models.Submission), assignments: assignments, nextID: 1}
}

func (m *memSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range m.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.IsReviewed != nil && submission.IsReviewed != *filter.IsReviewed {
			continue
		}
		out = append(out, m.withAssignment(ctx, submission))
	}
	return out, nil
}

func (m *memSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return m.withAssignment(ctx, submission), nil
}

func (m *memSubmissionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	for _, submission := range m.submissions {
		if submission.AssignmentID == assignmentID && submission.StudentID == studentID {
			return m.withAssignment(ctx, submission), nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (m *memSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	for _, existing := range m.submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.StudentID == submission.StudentID {
			return repository.ErrSubmissionExists
		}
	}
	submission.ID = m.nextID
	submission.CreatedAt = time.Now()
	m.nextID++
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	stored := *submission
	stored.Assignment = models.Assignment{}
	m.submissions[submission.ID] = stored
	return nil
}

func (m *memSubmissionRepo) CountDistinctAssignments(ctx context.Context, courseID, studentID uint) (int64, error) {
	seen := make(map[uint]struct{})
	for _, submission := range m.submissions {
		if submission.StudentID != studentID {
			continue
		}
		assignment, err := m.assignments.GetByID(ctx, submission.AssignmentID)
		if err != nil || assignment.CourseID != courseID {
			continue
		}
		seen[submission.AssignmentID] = struct{}{}
	}
	return int64(len(seen)), nil
}

func (m *memSubmissionRepo) ListForCourse(ctx context.Context, courseID, studentID uint) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range m.submissions {
		if submission.StudentID != studentID {
			continue
		}
		assignment, err := m.assignments.GetByID(ctx, submission.AssignmentID)
		if err != nil || assignment.CourseID != courseID {
			continue
		}
		submission.Assignment = assignment
		out = append(out, submission)
	}
	return out, nil
}

func (m *memSubmissionRepo) ListReviewedForCourse(ctx context.Context, courseID, studentID uint) ([]models.Submission, error) {
	all, err := m.ListForCourse(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}
	var out []models.Submission
	for _, submission := range all {
		if submission.IsReviewed {
			out = append(out, submission)
		}
	}
	return out, nil
}

func (m *memSubmissionRepo) CreateGradeHistory(ctx context.Context, entry *models.SubmissionGradeHistory) error {
	m.history = append(m.history, *entry)
	return nil
}

func (m *memSubmissionRepo) withAssignment(ctx context.Context, submission models.Submission) models.Submission {
	if m.assignments != nil {
		if assignment, err := m.assignments.GetByID(ctx, submission.AssignmentID); err == nil {
			submission.Assignment = assignment
		}
	}
	return submission
}

func seedTestCourse(t *testing.T, repo *memCourseRepo, teacherID uint, maxStudents int) models.Course {
	t.Helper()
	course := models.Course{
		Title:          "Algorithms",
		Code:           "CS201",
		Description:    "Sorting, searching, and graph algorithms.",
		TeacherID:      teacherID,
		StartDate:      time.Now().AddDate(0, -1, 0),
		EndDate:        time.Now().AddDate(0, 3, 0),
		MaxStudents:    maxStudents,
		EnrollmentOpen: true,
		IsActive:       true,
		Status:         models.StatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), &course))
	return course
}

func seedTestAssignment(t *testing.T, repo *memAssignmentRepo, courseID uint, due time.Time, mutate func(*models.Assignment)) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		CourseID:  courseID,
		Title:     "Problem Set",
		DueDate:   due,
		MaxPoints: 100,
		Weight:    1,
		Status:    models.StatusActive,
	}
	if mutate != nil {
		mutate(&assignment)
	}
	require.NoError(t, repo.Create(context.Background(), &assignment))
	return assignment
}

func repositorySubmissionFilter(assignmentID uint) repository.SubmissionFilter {
	return repository.SubmissionFilter{AssignmentID: &assignmentID}
}

// stubNotifier records dispatched events.
type stubNotifier struct {
	events []string
}

func (s *stubNotifier) Notify(ctx context.Context, event string, payload map[string]interface{}) error {
	s.events = append(s.events, event)
	return nil
}

// stubActivity records audit entries.
type stubActivity struct {
	entries []ActivityEntry
}

func (s *stubActivity) Record(ctx context.Context, entry ActivityEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}
