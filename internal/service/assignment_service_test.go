package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/edunexa/edunexa-api/internal/dto"
)

type assignmentFixture struct {
	svc         AssignmentService
	courses     *memCourseRepo
	assignments *memAssignmentRepo
	enrollments *memEnrollmentRepo
}

func newAssignmentFixture() assignmentFixture {
	courses := newMemCourseRepo()
	assignments := newMemAssignmentRepo(courses)
	enrollments := newMemEnrollmentRepo(courses)
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewAssignmentService(assignments, courses, enrollments, validate, testLogger())

	return assignmentFixture{
		svc:         svc,
		courses:     courses,
		assignments: assignments,
		enrollments: enrollments,
	}
}

func TestAssignmentServiceCreate(t *testing.T) {
	f := newAssignmentFixture()
	course := seedTestCourse(t, f.courses, 1, 30)

	resp, err := f.svc.Create(context.Background(), teacherPrincipal(1), course.ID, dto.AssignmentCreateRequest{
		Title:       "Problem Set 1",
		Description: "Implement three sorting algorithms.",
		DueDate:     time.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339),
		MaxPoints:   100,
	})
	require.NoError(t, err)
	require.Equal(t, course.ID, resp.CourseID)
	require.InDelta(t, 1.0, resp.Weight, 1e-9)
	require.True(t, resp.CanAcceptSubmission)
	require.Equal(t, "open", resp.AcceptanceState)
}

func TestAssignmentServiceCreateRejectsPastDue(t *testing.T) {
	f := newAssignmentFixture()
	course := seedTestCourse(t, f.courses, 1, 30)

	_, err := f.svc.Create(context.Background(), teacherPrincipal(1), course.ID, dto.AssignmentCreateRequest{
		Title:       "Problem Set 1",
		Description: "Implement three sorting algorithms.",
		DueDate:     time.Now().Add(-time.Hour).Format(time.RFC3339),
		MaxPoints:   100,
	})
	require.ErrorIs(t, err, ErrDueDateInPast)
}

func TestAssignmentServiceCreateRejectsEarlyLateDeadline(t *testing.T) {
	f := newAssignmentFixture()
	course := seedTestCourse(t, f.courses, 1, 30)

	due := time.Now().Add(7 * 24 * time.Hour)
	_, err := f.svc.Create(context.Background(), teacherPrincipal(1), course.ID, dto.AssignmentCreateRequest{
		Title:                  "Problem Set 1",
		Description:            "Implement three sorting algorithms.",
		DueDate:                due.Format(time.RFC3339),
		MaxPoints:              100,
		AllowLateSubmissions:   true,
		LateSubmissionDeadline: ptrString(due.Add(-24 * time.Hour).Format(time.RFC3339)),
	})
	require.ErrorIs(t, err, ErrInvalidLateDeadline)
}

func TestAssignmentServiceCreateEnforcesOwnership(t *testing.T) {
	f := newAssignmentFixture()
	course := seedTestCourse(t, f.courses, 1, 30)

	_, err := f.svc.Create(context.Background(), teacherPrincipal(2), course.ID, dto.AssignmentCreateRequest{
		Title:       "Problem Set 1",
		Description: "Implement three sorting algorithms.",
		DueDate:     time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		MaxPoints:   100,
	})
	require.ErrorIs(t, err, ErrNotCourseOwner)
}

func TestAssignmentServiceUpdateAllowsPastDueDate(t *testing.T) {
	f := newAssignmentFixture()
	course := seedTestCourse(t, f.courses, 1, 30)
	assignment := seedTestAssignment(t, f.assignments, course.ID, time.Now().Add(24*time.Hour), nil)

	// Updates may move the due date into the past; the window closes for
	// everyone who has not submitted yet.
	resp, err := f.svc.Update(context.Background(), teacherPrincipal(1), assignment.ID, dto.AssignmentUpdateRequest{
		DueDate: ptrString(time.Now().Add(-time.Hour).Format(time.RFC3339)),
	})
	require.NoError(t, err)
	require.True(t, resp.IsPastDue)
	require.False(t, resp.CanAcceptSubmission)
}

func TestAssignmentServiceUpdateRevalidatesLateDeadline(t *testing.T) {
	f := newAssignmentFixture()
	course := seedTestCourse(t, f.courses, 1, 30)
	due := time.Now().Add(7 * 24 * time.Hour)
	assignment := seedTestAssignment(t, f.assignments, course.ID, due, nil)

	_, err := f.svc.Update(context.Background(), teacherPrincipal(1), assignment.ID, dto.AssignmentUpdateRequest{
		LateSubmissionDeadline: ptrString(due.Add(-time.Hour).Format(time.RFC3339)),
	})
	require.ErrorIs(t, err, ErrInvalidLateDeadline)
}

func TestAssignmentServiceListAccessControl(t *testing.T) {
	f := newAssignmentFixture()
	course := seedTestCourse(t, f.courses, 1, 30)
	seedTestAssignment(t, f.assignments, course.ID, time.Now().Add(24*time.Hour), nil)

	_, err := f.svc.ListByCourse(context.Background(), studentPrincipal(5), course.ID)
	require.ErrorIs(t, err, ErrCourseAccessDenied)

	_, _, err = f.enrollments.CreateOrReactivate(context.Background(), 5, course.ID)
	require.NoError(t, err)

	list, err := f.svc.ListByCourse(context.Background(), studentPrincipal(5), course.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.svc.ListByCourse(context.Background(), teacherPrincipal(2), course.ID)
	require.ErrorIs(t, err, ErrNotCourseOwner)
}

func TestAssignmentServiceDelete(t *testing.T) {
	f := newAssignmentFixture()
	course := seedTestCourse(t, f.courses, 1, 30)
	assignment := seedTestAssignment(t, f.assignments, course.ID, time.Now().Add(24*time.Hour), nil)

	require.ErrorIs(t, f.svc.Delete(context.Background(), teacherPrincipal(2), assignment.ID), ErrNotCourseOwner)
	require.NoError(t, f.svc.Delete(context.Background(), teacherPrincipal(1), assignment.ID))

	_, err := f.svc.Get(context.Background(), assignment.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
