package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/edunexa/edunexa-api/internal/models"
)

type progressFixture struct {
	svc         ProgressService
	courses     *memCourseRepo
	assignments *memAssignmentRepo
	enrollments *memEnrollmentRepo
	submissions *memSubmissionRepo
}

func newProgressFixture(cache *redis.Client, ttl time.Duration) progressFixture {
	courses := newMemCourseRepo()
	assignments := newMemAssignmentRepo(courses)
	enrollments := newMemEnrollmentRepo(courses)
	submissions := newMemSubmissionRepo(assignments)

	svc := NewProgressService(courses, assignments, enrollments, submissions, cache, ttl, testLogger())

	return progressFixture{
		svc:         svc,
		courses:     courses,
		assignments: assignments,
		enrollments: enrollments,
		submissions: submissions,
	}
}

func TestProgressServiceAggregation(t *testing.T) {
	f := newProgressFixture(nil, 0)
	course := seedTestCourse(t, f.courses, 1, 30)
	due := time.Now().Add(24 * time.Hour)
	graded := seedTestAssignment(t, f.assignments, course.ID, due, nil)
	pending := seedTestAssignment(t, f.assignments, course.ID, due, nil)
	seedTestAssignment(t, f.assignments, course.ID, time.Now().Add(-24*time.Hour), nil)

	enrollment, _, err := f.enrollments.CreateOrReactivate(context.Background(), 5, course.ID)
	require.NoError(t, err)
	enrollment.CompletionPercentage = 66.67
	enrollment.Grade = ptrFloat(80)
	require.NoError(t, f.enrollments.Update(context.Background(), &enrollment))

	require.NoError(t, f.submissions.Create(context.Background(), &models.Submission{
		AssignmentID: graded.ID,
		StudentID:    5,
		Content:      "done",
		Points:       ptrFloat(80),
		IsReviewed:   true,
	}))
	require.NoError(t, f.submissions.Create(context.Background(), &models.Submission{
		AssignmentID: pending.ID,
		StudentID:    5,
		Content:      "awaiting review",
	}))

	resp, err := f.svc.GetCourseProgress(context.Background(), studentPrincipal(5), course.ID, 0)
	require.NoError(t, err)
	require.Equal(t, course.ID, resp.CourseID)
	require.Equal(t, 3, resp.TotalAssignments)
	require.Equal(t, 2, resp.SubmittedCount)
	require.Equal(t, 1, resp.ReviewedCount)
	require.InDelta(t, 66.67, resp.CompletionPercentage, 1e-9)
	require.NotNil(t, resp.Grade)
	require.InDelta(t, 80.0, *resp.Grade, 1e-9)
	require.Len(t, resp.Assignments, 3)

	var overdueCount int
	for _, item := range resp.Assignments {
		if item.Overdue {
			overdueCount++
		}
	}
	require.Equal(t, 1, overdueCount)
}

func TestProgressServiceRequiresEnrollment(t *testing.T) {
	f := newProgressFixture(nil, 0)
	course := seedTestCourse(t, f.courses, 1, 30)

	_, err := f.svc.GetCourseProgress(context.Background(), studentPrincipal(5), course.ID, 0)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestProgressServiceTeacherAccess(t *testing.T) {
	f := newProgressFixture(nil, 0)
	course := seedTestCourse(t, f.courses, 1, 30)

	_, _, err := f.enrollments.CreateOrReactivate(context.Background(), 5, course.ID)
	require.NoError(t, err)

	_, err = f.svc.GetCourseProgress(context.Background(), teacherPrincipal(1), course.ID, 5)
	require.NoError(t, err)

	_, err = f.svc.GetCourseProgress(context.Background(), teacherPrincipal(2), course.ID, 5)
	require.ErrorIs(t, err, ErrNotCourseOwner)
}

func TestProgressServiceCaches(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	f := newProgressFixture(redisClient, time.Minute)
	course := seedTestCourse(t, f.courses, 1, 30)
	assignment := seedTestAssignment(t, f.assignments, course.ID, time.Now().Add(24*time.Hour), nil)

	_, _, err = f.enrollments.CreateOrReactivate(context.Background(), 5, course.ID)
	require.NoError(t, err)

	first, err := f.svc.GetCourseProgress(context.Background(), studentPrincipal(5), course.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 1, first.TotalAssignments)

	// A fresh submission is invisible until the cache entry expires.
	require.NoError(t, f.submissions.Create(context.Background(), &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    5,
		Content:      "after cache fill",
	}))

	cached, err := f.svc.GetCourseProgress(context.Background(), studentPrincipal(5), course.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 0, cached.SubmittedCount)

	server.FastForward(2 * time.Minute)

	refreshed, err := f.svc.GetCourseProgress(context.Background(), studentPrincipal(5), course.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 1, refreshed.SubmittedCount)
}
