package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edunexa/edunexa-api/internal/models"
)

func TestSubmissionRepositoryCountDistinctAssignments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	course := seedCourse(t, db, 10)
	other := models.Course{
		Title: "Other", Code: "OTH-1", TeacherID: course.TeacherID,
		StartDate: course.StartDate, EndDate: course.EndDate, MaxStudents: 10,
	}
	require.NoError(t, db.Create(&other).Error)
	student := seedStudent(t, db, 2, "counter@example.com")

	first := models.Assignment{CourseID: course.ID, Title: "HW 1", DueDate: time.Now().Add(time.Hour)}
	second := models.Assignment{CourseID: course.ID, Title: "HW 2", DueDate: time.Now().Add(2 * time.Hour)}
	foreign := models.Assignment{CourseID: other.ID, Title: "Elsewhere", DueDate: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&foreign).Error)

	require.NoError(t, repo.Create(context.Background(), &models.Submission{
		AssignmentID: first.ID, StudentID: student.ID, Content: "answer one",
	}))
	require.NoError(t, repo.Create(context.Background(), &models.Submission{
		AssignmentID: foreign.ID, StudentID: student.ID, Content: "off-course work",
	}))

	count, err := repo.CountDistinctAssignments(context.Background(), course.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "submissions in other courses must not count")

	require.NoError(t, repo.Create(context.Background(), &models.Submission{
		AssignmentID: second.ID, StudentID: student.ID, Content: "answer two",
	}))

	count, err = repo.CountDistinctAssignments(context.Background(), course.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestSubmissionRepositoryListReviewedForCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	course := seedCourse(t, db, 10)
	student := seedStudent(t, db, 2, "reviewed@example.com")

	assignment := models.Assignment{CourseID: course.ID, Title: "Essay", DueDate: time.Now().Add(time.Hour), MaxPoints: 50, Weight: 2}
	require.NoError(t, db.Create(&assignment).Error)

	points := 40.0
	require.NoError(t, repo.Create(context.Background(), &models.Submission{
		AssignmentID: assignment.ID, StudentID: student.ID, Content: "draft",
		Points: &points, IsReviewed: true,
	}))

	reviewed, err := repo.ListReviewedForCourse(context.Background(), course.ID, student.ID)
	require.NoError(t, err)
	require.Len(t, reviewed, 1)
	require.Equal(t, assignment.ID, reviewed[0].Assignment.ID)
	require.Equal(t, 50.0, reviewed[0].Assignment.MaxPoints)

	unreviewedOnly, err := repo.ListReviewedForCourse(context.Background(), course.ID, 999)
	require.NoError(t, err)
	require.Empty(t, unreviewedOnly)
}

func TestSubmissionRepositoryGetByAssignmentAndStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	course := seedCourse(t, db, 10)
	student := seedStudent(t, db, 2, "pair@example.com")

	assignment := models.Assignment{CourseID: course.ID, Title: "Quiz", DueDate: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&assignment).Error)

	created := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Content: "first"}
	require.NoError(t, repo.Create(context.Background(), &created))

	found, err := repo.GetByAssignmentAndStudent(context.Background(), assignment.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, assignment.Title, found.Assignment.Title)
}

func TestSubmissionRepositoryCreateDuplicatePair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	course := seedCourse(t, db, 10)
	student := seedStudent(t, db, 2, "dup@example.com")

	assignment := models.Assignment{CourseID: course.ID, Title: "Quiz", DueDate: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&assignment).Error)

	require.NoError(t, repo.Create(context.Background(), &models.Submission{
		AssignmentID: assignment.ID, StudentID: student.ID, Content: "first",
	}))

	// The unique index is the last line of defense against concurrent inserts.
	err := repo.Create(context.Background(), &models.Submission{
		AssignmentID: assignment.ID, StudentID: student.ID, Content: "second",
	})
	require.ErrorIs(t, err, ErrSubmissionExists)

	var total int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&total).Error)
	require.Equal(t, int64(1), total)
}
