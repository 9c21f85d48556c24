package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edunexa/edunexa-api/internal/models"
)

// ErrCourseCapacityReached signals that an enrollment attempt would exceed the
// course seat limit. Returned from inside the enrollment transaction so the
// capacity check and the insert share one boundary.
var ErrCourseCapacityReached = errors.New("course capacity reached")

// EnrollmentRepository defines persistence operations for course memberships.
type EnrollmentRepository interface {
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
	CountActiveByCourse(ctx context.Context, courseID uint) (int64, error)
	ListByStudent(ctx context.Context, studentID uint, activeOnly bool) ([]models.Enrollment, error)
	CreateOrReactivate(ctx context.Context, studentID, courseID uint) (models.Enrollment, bool, error)
	Update(ctx context.Context, enrollment *models.Enrollment) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) CountActiveByCourse(ctx context.Context, courseID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND is_active = ?", courseID, true).
		Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint, activeOnly bool) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).Preload("Course").Where("student_id = ?", studentID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var enrollments []models.Enrollment
	if err := query.Order("enrolled_at DESC").Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

// CreateOrReactivate enrolls a student into a course inside a single
// transaction. The course row is locked for the duration so the capacity
// re-check and the membership write cannot race with a concurrent enroll. A
// previously deactivated membership is reactivated instead of duplicated; the
// boolean reports whether a new row was created.
func (r *enrollmentRepository) CreateOrReactivate(ctx context.Context, studentID, courseID uint) (models.Enrollment, bool, error) {
	var enrollment models.Enrollment
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courseQuery := tx
		if tx.Dialector.Name() == "postgres" {
			// sqlite (tests) has no row locks; its transactions already
			// serialize writers.
			courseQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var course models.Course
		if err := courseQuery.First(&course, courseID).Error; err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.Enrollment{}).
			Where("course_id = ? AND is_active = ?", courseID, true).
			Count(&active).Error; err != nil {
			return err
		}

		err := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).
			First(&enrollment).Error
		switch {
		case err == nil:
			if enrollment.IsActive {
				// Idempotent re-enroll of an already active membership.
				return nil
			}
			if active >= int64(course.MaxStudents) {
				return ErrCourseCapacityReached
			}
			enrollment.IsActive = true
			return tx.Save(&enrollment).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if active >= int64(course.MaxStudents) {
				return ErrCourseCapacityReached
			}
			enrollment = models.Enrollment{
				StudentID:  studentID,
				CourseID:   courseID,
				IsActive:   true,
				EnrolledAt: time.Now(),
				Status:     models.StatusActive,
			}
			if err := tx.Create(&enrollment).Error; err != nil {
				return err
			}
			created = true
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return models.Enrollment{}, false, err
	}

	return enrollment, created, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Save(enrollment).Error
}
