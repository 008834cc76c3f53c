package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// CourseStats aggregates enrollment progress for one course.
type CourseStats struct {
	Enrolled         int64
	Completed        int64
	AverageProgress  float64
	AverageTimeSpent float64
}

// EnrollmentRepository persists enrollments and their completion entries.
type EnrollmentRepository interface {
	Get(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
	GetForUpdate(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	ListCertificates(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	FindByCertificateID(ctx context.Context, certificateID string) (models.Enrollment, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
	CourseStats(ctx context.Context, courseID uint) (CourseStats, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Save(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, enrollment *models.Enrollment) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Preload("CompletedLessons", func(db *gorm.DB) *gorm.DB { return db.Order("completed_at ASC, id ASC") }).
		Preload("CompletedQuizzes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *enrollmentRepository) Get(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.baseQuery(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

// GetForUpdate locks the enrollment row until the surrounding transaction ends.
func (r *enrollmentRepository) GetForUpdate(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.baseQuery(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) ListCertificates(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.baseQuery(ctx).
		Where("student_id = ? AND is_completed = ? AND certificate_issued = ?", studentID, true, true).
		Order("completed_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) FindByCertificateID(ctx context.Context, certificateID string) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.baseQuery(ctx).
		Where("certificate_id = ? AND is_completed = ? AND certificate_issued = ?", certificateID, true, true).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *enrollmentRepository) CourseStats(ctx context.Context, courseID uint) (CourseStats, error) {
	var row struct {
		Enrolled         int64
		Completed        int64
		AverageProgress  float64
		AverageTimeSpent float64
	}

	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Select(`COUNT(*) AS enrolled,
			COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(AVG(overall_progress), 0) AS average_progress,
			COALESCE(AVG(total_time_spent), 0) AS average_time_spent`).
		Where("course_id = ?", courseID).
		Scan(&row).Error
	if err != nil {
		return CourseStats{}, err
	}

	return CourseStats{
		Enrolled:         row.Enrolled,
		Completed:        row.Completed,
		AverageProgress:  row.AverageProgress,
		AverageTimeSpent: row.AverageTimeSpent,
	}, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

// Save writes the enrollment and upserts its completion entries.
func (r *enrollmentRepository) Save(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(enrollment).Error
}

func (r *enrollmentRepository) Delete(ctx context.Context, enrollment *models.Enrollment) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("enrollment_id = ?", enrollment.ID).Delete(&models.EnrollmentLesson{}).Error; err != nil {
		return err
	}
	if err := db.Where("enrollment_id = ?", enrollment.ID).Delete(&models.EnrollmentQuiz{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.Enrollment{}, enrollment.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
