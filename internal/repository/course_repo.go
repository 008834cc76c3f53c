package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// CourseRepository reads the authored catalogue.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetLesson(ctx context.Context, id uint) (models.Lesson, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Course, error)
	Totals(ctx context.Context, courseID uint) (models.CourseTotals, error)
	UpsertCatalogue(ctx context.Context, courses []models.Course, quizzes []models.Quiz, assignments []models.Assignment) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) GetLesson(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return models.Lesson{}, err
	}

	return lesson, nil
}

func (r *courseRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}

	var courses []models.Course
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

// Totals counts the published lessons and quizzes a student must complete.
func (r *courseRepository) Totals(ctx context.Context, courseID uint) (models.CourseTotals, error) {
	var lessons, quizzes int64
	if err := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&lessons).Error; err != nil {
		return models.CourseTotals{}, err
	}

	if err := r.db.WithContext(ctx).Model(&models.Quiz{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&quizzes).Error; err != nil {
		return models.CourseTotals{}, err
	}

	return models.CourseTotals{Lessons: int(lessons), Quizzes: int(quizzes)}, nil
}

func (r *courseRepository) UpsertCatalogue(ctx context.Context, courses []models.Course, quizzes []models.Quiz, assignments []models.Assignment) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := tx.Session(&gorm.Session{FullSaveAssociations: true}).Clauses(clause.OnConflict{UpdateAll: true})

		if len(courses) > 0 {
			result := upsert.Create(&courses)
			if result.Error != nil {
				return result.Error
			}
			affected += result.RowsAffected
		}

		if len(quizzes) > 0 {
			result := upsert.Create(&quizzes)
			if result.Error != nil {
				return result.Error
			}
			affected += result.RowsAffected
		}

		if len(assignments) > 0 {
			result := upsert.Create(&assignments)
			if result.Error != nil {
				return result.Error
			}
			affected += result.RowsAffected
		}

		return nil
	})

	return affected, err
}
