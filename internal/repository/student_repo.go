package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// StudentRepository provides access to student profiles.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Student, error)
	AddPoints(ctx context.Context, id uint, delta int) error
	Leaderboard(ctx context.Context, limit int) ([]models.Student, error)
	UpsertBatch(ctx context.Context, students []models.Student) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}

	var students []models.Student
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

// AddPoints increments the point balance in a single statement.
func (r *studentRepository) AddPoints(ctx context.Context, id uint, delta int) error {
	result := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ?", id).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) Leaderboard(ctx context.Context, limit int) ([]models.Student, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var students []models.Student
	if err := r.db.WithContext(ctx).
		Where("role = ?", models.RoleStudent).
		Order("points DESC, id ASC").
		Limit(limit).
		Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

// UpsertBatch inserts or refreshes profiles keyed by id. Points are left untouched.
func (r *studentRepository) UpsertBatch(ctx context.Context, students []models.Student) (int64, error) {
	if len(students) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role", "updated_at"}),
	}).Create(&students)
	return result.RowsAffected, result.Error
}
