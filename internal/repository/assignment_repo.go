package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// AssignmentRepository reads assignment definitions.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	ListByCourses(ctx context.Context, courseIDs []uint) ([]models.Assignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) ListByCourses(ctx context.Context, courseIDs []uint) ([]models.Assignment, error) {
	if len(courseIDs) == 0 {
		return []models.Assignment{}, nil
	}

	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("course_id IN ? AND is_published = ?", courseIDs, true).
		Order("due_date ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}
