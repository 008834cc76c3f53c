package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// QuizRepository reads authored quizzes.
type QuizRepository interface {
	GetWithQuestions(ctx context.Context, id uint) (models.Quiz, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error)
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository constructs a quiz repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) GetWithQuestions(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&quiz, id).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Order("id ASC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}
