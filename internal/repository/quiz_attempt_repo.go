package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// QuizAttemptRepository persists graded quiz attempts.
type QuizAttemptRepository interface {
	ListByStudentAndQuiz(ctx context.Context, studentID, quizID uint) ([]models.QuizAttempt, error)
	ListPassedByStudentAndCourse(ctx context.Context, studentID, courseID uint) ([]models.QuizAttempt, error)
	ListRecentByStudent(ctx context.Context, studentID uint, limit int) ([]models.QuizAttempt, error)
	AverageScoreByCourse(ctx context.Context, courseID uint) (float64, int64, error)
	Create(ctx context.Context, attempt *models.QuizAttempt) error
}

type quizAttemptRepository struct {
	db *gorm.DB
}

// NewQuizAttemptRepository constructs a quiz attempt repository.
func NewQuizAttemptRepository(db *gorm.DB) QuizAttemptRepository {
	return &quizAttemptRepository{db: db}
}

func (r *quizAttemptRepository) ListByStudentAndQuiz(ctx context.Context, studentID, quizID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *quizAttemptRepository) ListPassedByStudentAndCourse(ctx context.Context, studentID, courseID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND passed = ?", studentID, courseID, true).
		Order("completed_at ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *quizAttemptRepository) ListRecentByStudent(ctx context.Context, studentID uint, limit int) ([]models.QuizAttempt, error) {
	if limit <= 0 {
		limit = 5
	}

	var attempts []models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("completed_at DESC, id DESC").
		Limit(limit).
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *quizAttemptRepository) AverageScoreByCourse(ctx context.Context, courseID uint) (float64, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}
	if err := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Select("COALESCE(AVG(score), 0) AS average, COUNT(*) AS total").
		Where("course_id = ?", courseID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}

	return row.Average, row.Total, nil
}

func (r *quizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}
