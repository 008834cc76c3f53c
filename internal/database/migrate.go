package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// Models lists every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Student{},
		&models.Course{},
		&models.Lesson{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.Enrollment{},
		&models.EnrollmentLesson{},
		&models.EnrollmentQuiz{},
		&models.QuizAttempt{},
		&models.Assignment{},
		&models.Submission{},
		&models.ForumThread{},
		&models.ForumReply{},
		&models.ActivityLog{},
		&models.Notification{},
	}
}

// Migrate creates or updates the schema, including the unique indexes that
// serialise concurrent enrollment, attempt and submission writes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
