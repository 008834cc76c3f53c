package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups every repository bound to the same database handle.
type Repositories struct {
	Courses       CourseRepository
	Enrollments   EnrollmentRepository
	Quizzes       QuizRepository
	Attempts      QuizAttemptRepository
	Assignments   AssignmentRepository
	Submissions   SubmissionRepository
	Students      StudentRepository
	Forum         ForumRepository
	Activity      ActivityLogRepository
	Notifications NotificationRepository
}

// NewRepositories binds all repositories to db.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Courses:       NewCourseRepository(db),
		Enrollments:   NewEnrollmentRepository(db),
		Quizzes:       NewQuizRepository(db),
		Attempts:      NewQuizAttemptRepository(db),
		Assignments:   NewAssignmentRepository(db),
		Submissions:   NewSubmissionRepository(db),
		Students:      NewStudentRepository(db),
		Forum:         NewForumRepository(db),
		Activity:      NewActivityLogRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// UnitOfWork runs a group of repository calls inside one transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork constructs a transaction runner over db.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

// Do commits when fn returns nil and rolls back otherwise. Every repository
// handed to fn shares the transaction, so fn must not touch repositories bound
// to the root handle.
func (u *gormUnitOfWork) Do(ctx context.Context, fn func(repos Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
