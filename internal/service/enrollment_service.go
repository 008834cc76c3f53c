package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/repository"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// EnrollmentService owns the enrollment lifecycle and lesson progress.
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID uint) (dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, studentID, courseID uint) error
	Progress(ctx context.Context, studentID, courseID uint) (dto.EnrollmentResponse, error)
	ListProgress(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error)
	CompleteLesson(ctx context.Context, studentID, lessonID uint, req dto.LessonCompleteRequest) (dto.LessonCompletionResponse, error)
}

type enrollmentService struct {
	repos     repository.Repositories
	uow       repository.UnitOfWork
	validator *validator.Validate
	policy    Policy
	effects   SideEffects
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repos repository.Repositories, uow repository.UnitOfWork, validate *validator.Validate, policy Policy, effects SideEffects, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		repos:     repos,
		uow:       uow,
		validator: validate,
		policy:    policy,
		effects:   effects,
		logger:    logger.With().Str("component", "enrollment_service").Logger(),
		now:       utcNow,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, studentID, courseID uint) (dto.EnrollmentResponse, error) {
	now := s.now()
	var enrollment models.Enrollment
	var course models.Course

	err := s.uow.Do(ctx, func(repos repository.Repositories) error {
		var err error
		course, err = repos.Courses.GetByID(ctx, courseID)
		if err != nil {
			return translateRepoError(err, "course")
		}
		if !course.IsPublished {
			return appErrors.ErrCourseUnpublished
		}

		if _, err := repos.Enrollments.Get(ctx, studentID, courseID); err == nil {
			return appErrors.ErrAlreadyEnrolled
		} else if !isNotFound(err) {
			return translateRepoError(err, "enrollment")
		}

		enrolled, err := repos.Enrollments.CountByCourse(ctx, courseID)
		if err != nil {
			return translateRepoError(err, "enrollment")
		}
		if !course.HasCapacity(enrolled) {
			return appErrors.Clone(appErrors.ErrCourseFull, "Course is full").
				WithDetail("max_students", course.MaxStudents)
		}

		enrollment = models.NewEnrollment(studentID, courseID, now)
		if err := repos.Enrollments.Create(ctx, &enrollment); err != nil {
			if isDuplicate(err) {
				return appErrors.ErrAlreadyEnrolled
			}
			return translateRepoError(err, "enrollment")
		}
		return nil
	})
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().Uint("student_id", studentID).Uint("course_id", courseID).Msg("student enrolled")
	s.effects.record(ctx, enrollmentActivity(models.ActionEnrolled, enrollment, nil))
	s.effects.invalidate(ctx, studentID, courseID)

	response := dto.NewEnrollmentResponse(enrollment)
	response.CourseTitle = course.Title
	return response, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, studentID, courseID uint) error {
	var enrollment models.Enrollment

	err := s.uow.Do(ctx, func(repos repository.Repositories) error {
		var err error
		enrollment, err = repos.Enrollments.GetForUpdate(ctx, studentID, courseID)
		if err != nil {
			if isNotFound(err) {
				return appErrors.ErrNotEnrolled
			}
			return translateRepoError(err, "enrollment")
		}

		threshold := s.policy.UnenrollThreshold
		if !enrollment.CanUnenroll(threshold) {
			return appErrors.Clone(appErrors.ErrUnenrollLocked,
				fmt.Sprintf("Cannot unenroll after completing %d%% of the course", threshold)).
				WithDetail("overall_progress", enrollment.OverallProgress).
				WithDetail("threshold", threshold)
		}

		if err := repos.Enrollments.Delete(ctx, &enrollment); err != nil {
			if isNotFound(err) {
				return appErrors.ErrNotEnrolled
			}
			return translateRepoError(err, "enrollment")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Uint("student_id", studentID).Uint("course_id", courseID).Msg("student unenrolled")
	s.effects.record(ctx, enrollmentActivity(models.ActionUnenrolled, enrollment, map[string]interface{}{
		"overall_progress": enrollment.OverallProgress,
	}))
	s.effects.invalidate(ctx, studentID, courseID)
	return nil
}

func (s *enrollmentService) Progress(ctx context.Context, studentID, courseID uint) (dto.EnrollmentResponse, error) {
	enrollment, err := s.repos.Enrollments.Get(ctx, studentID, courseID)
	if err != nil {
		if isNotFound(err) {
			return dto.EnrollmentResponse{}, appErrors.ErrNotEnrolled
		}
		return dto.EnrollmentResponse{}, translateRepoError(err, "enrollment")
	}

	totals, err := s.repos.Courses.Totals(ctx, courseID)
	if err != nil {
		return dto.EnrollmentResponse{}, translateRepoError(err, "course")
	}

	response := dto.NewEnrollmentResponse(enrollment)
	response.Totals = &totals
	if course, err := s.repos.Courses.GetByID(ctx, courseID); err == nil {
		response.CourseTitle = course.Title
	}
	return response, nil
}

func (s *enrollmentService) ListProgress(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.repos.Enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, translateRepoError(err, "enrollment")
	}

	courseIDs := make([]uint, 0, len(enrollments))
	for _, enrollment := range enrollments {
		courseIDs = append(courseIDs, enrollment.CourseID)
	}
	courses, err := s.repos.Courses.ListByIDs(ctx, courseIDs)
	if err != nil {
		return nil, translateRepoError(err, "course")
	}
	titles := make(map[uint]string, len(courses))
	for _, course := range courses {
		titles[course.ID] = course.Title
	}

	responses := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		response := dto.NewEnrollmentResponse(enrollment)
		response.CourseTitle = titles[enrollment.CourseID]
		responses = append(responses, response)
	}
	return responses, nil
}

func (s *enrollmentService) CompleteLesson(ctx context.Context, studentID, lessonID uint, req dto.LessonCompleteRequest) (dto.LessonCompletionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LessonCompletionResponse{}, err
	}

	lesson, err := s.repos.Courses.GetLesson(ctx, lessonID)
	if err != nil {
		return dto.LessonCompletionResponse{}, translateRepoError(err, "lesson")
	}
	if !lesson.IsPublished {
		return dto.LessonCompletionResponse{}, appErrors.NotFound("lesson")
	}

	now := s.now()
	var enrollment models.Enrollment
	recorded := false
	completedNow := false

	err = s.uow.Do(ctx, func(repos repository.Repositories) error {
		var err error
		enrollment, err = repos.Enrollments.GetForUpdate(ctx, studentID, lesson.CourseID)
		if err != nil {
			if isNotFound(err) {
				return appErrors.ErrNotEnrolled
			}
			return translateRepoError(err, "enrollment")
		}

		totals, err := repos.Courses.Totals(ctx, lesson.CourseID)
		if err != nil {
			return translateRepoError(err, "course")
		}

		wasCompleted := enrollment.IsCompleted
		recorded = enrollment.RecordLesson(lesson.ID, req.TimeSpent, totals, now)
		if !recorded {
			return nil
		}
		completedNow = !wasCompleted && enrollment.IsCompleted

		if err := repos.Enrollments.Save(ctx, &enrollment); err != nil {
			return translateRepoError(err, "enrollment")
		}
		return nil
	})
	if err != nil {
		return dto.LessonCompletionResponse{}, err
	}

	response := dto.LessonCompletionResponse{
		Enrollment:        dto.NewEnrollmentResponse(enrollment),
		AlreadyCompleted:  !recorded,
		CertificateIssued: completedNow,
	}
	if !recorded {
		return response, nil
	}

	response.PointsAwarded = s.effects.award(ctx, studentID, s.policy.LessonBonus, "lesson.completed")
	if completedNow {
		announceCompletion(ctx, s.effects, enrollment)
	}
	s.effects.invalidate(ctx, studentID, lesson.CourseID)

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("lesson_id", lesson.ID).
		Int("overall_progress", enrollment.OverallProgress).
		Msg("lesson completed")

	return response, nil
}

func enrollmentActivity(action string, enrollment models.Enrollment, metadata map[string]interface{}) ActivityEntry {
	entityID := enrollment.ID
	courseID := enrollment.CourseID
	return ActivityEntry{
		ActorID:    enrollment.StudentID,
		ActorRole:  models.RoleStudent,
		Action:     action,
		EntityType: "enrollment",
		EntityID:   &entityID,
		CourseID:   &courseID,
		Metadata:   metadata,
	}
}
