package service

import (
	"context"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/observability"
	"github.com/noah-isme/techbridge-api/internal/repository"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// CertificateService exposes certificates minted on course completion.
type CertificateService interface {
	List(ctx context.Context, studentID uint) ([]dto.CertificateResponse, error)
	Verify(ctx context.Context, certificateID string) (dto.CertificateVerificationResponse, error)
}

type certificateService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	students    repository.StudentRepository
	logger      zerolog.Logger
}

// NewCertificateService constructs the certificate read model.
func NewCertificateService(repos repository.Repositories, logger zerolog.Logger) CertificateService {
	return &certificateService{
		enrollments: repos.Enrollments,
		courses:     repos.Courses,
		students:    repos.Students,
		logger:      logger.With().Str("component", "certificate_service").Logger(),
	}
}

func (s *certificateService) List(ctx context.Context, studentID uint) ([]dto.CertificateResponse, error) {
	enrollments, err := s.enrollments.ListCertificates(ctx, studentID)
	if err != nil {
		return nil, translateRepoError(err, "certificate")
	}

	titles, err := s.courseTitles(ctx, enrollments)
	if err != nil {
		return nil, err
	}

	certificates := make([]dto.CertificateResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if enrollment.CertificateID == nil {
			continue
		}
		response := dto.CertificateResponse{
			CertificateID: *enrollment.CertificateID,
			CourseID:      enrollment.CourseID,
			CourseTitle:   titles[enrollment.CourseID],
			FinalScore:    finalScore(enrollment),
		}
		if enrollment.CompletedAt != nil {
			response.CompletedAt = *enrollment.CompletedAt
		}
		if enrollment.CertificateIssuedAt != nil {
			response.IssuedAt = *enrollment.CertificateIssuedAt
		}
		certificates = append(certificates, response)
	}

	return certificates, nil
}

func (s *certificateService) Verify(ctx context.Context, certificateID string) (dto.CertificateVerificationResponse, error) {
	certificateID = strings.TrimSpace(certificateID)
	if certificateID == "" {
		return dto.CertificateVerificationResponse{}, appErrors.NotFound("certificate")
	}

	enrollment, err := s.enrollments.FindByCertificateID(ctx, certificateID)
	if err != nil {
		return dto.CertificateVerificationResponse{}, translateRepoError(err, "certificate")
	}

	response := dto.CertificateVerificationResponse{
		CertificateID: certificateID,
		IsValid:       enrollment.CertificateIssued && enrollment.IsCompleted,
	}
	if enrollment.CompletedAt != nil {
		response.CompletionDate = *enrollment.CompletedAt
	}
	if enrollment.CertificateIssuedAt != nil {
		response.IssuedDate = *enrollment.CertificateIssuedAt
	}

	student, err := s.students.GetByID(ctx, enrollment.StudentID)
	switch {
	case err == nil:
		response.StudentName = student.Name
	case !isNotFound(err):
		return dto.CertificateVerificationResponse{}, translateRepoError(err, "student")
	}

	course, err := s.courses.GetByID(ctx, enrollment.CourseID)
	switch {
	case err == nil:
		response.CourseName = course.Title
	case !isNotFound(err):
		return dto.CertificateVerificationResponse{}, translateRepoError(err, "course")
	}

	return response, nil
}

func (s *certificateService) courseTitles(ctx context.Context, enrollments []models.Enrollment) (map[uint]string, error) {
	ids := make([]uint, 0, len(enrollments))
	for _, enrollment := range enrollments {
		ids = append(ids, enrollment.CourseID)
	}

	courses, err := s.courses.ListByIDs(ctx, ids)
	if err != nil {
		return nil, translateRepoError(err, "course")
	}

	titles := make(map[uint]string, len(courses))
	for _, course := range courses {
		titles[course.ID] = course.Title
	}
	return titles, nil
}

// finalScore averages the best quiz scores. Courses without quizzes score 100.
func finalScore(enrollment models.Enrollment) int {
	if len(enrollment.CompletedQuizzes) == 0 {
		return 100
	}

	total := 0
	for _, quiz := range enrollment.CompletedQuizzes {
		total += quiz.BestScore
	}
	return int(math.Round(float64(total) / float64(len(enrollment.CompletedQuizzes))))
}

// announceCompletion runs the post-commit effects of an enrollment reaching 100%.
func announceCompletion(ctx context.Context, effects SideEffects, enrollment models.Enrollment) {
	observability.CertificatesIssued().Inc()

	certificateID := ""
	if enrollment.CertificateID != nil {
		certificateID = *enrollment.CertificateID
	}

	effects.publish(ctx, Event{
		Type:      EventCertificateIssued,
		StudentID: enrollment.StudentID,
		CourseID:  enrollment.CourseID,
		Message:   "Congratulations! You completed the course and earned a certificate.",
		Payload: map[string]interface{}{
			"certificate_id": certificateID,
			"enrollment_id":  enrollment.ID,
		},
	})

	entityID := enrollment.ID
	courseID := enrollment.CourseID
	effects.record(ctx, ActivityEntry{
		ActorID:    enrollment.StudentID,
		ActorRole:  models.RoleStudent,
		Action:     models.ActionCertificateIssued,
		EntityType: "enrollment",
		EntityID:   &entityID,
		CourseID:   &courseID,
		Metadata:   map[string]interface{}{"certificate_id": certificateID},
	})
}
