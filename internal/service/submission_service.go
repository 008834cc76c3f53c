package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/grading"
	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/observability"
	"github.com/noah-isme/techbridge-api/internal/repository"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

var defaultAllowedFileTypes = []string{"application/pdf", "application/zip", "application/x-zip-compressed", "text/plain"}

// Grader identifies the staff member acting on a submission.
type Grader struct {
	ID   uint
	Role string
}

// SubmissionService orchestrates assignment submission and grading workflows.
type SubmissionService interface {
	Submit(ctx context.Context, studentID, assignmentID uint, req dto.SubmissionCreateRequest, files []*multipart.FileHeader) (dto.SubmissionResponse, error)
	List(ctx context.Context, req dto.SubmissionListRequest) ([]dto.SubmissionResponse, error)
	Grade(ctx context.Context, grader Grader, submissionID uint, req dto.SubmissionGradeRequest) (dto.SubmissionResponse, error)
	RequestResubmission(ctx context.Context, grader Grader, submissionID uint, req dto.SubmissionFeedbackRequest) (dto.SubmissionResponse, error)
	Return(ctx context.Context, grader Grader, submissionID uint, req dto.SubmissionFeedbackRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	repos     repository.Repositories
	uow       repository.UnitOfWork
	validator *validator.Validate
	uploader  FileUploader
	policy    Policy
	effects   SideEffects
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. uploader may be nil,
// in which case only already hosted file references are accepted.
func NewSubmissionService(repos repository.Repositories, uow repository.UnitOfWork, validate *validator.Validate, uploader FileUploader, policy Policy, effects SideEffects, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repos:     repos,
		uow:       uow,
		validator: validate,
		uploader:  uploader,
		policy:    policy,
		effects:   effects,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "submission_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/techbridge-api/internal/service/submission"),
		now:       utcNow,
	}
}

func (s *submissionService) Submit(ctx context.Context, studentID, assignmentID uint, req dto.SubmissionCreateRequest, files []*multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.repos.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, translateRepoError(err, "assignment")
	}
	if !assignment.IsPublished {
		return dto.SubmissionResponse{}, appErrors.NotFound("assignment")
	}

	if _, err := s.repos.Enrollments.Get(ctx, studentID, assignment.CourseID); err != nil {
		if isNotFound(err) {
			return dto.SubmissionResponse{}, appErrors.ErrNotEnrolled
		}
		return dto.SubmissionResponse{}, translateRepoError(err, "enrollment")
	}

	now := s.now()
	policy := assignment.Policy(s.policy.Late)
	lateness, err := grading.EvaluateLateness(now, assignment.DueDate, policy.MaxLateDays)
	if err != nil {
		observability.AssignmentSubmissions().WithLabelValues("rejected").Inc()
		return dto.SubmissionResponse{}, err
	}
	penalty := grading.LatePenalty(lateness.DaysLate, policy.PenaltyPerDay)

	text := strings.TrimSpace(s.sanitizer.Sanitize(req.TextContent))
	attachments := make([]models.SubmissionFile, 0, len(req.Files)+len(files))
	for _, file := range req.Files {
		attachments = append(attachments, models.SubmissionFile{
			FileName:   file.FileName,
			FileURL:    file.FileURL,
			FileType:   file.FileType,
			FileSize:   file.FileSize,
			UploadedAt: now,
		})
	}

	if len(files) > 0 {
		uploaded, err := s.uploadAll(ctx, assignment, files, now)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		attachments = append(attachments, uploaded...)
	}

	if text == "" && len(attachments) == 0 {
		return dto.SubmissionResponse{}, appErrors.Clone(appErrors.ErrValidation, "submission must include text content or at least one file")
	}

	var submission models.Submission
	resubmitted := false

	err = s.uow.Do(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Submissions.GetByAssignmentAndStudent(ctx, assignment.ID, studentID)
		switch {
		case err == nil:
			if !existing.AcceptsResubmission() {
				return appErrors.Clone(appErrors.ErrAlreadySubmitted, "Assignment already submitted").
					WithDetail("status", existing.Status)
			}
			submission = existing
			resubmitted = true
		case isNotFound(err):
			submission = models.Submission{AssignmentID: assignment.ID, StudentID: studentID, CourseID: assignment.CourseID}
		default:
			return translateRepoError(err, "submission")
		}

		submission.TextContent = text
		submission.Files = attachments
		submission.SubmittedAt = now
		submission.IsLate = lateness.IsLate
		submission.DaysLate = lateness.DaysLate
		submission.LatePenalty = penalty
		submission.Status = models.SubmissionStatusSubmitted
		submission.RawScore = nil
		submission.AdjustedScore = nil
		submission.GradedBy = nil
		submission.GradedAt = nil

		if resubmitted {
			submission.ResubmissionCount++
			if err := repos.Submissions.Update(ctx, &submission); err != nil {
				return translateRepoError(err, "submission")
			}
			return nil
		}

		if err := repos.Submissions.Create(ctx, &submission); err != nil {
			if isDuplicate(err) {
				return appErrors.Clone(appErrors.ErrAlreadySubmitted, "Assignment already submitted")
			}
			return translateRepoError(err, "submission")
		}
		return nil
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	submission.Assignment = assignment

	label := "on_time"
	if lateness.IsLate {
		label = "late"
	}
	observability.AssignmentSubmissions().WithLabelValues(label).Inc()

	s.effects.record(ctx, submissionActivity(studentID, models.RoleStudent, models.ActionAssignmentSubmitted, submission, map[string]interface{}{
		"assignment_id": assignment.ID,
		"is_late":       lateness.IsLate,
		"days_late":     lateness.DaysLate,
		"late_penalty":  penalty,
		"resubmission":  resubmitted,
	}))
	s.effects.invalidate(ctx, studentID, assignment.CourseID)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignment.ID).
		Uint("student_id", studentID).
		Bool("late", lateness.IsLate).
		Int("penalty", penalty).
		Msg("assignment submitted")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) uploadAll(ctx context.Context, assignment models.Assignment, files []*multipart.FileHeader, now time.Time) ([]models.SubmissionFile, error) {
	if s.uploader == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file uploads are not configured; submit hosted file links instead")
	}

	allowed := []string(assignment.AllowedFileTypes)
	if len(allowed) == 0 {
		allowed = defaultAllowedFileTypes
	}

	uploaded := make([]models.SubmissionFile, 0, len(files))
	for _, header := range files {
		if header == nil {
			continue
		}
		if s.policy.MaxAttachmentBytes > 0 && header.Size > s.policy.MaxAttachmentBytes {
			return nil, appErrors.Clone(appErrors.ErrValidation, "attachment is too large").
				WithDetail("file_name", header.Filename).
				WithDetail("max_bytes", s.policy.MaxAttachmentBytes)
		}

		fileType, err := detectFileType(header, allowed)
		if err != nil {
			return nil, err
		}

		reader, err := header.Open()
		if err != nil {
			return nil, appErrors.Internal(err, "failed to open attachment")
		}
		url, err := s.uploader.Upload(ctx, header.Filename, reader)
		_ = reader.Close()
		if err != nil {
			return nil, appErrors.Internal(err, "failed to upload attachment")
		}

		uploaded = append(uploaded, models.SubmissionFile{
			FileName:   header.Filename,
			FileURL:    url,
			FileType:   fileType,
			FileSize:   header.Size,
			UploadedAt: now,
		})
	}
	return uploaded, nil
}

// detectFileType sniffs the attachment and matches it against MIME types or extensions.
func detectFileType(header *multipart.FileHeader, allowed []string) (string, error) {
	reader, err := header.Open()
	if err != nil {
		return "", appErrors.Internal(err, "failed to open attachment")
	}
	defer reader.Close()

	detected, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", appErrors.Internal(err, "failed to detect attachment type")
	}

	for _, candidate := range allowed {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == "" {
			continue
		}
		if strings.HasPrefix(candidate, ".") {
			if detected.Extension() == candidate {
				return detected.String(), nil
			}
			continue
		}
		if detected.Is(candidate) {
			return detected.String(), nil
		}
	}

	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported file type: %s", detected.String())).
		WithDetail("file_name", header.Filename).
		WithDetail("allowed", allowed)
}

func (s *submissionService) List(ctx context.Context, req dto.SubmissionListRequest) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if _, err := s.repos.Assignments.GetByID(ctx, req.AssignmentID); err != nil {
		return nil, translateRepoError(err, "assignment")
	}

	assignmentID := req.AssignmentID
	submissions, err := s.repos.Submissions.List(ctx, repository.SubmissionFilter{
		AssignmentID: &assignmentID,
		StudentID:    req.StudentID,
		Status:       req.Status,
	})
	if err != nil {
		return nil, translateRepoError(err, "submission")
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Grade(ctx context.Context, grader Grader, submissionID uint, req dto.SubmissionGradeRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "assignment.grade", trace.WithAttributes(
		attribute.Int64("submission.id", int64(submissionID)),
		attribute.Int64("submission.grader_id", int64(grader.ID)),
	))
	defer span.End()

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(req.Feedback))
	now := s.now()

	submission, err := s.transition(ctx, submissionID, models.SubmissionStatusGraded, func(submission *models.Submission) error {
		adjusted, err := grading.AdjustedScore(*req.RawScore, submission.LatePenalty)
		if err != nil {
			return err
		}

		raw := *req.RawScore
		graderID := grader.ID
		gradedAt := now
		submission.RawScore = &raw
		submission.AdjustedScore = &adjusted
		submission.GradedBy = &graderID
		submission.GradedAt = &gradedAt
		if feedback != "" {
			submission.Feedback = feedback
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.Int("submission.adjusted_score", *submission.AdjustedScore))

	s.effects.publish(ctx, Event{
		Type:      EventAssignmentGraded,
		StudentID: submission.StudentID,
		CourseID:  submission.CourseID,
		Message:   fmt.Sprintf("Your submission for %q was graded: %d/100.", submission.Assignment.Title, *submission.AdjustedScore),
		Payload: map[string]interface{}{
			"submission_id":  submission.ID,
			"assignment_id":  submission.AssignmentID,
			"raw_score":      *submission.RawScore,
			"adjusted_score": *submission.AdjustedScore,
			"late_penalty":   submission.LatePenalty,
		},
	})
	s.effects.record(ctx, submissionActivity(grader.ID, grader.Role, models.ActionAssignmentGraded, submission, map[string]interface{}{
		"student_id":     submission.StudentID,
		"raw_score":      *submission.RawScore,
		"adjusted_score": *submission.AdjustedScore,
	}))
	s.effects.invalidate(ctx, submission.StudentID, submission.CourseID)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("grader_id", grader.ID).
		Int("adjusted_score", *submission.AdjustedScore).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) RequestResubmission(ctx context.Context, grader Grader, submissionID uint, req dto.SubmissionFeedbackRequest) (dto.SubmissionResponse, error) {
	return s.handBack(ctx, grader, submissionID, req, models.SubmissionStatusResubmissionRequested)
}

func (s *submissionService) Return(ctx context.Context, grader Grader, submissionID uint, req dto.SubmissionFeedbackRequest) (dto.SubmissionResponse, error) {
	return s.handBack(ctx, grader, submissionID, req, models.SubmissionStatusReturned)
}

func (s *submissionService) handBack(ctx context.Context, grader Grader, submissionID uint, req dto.SubmissionFeedbackRequest, status string) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionResponse{}, err
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(req.Feedback))
	submission, err := s.transition(ctx, submissionID, status, func(submission *models.Submission) error {
		if feedback != "" {
			submission.Feedback = feedback
		}
		return nil
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	eventType, action, message := EventSubmissionReturned, models.ActionSubmissionReturned, "Your graded submission for %q was returned."
	if status == models.SubmissionStatusResubmissionRequested {
		eventType, action, message = EventResubmissionRequested, models.ActionResubmissionRequested, "A resubmission was requested for %q."
	}

	s.effects.publish(ctx, Event{
		Type:      eventType,
		StudentID: submission.StudentID,
		CourseID:  submission.CourseID,
		Message:   fmt.Sprintf(message, submission.Assignment.Title),
		Payload: map[string]interface{}{
			"submission_id": submission.ID,
			"assignment_id": submission.AssignmentID,
		},
	})
	s.effects.record(ctx, submissionActivity(grader.ID, grader.Role, action, submission, map[string]interface{}{
		"student_id": submission.StudentID,
	}))
	s.effects.invalidate(ctx, submission.StudentID, submission.CourseID)

	s.logger.Info().Uint("submission_id", submission.ID).Str("status", status).Msg("submission status changed")

	return dto.NewSubmissionResponse(submission), nil
}

// transition locks the submission, checks the status machine, applies mutate and saves.
func (s *submissionService) transition(ctx context.Context, submissionID uint, next string, mutate func(*models.Submission) error) (models.Submission, error) {
	var submission models.Submission

	err := s.uow.Do(ctx, func(repos repository.Repositories) error {
		var err error
		submission, err = repos.Submissions.GetByIDForUpdate(ctx, submissionID)
		if err != nil {
			return translateRepoError(err, "submission")
		}

		if !submission.CanTransition(next) {
			return appErrors.Clone(appErrors.ErrInvalidStatusTransition,
				fmt.Sprintf("Cannot move submission from %s to %s", submission.Status, next)).
				WithDetail("from", submission.Status).
				WithDetail("to", next)
		}

		if err := mutate(&submission); err != nil {
			return err
		}
		submission.Status = next

		if err := repos.Submissions.Update(ctx, &submission); err != nil {
			return translateRepoError(err, "submission")
		}
		return nil
	})
	return submission, err
}

func submissionActivity(actorID uint, role, action string, submission models.Submission, metadata map[string]interface{}) ActivityEntry {
	entityID := submission.ID
	courseID := submission.CourseID
	return ActivityEntry{
		ActorID:    actorID,
		ActorRole:  role,
		Action:     action,
		EntityType: "submission",
		EntityID:   &entityID,
		CourseID:   &courseID,
		Metadata:   metadata,
	}
}
