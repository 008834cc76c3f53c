package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/models"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

type stubUploader struct {
	names []string
}

func (s *stubUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	s.names = append(s.names, name)
	return "https://files.example.com/" + name, nil
}

func seedAssignment(t *testing.T, env *testEnv) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		ID:          1,
		CourseID:    1,
		Title:       "Concurrency essay",
		DueDate:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		IsPublished: true,
	}
	require.NoError(t, env.db.Create(&assignment).Error)
	return assignment
}

func multipartFiles(t *testing.T, name string, content []byte) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["files"]
}

func TestSubmitLateAppliesPenaltyOnGrade(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	env.enroll(t, 7, 1)
	seedAssignment(t, env)
	ctx := context.Background()
	svc := env.submissionService(nil)

	env.clock.now = time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	submitted, err := svc.Submit(ctx, 7, 1, dto.SubmissionCreateRequest{TextContent: "<b>Channels</b> and goroutines"}, nil)
	require.NoError(t, err)
	require.True(t, submitted.IsLate)
	require.Equal(t, 3, submitted.DaysLate)
	require.Equal(t, 30, submitted.LatePenalty)
	require.Equal(t, "Channels and goroutines", submitted.TextContent)
	require.Equal(t, models.SubmissionStatusSubmitted, submitted.Status)

	graded, err := svc.Grade(ctx, Grader{ID: 9, Role: models.RoleTeacher}, submitted.ID, dto.SubmissionGradeRequest{
		RawScore: ptrFloat(80),
		Feedback: "Good <script>alert(1)</script>structure",
	})
	require.NoError(t, err)
	require.NotNil(t, graded.AdjustedScore)
	require.Equal(t, 56, *graded.AdjustedScore)
	require.Equal(t, models.SubmissionStatusGraded, graded.Status)
	require.Equal(t, ptrUint(9), graded.GradedBy)
	require.NotNil(t, graded.GradedAt)
	require.NotContains(t, graded.Feedback, "script")
	require.Len(t, env.events.ofType(EventAssignmentGraded), 1)

	returned, err := svc.Return(ctx, Grader{ID: 9, Role: models.RoleTeacher}, submitted.ID, dto.SubmissionFeedbackRequest{})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusReturned, returned.Status)
	require.Equal(t, 56, *returned.AdjustedScore)
}

func TestSubmitRejectsBeyondLateWindow(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	env.enroll(t, 7, 1)
	seedAssignment(t, env)

	env.clock.now = time.Date(2024, 1, 17, 0, 0, 1, 0, time.UTC)
	_, err := env.submissionService(nil).Submit(context.Background(), 7, 1, dto.SubmissionCreateRequest{TextContent: "late"}, nil)
	appErr := requireAppError(t, err, "LATE_WINDOW_CLOSED")
	require.Equal(t, appErrors.KindPolicyViolation, appErr.Kind)
	require.Equal(t, 8, appErr.Details["days_late"])
}

func TestSubmitOnlyOverwritesAfterResubmissionRequest(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	env.enroll(t, 7, 1)
	seedAssignment(t, env)
	ctx := context.Background()
	svc := env.submissionService(nil)
	grader := Grader{ID: 9, Role: models.RoleTeacher}

	env.clock.now = time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)
	first, err := svc.Submit(ctx, 7, 1, dto.SubmissionCreateRequest{TextContent: "draft"}, nil)
	require.NoError(t, err)
	require.False(t, first.IsLate)

	_, err = svc.Submit(ctx, 7, 1, dto.SubmissionCreateRequest{TextContent: "second"}, nil)
	appErr := requireAppError(t, err, "ALREADY_SUBMITTED")
	require.Equal(t, appErrors.KindInvalidInput, appErr.Kind)

	_, err = svc.Return(ctx, grader, first.ID, dto.SubmissionFeedbackRequest{})
	requireAppError(t, err, "INVALID_STATUS_TRANSITION")

	requested, err := svc.RequestResubmission(ctx, grader, first.ID, dto.SubmissionFeedbackRequest{Feedback: "Expand section 2"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusResubmissionRequested, requested.Status)
	require.Equal(t, "Expand section 2", requested.Feedback)

	env.clock.Advance(48 * time.Hour)
	resubmitted, err := svc.Submit(ctx, 7, 1, dto.SubmissionCreateRequest{TextContent: "final"}, nil)
	require.NoError(t, err)
	require.Equal(t, first.ID, resubmitted.ID)
	require.Equal(t, 1, resubmitted.ResubmissionCount)
	require.Equal(t, "final", resubmitted.TextContent)
	require.True(t, resubmitted.IsLate)
	require.Equal(t, 2, resubmitted.DaysLate)
	require.Equal(t, 20, resubmitted.LatePenalty)

	assignmentID := uint(1)
	listed, err := svc.List(ctx, dto.SubmissionListRequest{AssignmentID: assignmentID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Assignment)
	require.Equal(t, "Concurrency essay", listed[0].Assignment.Title)
}

func TestGradeValidatesScoreRange(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	env.enroll(t, 7, 1)
	seedAssignment(t, env)
	ctx := context.Background()
	svc := env.submissionService(nil)

	env.clock.now = time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	submitted, err := svc.Submit(ctx, 7, 1, dto.SubmissionCreateRequest{TextContent: "answer"}, nil)
	require.NoError(t, err)

	_, err = svc.Grade(ctx, Grader{ID: 9, Role: models.RoleTeacher}, submitted.ID, dto.SubmissionGradeRequest{RawScore: ptrFloat(101)})
	requireAppError(t, err, "SCORE_OUT_OF_RANGE")

	_, err = svc.Grade(ctx, Grader{ID: 9, Role: models.RoleTeacher}, submitted.ID, dto.SubmissionGradeRequest{})
	require.Error(t, err)

	stored, err := env.repos.Submissions.GetByID(ctx, submitted.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, stored.Status)
	require.Nil(t, stored.AdjustedScore)

	_, err = svc.Grade(ctx, Grader{ID: 9}, 999, dto.SubmissionGradeRequest{RawScore: ptrFloat(50)})
	require.Equal(t, appErrors.KindNotFound, appErrors.KindOf(err))
}

func TestSubmitUploadsAttachments(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	env.enroll(t, 7, 1)
	seedAssignment(t, env)
	ctx := context.Background()
	env.clock.now = time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)

	files := multipartFiles(t, "notes.txt", []byte("plain text notes about goroutines"))

	_, err := env.submissionService(nil).Submit(ctx, 7, 1, dto.SubmissionCreateRequest{}, files)
	requireAppError(t, err, "VALIDATION_ERROR")

	uploader := &stubUploader{}
	submitted, err := env.submissionService(uploader).Submit(ctx, 7, 1, dto.SubmissionCreateRequest{}, files)
	require.NoError(t, err)
	require.Len(t, submitted.Files, 1)
	require.Equal(t, "notes.txt", submitted.Files[0].FileName)
	require.Equal(t, "https://files.example.com/notes.txt", submitted.Files[0].FileURL)
	require.Contains(t, submitted.Files[0].FileType, "text/plain")
	require.Equal(t, []string{"notes.txt"}, uploader.names)
}

func TestSubmitRejectsDisallowedAttachment(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	env.enroll(t, 7, 1)
	seedAssignment(t, env)
	env.clock.now = time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	files := multipartFiles(t, "diagram.png", png)

	_, err := env.submissionService(&stubUploader{}).Submit(context.Background(), 7, 1, dto.SubmissionCreateRequest{}, files)
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	require.Equal(t, "diagram.png", appErr.Details["file_name"])

	_, err = env.submissionService(nil).Submit(context.Background(), 7, 1, dto.SubmissionCreateRequest{}, nil)
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = env.submissionService(nil).Submit(context.Background(), 9, 1, dto.SubmissionCreateRequest{TextContent: "hi"}, nil)
	requireAppError(t, err, "NOT_ENROLLED")
}
