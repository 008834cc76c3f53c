package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/models"
)

func TestActivityServiceRecordMasksSensitiveMetadata(t *testing.T) {
	env := newTestEnv(t)
	svc := NewActivityService(env.repos.Activity, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    9,
		ActorRole:  "Teacher",
		Action:     models.ActionAssignmentGraded,
		EntityType: "Submission",
		EntityID:   ptrUint(5),
		CourseID:   ptrUint(1),
		Metadata: map[string]interface{}{
			"student_email": "student@example.com",
			"seed_token":    "secret",
			"raw_score":     80,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "s***t@example.com", entry.Metadata["student_email"])
	require.Equal(t, "***", entry.Metadata["seed_token"])
	require.EqualValues(t, 80, entry.Metadata["raw_score"])
	require.Equal(t, "teacher", entry.ActorRole)
	require.Equal(t, "submission", entry.EntityType)

	_, err = svc.Record(context.Background(), ActivityEntry{EntityType: "submission"})
	require.Error(t, err)
}

func TestActivityServiceListFiltersByCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewActivityService(env.repos.Activity, testLogger())

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, ActivityEntry{ActorID: 7, ActorRole: models.RoleStudent, Action: models.ActionQuizSubmitted, EntityType: "quiz_attempt", CourseID: ptrUint(1)})
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, ActivityEntry{ActorID: 7, Action: models.ActionEnrolled, EntityType: "enrollment", CourseID: ptrUint(2)})
	require.NoError(t, err)

	page, err := svc.List(ctx, dto.ActivityListRequest{CourseID: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, int64(3), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)

	system, err := svc.List(ctx, dto.ActivityListRequest{CourseID: 2})
	require.NoError(t, err)
	require.Len(t, system.Items, 1)
	require.Equal(t, "system", system.Items[0].ActorRole)
}
