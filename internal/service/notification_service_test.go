package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestNotificationPublishStoresAndBroadcasts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := client.Subscribe(ctx, "techbridge:events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	svc := NewNotificationService(env.repos.Notifications, client, "techbridge", nil, testLogger())
	svc.Publish(ctx, Event{
		Type:      EventQuizGraded,
		StudentID: 7,
		CourseID:  1,
		Message:   "Your attempt <b>scored</b> 80%",
		Payload:   map[string]interface{}{"score": 80},
	})

	select {
	case msg := <-sub.Channel():
		var envelope eventEnvelope
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &envelope))
		require.Equal(t, EventQuizGraded, envelope.Event.Type)
		require.Equal(t, uint(7), envelope.Event.StudentID)
		require.NotZero(t, envelope.NotificationID)
		require.NotEmpty(t, envelope.Source)
	case <-time.After(2 * time.Second):
		t.Fatal("expected event on redis channel")
	}

	notifications, err := svc.List(ctx, 7, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, "Your attempt scored 80%", notifications[0].Message)
	require.False(t, notifications[0].Read)

	unread, err := svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	read, err := svc.MarkRead(ctx, notifications[0].ID, 7)
	require.NoError(t, err)
	require.True(t, read.Read)

	unread, err = svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	require.Zero(t, unread)

	_, err = svc.MarkRead(ctx, notifications[0].ID, 8)
	requireAppError(t, err, "NOT_FOUND")
}

func TestNotificationPublishWithoutBrokers(t *testing.T) {
	env := newTestEnv(t)
	svc := NewNotificationService(env.repos.Notifications, nil, "", nil, testLogger())

	svc.Publish(context.Background(), Event{Type: EventCertificateIssued, StudentID: 7, Message: "Congratulations"})

	notifications, err := svc.List(context.Background(), 7, 0, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, EventCertificateIssued, notifications[0].Type)

	_, err = svc.List(context.Background(), 0, 10, 0)
	requireAppError(t, err, "VALIDATION_ERROR")
}
