package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/repository"
)

// PointsAwarder increments a student's point balance. It returns the points
// actually credited, which is zero when the increment failed.
type PointsAwarder interface {
	Award(ctx context.Context, studentID uint, points int, reason string) int
}

// PointsService awards points and ranks students by their balance.
type PointsService interface {
	PointsAwarder
	Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
}

type pointsService struct {
	students repository.StudentRepository
	logger   zerolog.Logger
}

// NewPointsService builds the points collaborator over the student profile store.
func NewPointsService(students repository.StudentRepository, logger zerolog.Logger) PointsService {
	return &pointsService{
		students: students,
		logger:   logger.With().Str("component", "points_service").Logger(),
	}
}

func (s *pointsService) Award(ctx context.Context, studentID uint, points int, reason string) int {
	if points <= 0 {
		return 0
	}

	if err := s.students.AddPoints(ctx, studentID, points); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Int("points", points).Str("reason", reason).Msg("failed to award points")
		return 0
	}

	s.logger.Debug().Uint("student_id", studentID).Int("points", points).Str("reason", reason).Msg("points awarded")
	return points
}

func (s *pointsService) Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	students, err := s.students.Leaderboard(ctx, limit)
	if err != nil {
		return nil, translateRepoError(err, "leaderboard")
	}

	entries := make([]dto.LeaderboardEntry, 0, len(students))
	for idx, student := range students {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:      idx + 1,
			StudentID: student.ID,
			Name:      student.Name,
			Points:    student.Points,
		})
	}
	return entries, nil
}
