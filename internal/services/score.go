package services

import (
	"context"
	"math"
	"time"

	"couple-backend/internal/repository"
)

const (
	// ScoreWindowDays is the trailing window of activity that counts toward the score
	ScoreWindowDays = 7
	// ScoreTarget is the number of points that earns a full score
	ScoreTarget = 75.0
)

// ScoreService computes relationship health scores
type ScoreService struct {
	activities *repository.ActivityRepository
	now        func() time.Time
}

// NewScoreService creates a new score service
func NewScoreService(activities *repository.ActivityRepository) *ScoreService {
	return &ScoreService{activities: activities, now: time.Now}
}

// ComputeScore returns the score of a couple from the activity of the last seven days
func (s *ScoreService) ComputeScore(ctx context.Context, coupleID string) (int, error) {
	since := s.now().AddDate(0, 0, -ScoreWindowDays)

	activities, err := s.activities.ListSince(ctx, coupleID, since)
	if err != nil {
		return 0, err
	}

	var sum float64
	for _, a := range activities {
		sum += a.Points
	}
	return Score(sum), nil
}

// Score maps a point total onto [0, 100]
func Score(sum float64) int {
	pct := sum * 100 / ScoreTarget
	if math.IsNaN(pct) {
		return 0
	}
	return int(math.Floor(math.Max(0, math.Min(100, pct))))
}
