package services

import (
	"context"
	"testing"
	"time"

	"couple-backend/internal/docstore"
	"couple-backend/internal/models"
	"couple-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		sum  float64
		want int
	}{
		{0, 0},
		{30, 40},
		{29.25, 39},
		{29, 38},
		{37.5, 50},
		{75, 100},
		{1000, 100},
		{-10, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.sum), "sum %v", tt.sum)
	}
}

func TestScoreService_ComputeScore(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	activities := repository.NewActivityRepository(store)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	add := func(id string, at time.Time, points float64) {
		require.NoError(t, activities.Create(ctx, "c1", &models.Activity{ID: id, CreatedAt: at, Points: points}))
	}
	add("recent", now.Add(-time.Hour), 20)
	add("six-days", now.AddDate(0, 0, -6), 10)
	add("boundary", now.AddDate(0, 0, -7), 40)
	add("old", now.AddDate(0, 0, -30), 75)
	require.NoError(t, store.Set(ctx, "couples/c1/rhm_actions", "no-points", map[string]any{
		"createdAt": docstore.FormatTime(now.Add(-time.Minute)),
	}))
	require.NoError(t, activities.Create(ctx, "c2", &models.Activity{ID: "other", CreatedAt: now, Points: 75}))

	svc := NewScoreService(activities)
	svc.now = func() time.Time { return now }

	score, err := svc.ComputeScore(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 40, score)

	score, err = svc.ComputeScore(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}
