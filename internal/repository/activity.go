package repository

import (
	"context"
	"fmt"
	"time"

	"couple-backend/internal/docstore"
	"couple-backend/internal/models"
)

// ActivityRepository reads the scored actions recorded for a couple
type ActivityRepository struct {
	store docstore.Store
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(store docstore.Store) *ActivityRepository {
	return &ActivityRepository{store: store}
}

// Create records an activity for a couple in the shape the client app writes it.
// The backend never creates them itself; Create seeds stores.
func (r *ActivityRepository) Create(ctx context.Context, coupleID string, activity *models.Activity) error {
	data := map[string]any{
		"createdAt": docstore.FormatTime(activity.CreatedAt),
		"points":    activity.Points,
	}
	if err := r.store.Set(ctx, CoupleSubCollection(coupleID, models.ActivityCollection), activity.ID, data); err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// ListSince retrieves activities created strictly after since
func (r *ActivityRepository) ListSince(ctx context.Context, coupleID string, since time.Time) ([]*models.Activity, error) {
	docs, err := r.store.List(ctx, CoupleSubCollection(coupleID, models.ActivityCollection), docstore.Query{
		TimeField: "createdAt",
		After:     since,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	activities := make([]*models.Activity, 0, len(docs))
	for _, doc := range docs {
		createdAt, _ := docstore.ParseTime(doc.Data["createdAt"])
		activities = append(activities, &models.Activity{
			ID:        doc.ID,
			CreatedAt: createdAt,
			Points:    numberField(doc.Data, "points"),
		})
	}
	return activities, nil
}
