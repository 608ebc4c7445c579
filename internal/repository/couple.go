package repository

import (
	"context"
	"errors"
	"fmt"

	"couple-backend/internal/docstore"
	"couple-backend/internal/models"
)

// CoupleRepository handles document operations for couples
type CoupleRepository struct {
	store docstore.Store
}

// NewCoupleRepository creates a new couple repository
func NewCoupleRepository(store docstore.Store) *CoupleRepository {
	return &CoupleRepository{store: store}
}

// Create writes a new couple in the shape the client app writes it.
// The backend never creates them itself; Create seeds stores.
func (r *CoupleRepository) Create(ctx context.Context, couple *models.Couple) error {
	data := map[string]any{
		"user1Id": couple.User1ID,
		"user2Id": couple.User2ID,
	}
	if len(couple.DisconnectedUsers) > 0 {
		data["disconnectedUsers"] = couple.DisconnectedUsers
	}
	if err := r.store.Set(ctx, models.CouplesCollection, couple.ID, data); err != nil {
		return fmt.Errorf("failed to create couple: %w", err)
	}
	return nil
}

// GetByID retrieves a couple by ID
func (r *CoupleRepository) GetByID(ctx context.Context, id string) (*models.Couple, error) {
	doc, err := r.store.Get(ctx, models.CouplesCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("couple not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	return decodeCouple(doc), nil
}

// List returns up to limit couples whose id sorts after startAfter
func (r *CoupleRepository) List(ctx context.Context, startAfter string, limit int) ([]*models.Couple, error) {
	docs, err := r.store.List(ctx, models.CouplesCollection, docstore.Query{StartAfter: startAfter, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list couples: %w", err)
	}
	couples := make([]*models.Couple, 0, len(docs))
	for _, doc := range docs {
		couples = append(couples, decodeCouple(doc))
	}
	return couples, nil
}

// AddDisconnected flags userID as disconnected. The update only applies if the
// couple is still at couple.Version; otherwise docstore.ErrConflict is returned.
func (r *CoupleRepository) AddDisconnected(ctx context.Context, couple *models.Couple, userID string) error {
	return r.mutate(ctx, couple, func(data map[string]any) {
		current := stringSliceField(data, "disconnectedUsers")
		for _, id := range current {
			if id == userID {
				return
			}
		}
		data["disconnectedUsers"] = append(current, userID)
	})
}

// MarkTeardown flags the couple as being torn down, guarded by couple.Version
func (r *CoupleRepository) MarkTeardown(ctx context.Context, couple *models.Couple) error {
	return r.mutate(ctx, couple, func(data map[string]any) {
		data["teardown"] = true
	})
}

// Delete deletes a couple document
func (r *CoupleRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CouplesCollection, id); err != nil {
		return fmt.Errorf("failed to delete couple: %w", err)
	}
	return nil
}

// mutate applies fn to the stored document, keeping fields this service does not own
func (r *CoupleRepository) mutate(ctx context.Context, couple *models.Couple, fn func(data map[string]any)) error {
	doc, err := r.store.Get(ctx, models.CouplesCollection, couple.ID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("couple not found: %w", err)
		}
		return fmt.Errorf("failed to get couple: %w", err)
	}
	if doc.Version != couple.Version {
		return fmt.Errorf("couple %s: %w", couple.ID, docstore.ErrConflict)
	}

	if doc.Data == nil {
		doc.Data = map[string]any{}
	}
	fn(doc.Data)

	if err := r.store.Update(ctx, models.CouplesCollection, couple.ID, doc.Version, doc.Data); err != nil {
		return fmt.Errorf("failed to update couple: %w", err)
	}
	return nil
}

// CoupleSubCollection returns the path of a collection nested under the couple
func CoupleSubCollection(coupleID, name string) string {
	return docstore.Path(models.CouplesCollection, coupleID, name)
}

func decodeCouple(doc *docstore.Document) *models.Couple {
	return &models.Couple{
		ID:                doc.ID,
		User1ID:           stringField(doc.Data, "user1Id"),
		User2ID:           stringField(doc.Data, "user2Id"),
		DisconnectedUsers: stringSliceField(doc.Data, "disconnectedUsers"),
		Teardown:          boolField(doc.Data, "teardown"),
		Version:           doc.Version,
	}
}
