package repository

import (
	"context"
	"errors"
	"fmt"

	"couple-backend/internal/docstore"
	"couple-backend/internal/models"
)

// CoupleCodeRepository handles the pairing-code registry
type CoupleCodeRepository struct {
	store docstore.Store
}

// NewCoupleCodeRepository creates a new couple code repository
func NewCoupleCodeRepository(store docstore.Store) *CoupleCodeRepository {
	return &CoupleCodeRepository{store: store}
}

// Create registers a code for a user in the shape the client app writes it.
// The backend never creates them itself; Create seeds stores.
func (r *CoupleCodeRepository) Create(ctx context.Context, code *models.CoupleCode) error {
	if err := r.store.Set(ctx, models.CoupleCodesCollection, code.Code, map[string]any{"userId": code.UserID}); err != nil {
		return fmt.Errorf("failed to create couple code: %w", err)
	}
	return nil
}

// Get retrieves a registry entry by code
func (r *CoupleCodeRepository) Get(ctx context.Context, code string) (*models.CoupleCode, error) {
	doc, err := r.store.Get(ctx, models.CoupleCodesCollection, code)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("couple code not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get couple code: %w", err)
	}
	return &models.CoupleCode{Code: doc.ID, UserID: stringField(doc.Data, "userId")}, nil
}

// Delete removes a registry entry
func (r *CoupleCodeRepository) Delete(ctx context.Context, code string) error {
	if err := r.store.Delete(ctx, models.CoupleCodesCollection, code); err != nil {
		return fmt.Errorf("failed to delete couple code: %w", err)
	}
	return nil
}

// DeleteMember removes the user's own record under the code path
func (r *CoupleCodeRepository) DeleteMember(ctx context.Context, code, userID string) error {
	collection := docstore.Path(models.CoupleCodesCollection, code, models.CodeMembersCollection)
	if err := r.store.Delete(ctx, collection, userID); err != nil {
		return fmt.Errorf("failed to delete couple code member: %w", err)
	}
	return nil
}
