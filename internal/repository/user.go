package repository

import (
	"context"
	"errors"
	"fmt"

	"couple-backend/internal/docstore"
	"couple-backend/internal/models"
)

// UserRepository handles document operations for user profiles
type UserRepository struct {
	store docstore.Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create writes a user profile in the shape the client app writes it.
// The backend never creates them itself; Create seeds stores.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	data := map[string]any{}
	if user.CoupleID != "" {
		data["coupleId"] = user.CoupleID
	}
	if user.ProfileImageURL != "" {
		data["profileImageUrl"] = user.ProfileImageURL
	}
	if user.CoupleCode != "" {
		data["coupleCode"] = user.CoupleCode
	}
	if user.FCMToken != "" {
		data["fcmToken"] = user.FCMToken
	}
	if err := r.store.Set(ctx, models.UsersCollection, user.ID, data); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.store.Get(ctx, models.UsersCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &models.User{
		ID:              doc.ID,
		CoupleID:        stringField(doc.Data, "coupleId"),
		ProfileImageURL: stringField(doc.Data, "profileImageUrl"),
		CoupleCode:      stringField(doc.Data, "coupleCode"),
		FCMToken:        stringField(doc.Data, "fcmToken"),
	}, nil
}

// Exists checks whether a user profile is present
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.store.Get(ctx, models.UsersCollection, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check user existence: %w", err)
}

// Delete deletes a user profile document
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.UsersCollection, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// SubCollection returns the path of a collection nested under the user
func SubCollection(userID, name string) string {
	return docstore.Path(models.UsersCollection, userID, name)
}
