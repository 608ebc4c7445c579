package repository

import (
	"context"
	"fmt"

	"couple-backend/internal/docstore"
	"couple-backend/internal/models"
)

// ChatRepository handles direct-message thread documents
type ChatRepository struct {
	store docstore.Store
}

// NewChatRepository creates a new chat repository
func NewChatRepository(store docstore.Store) *ChatRepository {
	return &ChatRepository{store: store}
}

// Delete removes a thread document. Its sub-collections are left untouched.
func (r *ChatRepository) Delete(ctx context.Context, chatID string) error {
	if err := r.store.Delete(ctx, models.ChatsCollection, chatID); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

// ChatSubCollection returns the path of a collection nested under the thread
func ChatSubCollection(chatID, name string) string {
	return docstore.Path(models.ChatsCollection, chatID, name)
}
