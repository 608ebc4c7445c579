package identity

import (
	"context"
	"fmt"
	"sync"

	"couple-backend/internal/docstore"
)

// Registry is the authentication provider's user registry
type Registry interface {
	// Delete removes an identity; a missing identity is not an error.
	Delete(ctx context.Context, uid string) error
}

// PostgresRegistry keeps identities in the identities table
type PostgresRegistry struct {
	db docstore.DB
}

// NewPostgresRegistry creates a new Postgres-backed registry
func NewPostgresRegistry(db docstore.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// Delete removes an identity
func (r *PostgresRegistry) Delete(ctx context.Context, uid string) error {
	query := `DELETE FROM identities WHERE uid = $1`
	if _, err := r.db.Exec(ctx, query, uid); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return nil
}

// MemoryRegistry is the Registry behind the memory store driver. Identities
// are created by the authentication provider, never by this service, so Create
// and Exists only seed and inspect local runs.
type MemoryRegistry struct {
	mu   sync.RWMutex
	uids map[string]struct{}
}

// NewMemoryRegistry creates an empty in-memory registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{uids: make(map[string]struct{})}
}

// Create registers an identity
func (r *MemoryRegistry) Create(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uids[uid] = struct{}{}
	return nil
}

// Exists checks if an identity is registered
func (r *MemoryRegistry) Exists(ctx context.Context, uid string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.uids[uid]
	return ok, nil
}

// Delete removes an identity
func (r *MemoryRegistry) Delete(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.uids, uid)
	return nil
}
