package services

import (
	"context"
	"fmt"
	"runtime"

	"couple-backend/internal/docstore"

	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the number of documents removed per commit
const DefaultBatchSize = 50

// BatchDeleter empties collections one bounded batch at a time
type BatchDeleter struct {
	store docstore.Store
}

// NewBatchDeleter creates a new batch deleter
func NewBatchDeleter(store docstore.Store) *BatchDeleter {
	return &BatchDeleter{store: store}
}

// DeleteCollection deletes every document in collection, batchSize at a time,
// until a query comes back empty. Documents beneath the deleted ones are not touched.
func (d *BatchDeleter) DeleteCollection(ctx context.Context, collection string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	deleted := 0
	for {
		docs, err := d.store.List(ctx, collection, docstore.Query{Limit: batchSize})
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", collection, err)
		}
		if len(docs) == 0 {
			break
		}

		ids := make([]string, 0, len(docs))
		for _, doc := range docs {
			ids = append(ids, doc.ID)
		}
		if err := d.store.DeleteBatch(ctx, collection, ids); err != nil {
			return fmt.Errorf("failed to commit batch in %s: %w", collection, err)
		}
		deleted += len(ids)

		// Let other goroutines run between batches.
		runtime.Gosched()
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("deletion of %s interrupted: %w", collection, err)
		}
	}

	if deleted > 0 {
		log.Debug().Str("collection", collection).Int("deleted", deleted).Msg("Collection deleted")
	}
	return nil
}
