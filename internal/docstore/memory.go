package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

type memoryKey struct {
	collection string
	id         string
}

type memoryDoc struct {
	data    []byte
	version int64
}

// MemoryStore is an in-process Store used for local runs and tests.
// Documents are kept JSON-encoded so values read back have the same types
// (float64 numbers, string timestamps) as from the Postgres store.
type MemoryStore struct {
	mu           sync.RWMutex
	docs         map[memoryKey]memoryDoc
	batchCommits int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[memoryKey]memoryDoc)}
}

// Get retrieves a document
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[memoryKey{collection, id}]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return decodeMemoryDoc(id, doc)
}

// Set creates or replaces a document
func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{collection, id}
	s.docs[key] = memoryDoc{data: raw, version: s.docs[key].version + 1}
	return nil
}

// Update replaces a document if its version matches
func (s *MemoryStore) Update(ctx context.Context, collection, id string, version int64, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{collection, id}
	current, ok := s.docs[key]
	if !ok || current.version != version {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrConflict)
	}
	s.docs[key] = memoryDoc{data: raw, version: version + 1}
	return nil
}

// Delete removes a document
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, memoryKey{collection, id})
	return nil
}

// DeleteBatch removes several documents under one lock
func (s *MemoryStore) DeleteBatch(ctx context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.docs, memoryKey{collection, id})
	}
	s.batchCommits++
	return nil
}

// List returns the documents of a collection in id order
func (s *MemoryStore) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for key := range s.docs {
		if key.collection == collection && (q.StartAfter == "" || key.id > q.StartAfter) {
			ids = append(ids, key.id)
		}
	}
	sort.Strings(ids)

	var docs []*Document
	for _, id := range ids {
		doc, err := decodeMemoryDoc(id, s.docs[memoryKey{collection, id}])
		if err != nil {
			return nil, err
		}
		if q.TimeField != "" {
			ts, ok := ParseTime(doc.Data[q.TimeField])
			if !ok || !ts.After(q.After) {
				continue
			}
		}
		docs = append(docs, doc)
		if q.Limit > 0 && len(docs) == q.Limit {
			break
		}
	}
	return docs, nil
}

// BatchCommits reports how many DeleteBatch calls have been committed
func (s *MemoryStore) BatchCommits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchCommits
}

// Count returns the number of documents in a collection
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.docs {
		if key.collection == collection {
			n++
		}
	}
	return n
}

func decodeMemoryDoc(id string, doc memoryDoc) (*Document, error) {
	var data map[string]any
	if err := json.Unmarshal(doc.data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", id, err)
	}
	return &Document{ID: id, Data: data, Version: doc.version}, nil
}
