// Package docstore is a small document database abstraction: named collections
// addressed by slash-separated paths ("users", "users/u1/check_ins"), each
// holding schemaless JSON documents keyed by id. Nested collections are plain
// paths; deleting a document never cascades to collections beneath it.
package docstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned by Update when the stored version moved on.
	ErrConflict = errors.New("document version conflict")
)

// Document is a stored document with its store-maintained version.
type Document struct {
	ID      string
	Data    map[string]any
	Version int64
}

// Query narrows a List call. The zero value lists the whole collection in id order.
type Query struct {
	// Limit caps the number of documents returned; 0 means no limit.
	Limit int
	// StartAfter returns only documents whose id sorts after this one.
	StartAfter string
	// TimeField/After keep documents whose RFC3339 timestamp field is strictly after After.
	TimeField string
	After     time.Time
}

// Store is the document database used by every repository.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Set creates or replaces a document.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update replaces a document only if its version still equals version.
	Update(ctx context.Context, collection, id string, version int64, data map[string]any) error
	// Delete removes a document; deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// DeleteBatch removes the given documents in one atomic commit.
	DeleteBatch(ctx context.Context, collection string, ids []string) error
	// List returns documents ordered by id.
	List(ctx context.Context, collection string, q Query) ([]*Document, error)
}

// Path joins path segments into a collection path.
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// FormatTime is the timestamp encoding used inside documents.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime decodes a timestamp field written by FormatTime (or any RFC3339 value).
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	case time.Time:
		return t, true
	default:
		return time.Time{}, false
	}
}
