package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the Postgres store needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore keeps every document in a single JSONB table
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a new Postgres-backed document store
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get retrieves a document by collection and id
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	query := `
		SELECT data, version
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var raw []byte
	doc := &Document{ID: id}
	err := s.db.QueryRow(ctx, query, collection, id).Scan(&raw, &doc.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Set creates or replaces a document
func (s *PostgresStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, version = documents.version + 1, updated_at = now()
	`
	if _, err := s.db.Exec(ctx, query, collection, id, string(raw)); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update replaces a document only if it is still at the given version
func (s *PostgresStore) Update(ctx context.Context, collection, id string, version int64, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	query := `
		UPDATE documents
		SET data = $4::jsonb, version = version + 1, updated_at = now()
		WHERE collection = $1 AND id = $2 AND version = $3
	`
	result, err := s.db.Exec(ctx, query, collection, id, version, string(raw))
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrConflict)
	}
	return nil
}

// Delete removes a document
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.db.Exec(ctx, query, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// DeleteBatch removes the given documents in a single statement
func (s *PostgresStore) DeleteBatch(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM documents WHERE collection = $1 AND id = ANY($2)`
	if _, err := s.db.Exec(ctx, query, collection, ids); err != nil {
		return fmt.Errorf("failed to delete batch in %s: %w", collection, err)
	}
	return nil
}

// rfc3339Pattern matches the timestamps written by FormatTime. Documents whose
// time field is missing, not a string or not a timestamp are skipped, as
// MemoryStore does, instead of failing the cast.
const rfc3339Pattern = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`

const timeFilterExpr = "CASE WHEN jsonb_typeof(data->?) = 'string' AND (data->>?) ~ ? " +
	"THEN (data->>?)::timestamptz > ? ELSE false END"

// List returns documents of a collection ordered by id
func (s *PostgresStore) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	builder := psql.Select("id", "data", "version").
		From("documents").
		Where(sq.Eq{"collection": collection}).
		OrderBy("id")

	if q.StartAfter != "" {
		builder = builder.Where(sq.Gt{"id": q.StartAfter})
	}
	if q.TimeField != "" {
		builder = builder.Where(sq.Expr(timeFilterExpr, q.TimeField, q.TimeField, rfc3339Pattern, q.TimeField, q.After))
	}
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var raw []byte
		doc := &Document{}
		if err := rows.Scan(&doc.ID, &raw, &doc.Version); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", collection, err)
	}

	return docs, nil
}
