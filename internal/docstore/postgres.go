package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists documents in a single jsonb-backed table. The seq
// column gives each document a durable insertion order, which Find uses as
// the stable tie-break.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Schema is the DDL for the documents table. Applied on boot by cmd/server
// and cmd/backup.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
    seq        bigserial PRIMARY KEY,
    collection text  NOT NULL,
    id         text  NOT NULL,
    data       jsonb NOT NULL,
    UNIQUE (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
`

// EnsureSchema creates the documents table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure documents schema: %w", err)
	}
	return nil
}

var validField = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

func (p *PostgresStore) Insert(ctx context.Context, collection string, doc Document) (Document, error) {
	stored := doc.Clone()
	if stored.ID() == "" {
		stored["_id"] = uuid.NewString()
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		"INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)",
		collection, stored.ID(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return stored, nil
}

func (p *PostgresStore) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	sql, args, err := buildFindQuery(collection, q)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", collection, err)
	}
	return out, nil
}

// buildFindQuery translates a Query into SQL over the jsonb data column.
// Field names are restricted to identifiers; values are always bound.
func buildFindQuery(collection string, q Query) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT data FROM documents WHERE collection = $1")
	args := []any{collection}

	bind := func(v string) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for field, want := range q.Equals {
		if !validField.MatchString(field) {
			return "", nil, fmt.Errorf("invalid query field %q", field)
		}
		fmt.Fprintf(&sb, " AND data->>'%s' = %s", field, bind(want))
	}
	for field, want := range q.Contains {
		if !validField.MatchString(field) {
			return "", nil, fmt.Errorf("invalid query field %q", field)
		}
		fmt.Fprintf(&sb, " AND data->>'%s' ILIKE %s", field, bind("%"+escapeLike(want)+"%"))
	}
	if q.DateFrom != "" {
		fmt.Fprintf(&sb, " AND data->>'date' >= %s", bind(q.DateFrom))
	}
	if q.DateTo != "" {
		fmt.Fprintf(&sb, " AND data->>'date' <= %s", bind(q.DateTo))
	}

	if q.SortBy != "" {
		if !validField.MatchString(q.SortBy) {
			return "", nil, fmt.Errorf("invalid sort field %q", q.SortBy)
		}
		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}
		expr := fmt.Sprintf("data->>'%s'", q.SortBy)
		if q.SortNumeric {
			expr = fmt.Sprintf("(data->>'%s')::numeric", q.SortBy)
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s, seq ASC", expr, dir)
	} else {
		sb.WriteString(" ORDER BY seq ASC")
	}
	return sb.String(), args, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

func (p *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var data []byte
	err := p.pool.QueryRow(ctx,
		"SELECT data FROM documents WHERE collection = $1 AND id = $2",
		collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", collection, id, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func (p *PostgresStore) Update(ctx context.Context, collection, id string, patch Document) (bool, error) {
	clean := patch.Clone()
	delete(clean, "_id")
	data, err := json.Marshal(clean)
	if err != nil {
		return false, fmt.Errorf("failed to encode patch: %w", err)
	}
	// jsonb || merges top-level keys, which is exactly the partial-merge
	// contract of Update.
	tag, err := p.pool.Exec(ctx,
		"UPDATE documents SET data = data || $3 WHERE collection = $1 AND id = $2",
		collection, id, data)
	if err != nil {
		return false, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresStore) Remove(ctx context.Context, collection, id string) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		"DELETE FROM documents WHERE collection = $1 AND id = $2", collection, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresStore) RemoveWhere(ctx context.Context, collection, field, value string) (int, error) {
	if !validField.MatchString(field) {
		return 0, fmt.Errorf("invalid query field %q", field)
	}
	tag, err := p.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM documents WHERE collection = $1 AND data->>'%s' = $2", field),
		collection, value)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", collection, err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *PostgresStore) ReplaceAll(ctx context.Context, collection string, docs []Document) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin replace of %s: %w", collection, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM documents WHERE collection = $1", collection); err != nil {
		return fmt.Errorf("failed to clear %s: %w", collection, err)
	}
	for _, doc := range docs {
		stored := doc.Clone()
		if stored.ID() == "" {
			stored["_id"] = uuid.NewString()
		}
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)",
			collection, stored.ID(), data); err != nil {
			return fmt.Errorf("failed to restore into %s: %w", collection, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit replace of %s: %w", collection, err)
	}
	return nil
}
