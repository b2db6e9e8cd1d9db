package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/chiquinho-ai/chiquinho/internal/core"
)

// Store keeps one vector collection in Postgres/pgvector: a table with a
// uuid key, an embedding column and the chunk payload as jsonb. The
// collection dimension is recorded in collection_meta so a model switch is
// detected instead of corrupting the column.
type Store struct {
	db         *sql.DB
	collection string
}

var collectionName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func NewStore(ctx context.Context, databaseURL, collection string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if !collectionName.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{db: db, collection: collection}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) EnsureCollection(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create extension: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS collection_meta (
			collection text PRIMARY KEY,
			dim        integer NOT NULL
		)`); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	var existing int
	err := s.db.QueryRowContext(ctx,
		`SELECT dim FROM collection_meta WHERE collection = $1`, s.collection).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		return s.createCollection(ctx, dim)
	case err != nil:
		return fmt.Errorf("meta lookup: %w", err)
	case existing != dim:
		return fmt.Errorf("collection %q has dim %d, embedder produced %d: %w",
			s.collection, existing, dim, core.ErrDimensionMismatch)
	}
	return nil
}

func (s *Store) RecreateCollection(ctx context.Context, dim int) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS collection_meta (
			collection text PRIMARY KEY,
			dim        integer NOT NULL
		)`); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DROP TABLE IF EXISTS %q`, s.collection)); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM collection_meta WHERE collection = $1`, s.collection); err != nil {
		return fmt.Errorf("reset meta: %w", err)
	}
	return s.EnsureCollection(ctx, dim)
}

func (s *Store) createCollection(ctx context.Context, dim int) error {
	q := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			id        uuid PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			payload   jsonb NOT NULL
		)`, s.collection, dim)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create collection table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_meta (collection, dim) VALUES ($1, $2)
		ON CONFLICT (collection) DO UPDATE SET dim = EXCLUDED.dim`,
		s.collection, dim); err != nil {
		return fmt.Errorf("record collection dim: %w", err)
	}
	return nil
}

// Upsert inserts points in a single transaction with create-or-replace
// semantics keyed by id.
func (s *Store) Upsert(ctx context.Context, points []core.Point) error {
	if len(points) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`
		INSERT INTO %q (id, embedding, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, payload = EXCLUDED.payload`,
		s.collection)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range points {
		p := &points[i]
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal payload: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, pgvector.NewVector(p.Vector), payload); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert point %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]core.SearchHit, error) {
	if limit <= 0 {
		limit = 4
	}
	q := fmt.Sprintf(`
		SELECT payload, 1 - (embedding <=> $1) AS score
		FROM %q
		ORDER BY embedding <=> $1
		LIMIT $2`, s.collection)
	rows, err := s.db.QueryContext(ctx, q, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []core.SearchHit
	for rows.Next() {
		var raw []byte
		var score float32
		if err := rows.Scan(&raw, &score); err != nil {
			return nil, err
		}
		payload := map[string]any{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		hits = append(hits, core.SearchHit{Score: score, Payload: payload})
	}
	return hits, rows.Err()
}

var _ core.VectorStore = (*Store)(nil)
