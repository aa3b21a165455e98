package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS translation_cache (
	hash       TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	translated TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PGStore keeps the translation cache in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an existing pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Connect opens a pool for databaseURL and makes sure the cache table exists.
func Connect(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := NewPGStore(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the cache table if needed.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, hash string) (string, bool, error) {
	var translated string
	err := s.pool.QueryRow(ctx,
		`SELECT translated FROM translation_cache WHERE hash = $1`, hash).Scan(&translated)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query cached translation: %w", err)
	}
	return translated, true, nil
}

func (s *PGStore) Upsert(ctx context.Context, hash, source, translated string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO translation_cache (hash, source, translated)
		VALUES ($1, $2, $3)
		ON CONFLICT (hash) DO UPDATE
		SET translated = EXCLUDED.translated, updated_at = now()`,
		hash, source, translated)
	if err != nil {
		return fmt.Errorf("upsert cached translation: %w", err)
	}
	return nil
}

func (s *PGStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT hash, translated FROM translation_cache`)
	if err != nil {
		return nil, fmt.Errorf("list cached translations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var hash, translated string
		if err := rows.Scan(&hash, &translated); err != nil {
			return nil, fmt.Errorf("scan cached translation: %w", err)
		}
		out[hash] = translated
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cached translations: %w", err)
	}
	return out, nil
}

// Close releases the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}
