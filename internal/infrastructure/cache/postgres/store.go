package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// Store is a cache store backed by one key/value table. It lets several api
// and worker instances share a dossier cache instead of a local directory.
// Writes are single-row upserts, which postgres applies atomically.
type Store struct {
	db      *sql.DB
	dossier string
}

// NewStore scopes all keys to one dossier id so a single database serves
// many applicants.
func NewStore(db *sql.DB, dossier string) *Store {
	if dossier == "" {
		dossier = "default"
	}
	return &Store{db: db, dossier: dossier}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026053001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS pipeline_cache (
	dossier TEXT NOT NULL,
	key TEXT NOT NULL,
	value BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (dossier, key)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const (
	stateKey     = "state"
	markerPrefix = "step_done:"
	artifactPref = "artifact:"
	blobPrefix   = "blob:"
)

func (s *Store) LoadState(ctx context.Context) (domain.PipelineState, bool, error) {
	data, found, err := s.get(ctx, stateKey)
	if err != nil || !found {
		return domain.PipelineState{}, found, err
	}
	var state domain.PipelineState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.PipelineState{}, false, fmt.Errorf("decode state: %w", err)
	}
	return state, true, nil
}

func (s *Store) SaveState(ctx context.Context, state domain.PipelineState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return s.put(ctx, stateKey, data)
}

func (s *Store) StepDone(ctx context.Context, step domain.Step) (bool, error) {
	_, found, err := s.get(ctx, markerPrefix+string(step))
	return found, err
}

func (s *Store) MarkStepDone(ctx context.Context, step domain.Step) error {
	stamp := time.Now().UTC().Format(time.RFC3339)
	return s.put(ctx, markerPrefix+string(step), []byte(stamp))
}

func (s *Store) ClearStep(ctx context.Context, step domain.Step) error {
	if err := s.del(ctx, markerPrefix+string(step)); err != nil {
		return err
	}
	return s.del(ctx, artifactPref+string(step))
}

func (s *Store) SaveArtifact(ctx context.Context, step domain.Step, data []byte) error {
	return s.put(ctx, artifactPref+string(step), data)
}

func (s *Store) LoadArtifact(ctx context.Context, step domain.Step) ([]byte, bool, error) {
	return s.get(ctx, artifactPref+string(step))
}

func (s *Store) SaveBlob(ctx context.Context, name string, data []byte) error {
	return s.put(ctx, blobPrefix+name, data)
}

func (s *Store) LoadBlob(ctx context.Context, name string) ([]byte, bool, error) {
	return s.get(ctx, blobPrefix+name)
}

func (s *Store) DeleteBlob(ctx context.Context, name string) error {
	return s.del(ctx, blobPrefix+name)
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT value FROM pipeline_cache WHERE dossier = $1 AND key = $2
`, s.dossier, key)

	var value []byte
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO pipeline_cache (dossier, key, value, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (dossier, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`, s.dossier, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write cache key %s: %w", key, err)
	}
	return nil
}

func (s *Store) del(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
DELETE FROM pipeline_cache WHERE dossier = $1 AND key = $2
`, s.dossier, key)
	if err != nil {
		return fmt.Errorf("delete cache key %s: %w", key, err)
	}
	return nil
}
