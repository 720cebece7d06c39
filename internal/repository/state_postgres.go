package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/metrics"
)

// StatePostgres keeps one row per namespace in review_state. The blob
// column is jsonb so the state stays inspectable with plain SQL.
type StatePostgres struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStatePostgres(db *pgxpool.Pool, logger *zap.Logger) *StatePostgres {
	return &StatePostgres{db: db, logger: logger}
}

// EnsureSchema creates the review_state table if it does not exist.
// Called once at startup.
func (s *StatePostgres) EnsureSchema(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS review_state (
            namespace  TEXT PRIMARY KEY,
            blob       JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )
    `
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create review_state table: %w", err)
	}
	return nil
}

func (s *StatePostgres) Load(ctx context.Context, namespace string) ([]byte, error) {
	start := time.Now()

	var blob []byte
	query := `SELECT blob FROM review_state WHERE namespace = $1`
	err := s.db.QueryRow(ctx, query, namespace).Scan(&blob)

	metrics.RecordStateOpDuration("load", namespace, time.Since(start))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select review_state %s: %w", namespace, err)
	}
	return blob, nil
}

func (s *StatePostgres) Save(ctx context.Context, namespace string, blob []byte) error {
	start := time.Now()

	query := `
        INSERT INTO review_state (namespace, blob, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (namespace) DO UPDATE
        SET blob = EXCLUDED.blob, updated_at = NOW()
    `
	_, err := s.db.Exec(ctx, query, namespace, blob)

	metrics.RecordStateOpDuration("save", namespace, time.Since(start))

	if err != nil {
		return fmt.Errorf("upsert review_state %s: %w", namespace, err)
	}
	return nil
}
