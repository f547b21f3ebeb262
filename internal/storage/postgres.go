package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore backs the session channel with the wizard_sessions table so drafts
// survive server restarts. The per-session quota matches the memory store's policy.
type PostgresStore struct {
	db         *sql.DB
	quotaBytes int64
}

func NewPostgresStore(dbURL string, quotaBytes int64) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db, quotaBytes: quotaBytes}, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func (p *PostgresStore) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx,
		"SELECT value FROM wizard_sessions WHERE session_id = $1 AND key = $2",
		sessionID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session value: %w", err)
	}
	return value, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, sessionID, key string, value []byte) error {
	var existing int64
	err := p.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(LENGTH(value)), 0) FROM wizard_sessions WHERE session_id = $1 AND key <> $2",
		sessionID, key,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check session size: %w", err)
	}
	if existing+int64(len(value)) > p.quotaBytes {
		return ErrQuotaExceeded
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO wizard_sessions (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		sessionID, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write session value: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, sessionID, key string) error {
	_, err := p.db.ExecContext(ctx,
		"DELETE FROM wizard_sessions WHERE session_id = $1 AND key = $2",
		sessionID, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session value: %w", err)
	}
	return nil
}

func (p *PostgresStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := p.db.ExecContext(ctx,
		"DELETE FROM wizard_sessions WHERE session_id = $1",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (p *PostgresStore) DeleteIdleSessions(ctx context.Context, idleSince time.Time) (int64, error) {
	result, err := p.db.ExecContext(ctx,
		"DELETE FROM wizard_sessions WHERE updated_at < $1",
		idleSince,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	removed, _ := result.RowsAffected()
	return removed, nil
}
