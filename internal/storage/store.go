// Package storage provides the session-scoped key-value channel the wizard persists
// into, plus the dual-channel draft store built on top of it.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrQuotaExceeded is returned by Set when a write would push a session past its
// storage quota. Callers degrade to in-memory operation rather than failing the user.
var ErrQuotaExceeded = errors.New("session storage quota exceeded")

// SessionStore is a per-session key-value channel with get/set/remove semantics only.
// There is no multi-key transactionality: the draft-field and photo channels may
// disagree after a crash, and readers must tolerate that.
type SessionStore interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, bool, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteIdleSessions(ctx context.Context, idleSince time.Time) (int64, error)
}
