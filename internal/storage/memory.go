package storage

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	values  map[string][]byte
	touched time.Time
}

func (s *memorySession) size() int64 {
	var total int64
	for _, v := range s.values {
		total += int64(len(v))
	}
	return total
}

// MemoryStore is the in-process SessionStore. Each session has an independent byte
// quota, mirroring the size limits of the browser-session channel it stands in for.
type MemoryStore struct {
	mu         sync.Mutex
	sessions   map[string]*memorySession
	quotaBytes int64
}

func NewMemoryStore(quotaBytes int64) *MemoryStore {
	return &MemoryStore{
		sessions:   make(map[string]*memorySession),
		quotaBytes: quotaBytes,
	}
}

func (m *MemoryStore) Get(_ context.Context, sessionID, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, false, nil
	}
	sess.touched = time.Now()
	value, ok := sess.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		sess = &memorySession{values: make(map[string][]byte)}
		m.sessions[sessionID] = sess
	}
	sess.touched = time.Now()

	newSize := sess.size() - int64(len(sess.values[key])) + int64(len(value))
	if newSize > m.quotaBytes {
		return ErrQuotaExceeded
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	sess.values[key] = cp
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[sessionID]; ok {
		sess.touched = time.Now()
		delete(sess.values, key)
	}
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemoryStore) DeleteIdleSessions(_ context.Context, idleSince time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, sess := range m.sessions {
		if sess.touched.Before(idleSince) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}
