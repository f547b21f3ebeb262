// Package session maps each authenticated owner to their single active wizard
// session and tears idle ones down.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"listing-wizard-backend/internal/imagecodec"
	"listing-wizard-backend/internal/logging"
	"listing-wizard-backend/internal/photos"
	"listing-wizard-backend/internal/storage"
	"listing-wizard-backend/internal/wizard"
)

// Session is one owner's wizard: the draft state machine plus its photo manager.
type Session struct {
	OwnerID  string
	Wizard   *wizard.State
	Photos   *photos.Manager
	lastSeen time.Time
}

// Registry holds the live sessions. One draft per owner; a second mount of the
// wizard rehydrates the same session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    storage.SessionStore
	previews *imagecodec.PreviewRegistry
	ttl      time.Duration
	cron     *cron.Cron
}

func NewRegistry(store storage.SessionStore, previews *imagecodec.PreviewRegistry, ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		store:    store,
		previews: previews,
		ttl:      ttl,
		cron:     cron.New(),
	}
}

// GetOrCreate returns the owner's session, rehydrating a persisted draft when one
// exists.
func (r *Registry) GetOrCreate(ctx context.Context, ownerID string) (*Session, error) {
	r.mu.Lock()
	if sess, ok := r.sessions[ownerID]; ok {
		sess.lastSeen = time.Now()
		r.mu.Unlock()
		return sess, nil
	}
	r.mu.Unlock()

	draftStore := storage.NewDraftStore(r.store, ownerID)
	photoMgr := photos.NewManager(r.previews, draftStore)
	state, err := wizard.New(ctx, ownerID, draftStore, photoMgr)
	if err != nil {
		photoMgr.Close()
		return nil, err
	}

	sess := &Session{
		OwnerID:  ownerID,
		Wizard:   state,
		Photos:   photoMgr,
		lastSeen: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[ownerID]; ok {
		// Lost the race with a concurrent request for the same owner.
		photoMgr.Close()
		existing.lastSeen = time.Now()
		return existing, nil
	}
	r.sessions[ownerID] = sess
	return sess, nil
}

// Remove tears an owner's session down, releasing every live preview handle.
func (r *Registry) Remove(ownerID string) {
	r.mu.Lock()
	sess, ok := r.sessions[ownerID]
	delete(r.sessions, ownerID)
	r.mu.Unlock()
	if ok {
		sess.Photos.Close()
	}
}

// StartSweeper schedules the idle-session sweep.
func (r *Registry) StartSweeper(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.sweep); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var idle []*Session
	for ownerID, sess := range r.sessions {
		if sess.lastSeen.Before(cutoff) {
			idle = append(idle, sess)
			delete(r.sessions, ownerID)
		}
	}
	r.mu.Unlock()

	for _, sess := range idle {
		sess.Photos.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	removed, err := r.store.DeleteIdleSessions(ctx, cutoff)
	if err != nil {
		logging.Logger.WithError(err).Warn("Failed to sweep idle persisted sessions")
		return
	}
	if len(idle) > 0 || removed > 0 {
		logging.Logger.WithField("live", len(idle)).WithField("persisted", removed).
			Info("Swept idle wizard sessions")
	}
}

// Close stops the sweeper and tears down every live session.
func (r *Registry) Close() {
	ctx := r.cron.Stop()
	<-ctx.Done()

	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Photos.Close()
	}
}
