// Package wizard holds the step state machine for the property-listing draft.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"listing-wizard-backend/internal/logging"
	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/photos"
	"listing-wizard-backend/internal/storage"
)

// State owns the draft. The UI mutates it only through these setters; every
// committed change is written through to the session store immediately, so a crash
// never loses more than the latest uncommitted input.
type State struct {
	mu     sync.Mutex
	draft  models.Draft
	store  *storage.DraftStore
	photos *photos.Manager
}

// New creates a fresh state for the owner, or rehydrates the persisted one. The
// owner id is captured once at draft creation and never re-derived per step.
func New(ctx context.Context, ownerID string, store *storage.DraftStore, photoMgr *photos.Manager) (*State, error) {
	s := &State{
		draft:  models.NewDraft(ownerID),
		store:  store,
		photos: photoMgr,
	}

	persisted, err := store.LoadDraft(ctx)
	if err != nil {
		// Degraded persistence must not block the wizard.
		logging.Logger.WithError(err).Warn("Failed to load persisted draft, starting fresh")
		return s, nil
	}
	if persisted != nil {
		persisted.OwnerID = ownerID
		s.draft = *persisted
		s.enforceNameGuard()
		if err := photoMgr.Restore(ctx); err != nil {
			logging.Logger.WithError(err).Warn("Failed to restore photos for draft")
		}
	}
	return s, nil
}

// A present but unnamed draft is treated as not started: any step past the first
// hard-redirects back to step 1.
func (s *State) enforceNameGuard() {
	if s.draft.Step != models.StepFirst && strings.TrimSpace(s.draft.Name) == "" {
		s.draft.Step = models.StepFirst
	}
}

// Draft returns a snapshot of the current draft.
func (s *State) Draft() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Step returns the current wizard step.
func (s *State) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Step
}

// Advance moves from step n to n+1 and never skips. Validation is the caller's
// gate; the state machine itself only refuses to run off the end.
func (s *State) Advance(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.draft.Step >= models.StepLast {
		step := s.draft.Step
		s.mu.Unlock()
		return step, fmt.Errorf("already at final step %d", step)
	}
	s.draft.Step++
	s.enforceNameGuard()
	s.mu.Unlock()
	s.persist(ctx)
	return s.Step(), nil
}

// GoTo jumps to an arbitrary step, clamped to range. Direct links may land on any
// step, but the empty-name guard still applies.
func (s *State) GoTo(ctx context.Context, step int) int {
	s.mu.Lock()
	s.draft.Step = models.ClampStep(step)
	s.enforceNameGuard()
	s.mu.Unlock()
	s.persist(ctx)
	return s.Step()
}

func (s *State) SetName(ctx context.Context, name string) {
	s.mu.Lock()
	s.draft.Name = name
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *State) SetPropertyType(ctx context.Context, pt models.PropertyType) {
	s.mu.Lock()
	s.draft.PropertyType = pt
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *State) SetGeolocation(ctx context.Context, geo *models.Geolocation) {
	s.mu.Lock()
	s.draft.Geolocation = geo
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *State) SetFeatures(ctx context.Context, features uint32) {
	s.mu.Lock()
	s.draft.Features = features
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *State) SetDescription(ctx context.Context, description string) {
	s.mu.Lock()
	s.draft.Description = description
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *State) SetCheckIn(ctx context.Context, t models.TimeOfDay) {
	s.mu.Lock()
	s.draft.CheckIn = t
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *State) SetCheckOut(ctx context.Context, t models.TimeOfDay) {
	s.mu.Lock()
	s.draft.CheckOut = t
	s.mu.Unlock()
	s.persist(ctx)
}

// Apply runs a partial update in one write-through.
func (s *State) Apply(ctx context.Context, req models.UpdateDraftRequest) {
	s.mu.Lock()
	if req.Name != nil {
		s.draft.Name = *req.Name
	}
	if req.PropertyType != nil {
		s.draft.PropertyType = models.PropertyType(*req.PropertyType)
	}
	if req.Geolocation != nil {
		geo := *req.Geolocation
		s.draft.Geolocation = &geo
	}
	if req.Features != nil {
		s.draft.Features = *req.Features
	}
	if req.Description != nil {
		s.draft.Description = *req.Description
	}
	if req.CheckIn != nil {
		s.draft.CheckIn = *req.CheckIn
	}
	if req.CheckOut != nil {
		s.draft.CheckOut = *req.CheckOut
	}
	s.mu.Unlock()
	s.persist(ctx)
}

// Reset clears every field to its default, drops all photos, and removes both
// persisted channels. It runs after a successful submission or on explicit restart.
func (s *State) Reset(ctx context.Context) {
	s.mu.Lock()
	ownerID := s.draft.OwnerID
	s.draft = models.NewDraft(ownerID)
	s.mu.Unlock()

	if err := s.photos.ClearAll(ctx); err != nil {
		logging.Logger.WithError(err).Warn("Failed to clear photos during reset")
	}
	if err := s.store.Clear(ctx); err != nil {
		logging.Logger.WithError(err).Warn("Failed to clear persisted draft during reset")
	}
}

func (s *State) persist(ctx context.Context) {
	if err := s.store.SaveDraft(ctx, s.Draft()); err != nil {
		logging.Logger.WithError(err).Warn("Draft persistence degraded, continuing in memory")
	}
}
