package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listing-wizard-backend/internal/logging"
	"listing-wizard-backend/internal/models"
)

// The draft fields and the photo list live under separate keys because photos
// dominate storage size and carry a different quota/retry policy.
const (
	draftKey  = "listing:draft"
	photosKey = "listing:draft:photos"
)

// PersistedPhoto is the storable slice of a photo asset: provenance metadata plus the
// encoded data URI. Preview handles never persist.
type PersistedPhoto struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type"`
	Encoded   string    `json:"encoded"`
	CreatedAt time.Time `json:"created_at"`
}

// DraftStore serializes the wizard draft into one session's channel.
type DraftStore struct {
	store     SessionStore
	sessionID string
}

func NewDraftStore(store SessionStore, sessionID string) *DraftStore {
	return &DraftStore{store: store, sessionID: sessionID}
}

// SaveDraft writes the full non-photo snapshot of the draft.
func (s *DraftStore) SaveDraft(ctx context.Context, d models.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.store.Set(ctx, s.sessionID, draftKey, data); err != nil {
		return fmt.Errorf("failed to persist draft: %w", err)
	}
	return nil
}

// LoadDraft returns the persisted draft, or nil when none exists. Each field is
// decoded independently so a single malformed field falls back to its default
// instead of failing the whole load.
func (s *DraftStore) LoadDraft(ctx context.Context) (*models.Draft, error) {
	raw, ok, err := s.store.Get(ctx, s.sessionID, draftKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		logging.Logger.WithField("session_id", s.sessionID).
			Warn("Persisted draft is not valid JSON, starting from defaults")
		d := models.NewDraft("")
		return &d, nil
	}

	d := models.NewDraft("")
	if decodeField(fields["step"], &d.Step) {
		d.Step = models.ClampStep(d.Step)
	}
	decodeField(fields["name"], &d.Name)
	if pt := 0; decodeField(fields["property_type"], &pt) {
		d.PropertyType = models.PropertyType(pt)
	}
	var geo models.Geolocation
	if decodeField(fields["geolocation"], &geo) {
		d.Geolocation = &geo
	}
	decodeField(fields["features"], &d.Features)
	decodeField(fields["description"], &d.Description)
	if t := (models.TimeOfDay{}); decodeField(fields["check_in"], &t) {
		d.CheckIn = t
	}
	if t := (models.TimeOfDay{}); decodeField(fields["check_out"], &t) {
		d.CheckOut = t
	}
	decodeField(fields["owner_id"], &d.OwnerID)

	return &d, nil
}

// SavePhotos writes the photo channel. On a quota failure the previously persisted
// photo entry is cleared and the write retried once; a second failure is surfaced as
// a warning and the in-memory collection stays authoritative.
func (s *DraftStore) SavePhotos(ctx context.Context, photos []PersistedPhoto) error {
	data, err := json.Marshal(photos)
	if err != nil {
		return fmt.Errorf("failed to marshal photos: %w", err)
	}

	err = s.store.Set(ctx, s.sessionID, photosKey, data)
	if errors.Is(err, ErrQuotaExceeded) {
		logging.Logger.WithField("session_id", s.sessionID).
			Warn("Photo persistence hit storage quota, clearing previous entry and retrying")
		if delErr := s.store.Delete(ctx, s.sessionID, photosKey); delErr != nil {
			return fmt.Errorf("failed to clear photo entry for retry: %w", delErr)
		}
		err = s.store.Set(ctx, s.sessionID, photosKey, data)
	}
	if err != nil {
		return fmt.Errorf("failed to persist photos: %w", err)
	}
	return nil
}

// LoadPhotos returns the persisted photo list, or nil when the entry is absent.
func (s *DraftStore) LoadPhotos(ctx context.Context) ([]PersistedPhoto, error) {
	raw, ok, err := s.store.Get(ctx, s.sessionID, photosKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var photos []PersistedPhoto
	if err := json.Unmarshal(raw, &photos); err != nil {
		logging.Logger.WithField("session_id", s.sessionID).
			Warn("Persisted photo list is not valid JSON, treating as empty")
		return nil, nil
	}
	return photos, nil
}

// ClearPhotos removes the photo entry entirely. Absence, not an empty array, is what
// releases quota pressure for the session.
func (s *DraftStore) ClearPhotos(ctx context.Context) error {
	return s.store.Delete(ctx, s.sessionID, photosKey)
}

// Clear removes both channels.
func (s *DraftStore) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.sessionID, draftKey); err != nil {
		return err
	}
	return s.store.Delete(ctx, s.sessionID, photosKey)
}

func decodeField(raw json.RawMessage, dst any) bool {
	if raw == nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
