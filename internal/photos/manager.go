// Package photos owns the ordered collection of candidate listing photos for one
// wizard session: ingestion, preview-handle lifecycle, and persistence.
package photos

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"listing-wizard-backend/internal/imagecodec"
	"listing-wizard-backend/internal/logging"
	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/storage"
)

// Ingestion limits.
const (
	MaxPhotoCount     = 15
	RecommendedPhotos = 5
	MaxPhotoSize      = 10 << 20
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// Asset is one candidate listing photo. Preview is owned by the manager and must
// never be persisted or revoked by anyone else.
type Asset struct {
	ID               string
	Name             string
	Size             int64
	MimeType         string
	Encoded          string
	Preview          imagecodec.Handle
	PreviewAvailable bool
	CreatedAt        time.Time
}

// FileInput is one file selected for upload. Open is called once per ingestion.
type FileInput struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileError reports a per-file ingestion failure. One bad file never aborts a batch.
type FileError struct {
	Filename string
	Stage    string
	Err      error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Filename, e.Stage, e.Err)
}

// Manager exclusively owns the ordered photo collection for one draft.
type Manager struct {
	mu       sync.Mutex
	assets   []*Asset
	registry *imagecodec.PreviewRegistry
	store    *storage.DraftStore
	closed   bool
}

func NewManager(registry *imagecodec.PreviewRegistry, store *storage.DraftStore) *Manager {
	return &Manager{
		registry: registry,
		store:    store,
	}
}

func newAssetID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

// AddPhotos ingests a batch of files. All reads start concurrently since they are
// independent and I/O-bound, but each result lands in the slot reserved for its
// input index, so display order is selection order regardless of completion order.
// Returns the added assets, per-file failures, and a non-fatal persistence warning.
func (m *Manager) AddPhotos(ctx context.Context, inputs []FileInput) ([]*Asset, []FileError, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, nil, fmt.Errorf("photo manager is closed")
	}
	current := len(m.assets)
	m.mu.Unlock()

	slots := make([]*Asset, len(inputs))
	slotErrs := make([]*FileError, len(inputs))

	// Only inputs that pass validation count toward the limit; an oversize file in
	// the middle of a batch must not steal a slot from a valid one behind it.
	accepted := 0
	var wg sync.WaitGroup
	for i, input := range inputs {
		if current+accepted >= MaxPhotoCount {
			slotErrs[i] = &FileError{Filename: input.Name, Stage: "limit",
				Err: fmt.Errorf("photo limit of %d reached", MaxPhotoCount)}
			continue
		}
		if input.Size > MaxPhotoSize {
			slotErrs[i] = &FileError{Filename: input.Name, Stage: "validate",
				Err: fmt.Errorf("file exceeds %d bytes", int64(MaxPhotoSize))}
			continue
		}
		mimeType := imagecodec.DetectMimeType(input.Name)
		if !allowedMimeTypes[mimeType] {
			slotErrs[i] = &FileError{Filename: input.Name, Stage: "validate",
				Err: fmt.Errorf("unsupported image type %s", mimeType)}
			continue
		}

		accepted++
		wg.Add(1)
		go func(i int, input FileInput, mimeType string) {
			defer wg.Done()

			src, err := input.Open()
			if err != nil {
				slotErrs[i] = &FileError{Filename: input.Name, Stage: "open", Err: err}
				return
			}

			// Tee the read so the preview gets the original bytes without decoding
			// the data URI we just produced.
			var buf bytes.Buffer
			encoded, err := imagecodec.EncodeReader(io.TeeReader(src, &buf), mimeType)
			src.Close()
			if err != nil {
				slotErrs[i] = &FileError{Filename: input.Name, Stage: "read", Err: err}
				return
			}
			data := buf.Bytes()

			slots[i] = &Asset{
				ID:               newAssetID(),
				Name:             input.Name,
				Size:             int64(len(data)),
				MimeType:         mimeType,
				Encoded:          encoded,
				Preview:          m.registry.Acquire(data, mimeType),
				PreviewAvailable: true,
				CreatedAt:        time.Now(),
			}
		}(i, input, mimeType)
	}
	wg.Wait()

	added := make([]*Asset, 0, len(inputs))
	failed := make([]FileError, 0)
	for i := range inputs {
		if slotErrs[i] != nil {
			failed = append(failed, *slotErrs[i])
			continue
		}
		if slots[i] != nil {
			added = append(added, slots[i])
		}
	}

	m.mu.Lock()
	if m.closed {
		// The session tore down while reads were in flight. Release what we acquired
		// and apply nothing.
		m.mu.Unlock()
		for _, a := range added {
			m.registry.Release(a.Preview)
		}
		return nil, failed, fmt.Errorf("photo manager closed during ingestion")
	}
	// Recheck the limit under the lock; a concurrent batch may have filled slots
	// while this one was reading.
	room := MaxPhotoCount - len(m.assets)
	if room < 0 {
		room = 0
	}
	var overflow []*Asset
	if len(added) > room {
		overflow = added[room:]
		added = added[:room]
	}
	m.assets = append(m.assets, added...)
	m.mu.Unlock()

	for _, a := range overflow {
		m.registry.Release(a.Preview)
		failed = append(failed, FileError{Filename: a.Name, Stage: "limit",
			Err: fmt.Errorf("photo limit of %d reached", MaxPhotoCount)})
	}

	return added, failed, m.persist(ctx)
}

// RemovePhoto releases the asset's preview handle and drops it from the collection.
// A missing id is a no-op so UI double-clicks stay harmless.
func (m *Manager) RemovePhoto(ctx context.Context, id string) error {
	m.mu.Lock()
	found := false
	for i, a := range m.assets {
		if a.ID == id {
			m.registry.Release(a.Preview)
			m.assets = append(m.assets[:i], m.assets[i+1:]...)
			found = true
			break
		}
	}
	m.mu.Unlock()

	if !found {
		return nil
	}
	return m.persist(ctx)
}

// ClearAll releases every live handle, empties the collection, and removes the
// persisted entry entirely so the session sheds its quota pressure.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	for _, a := range m.assets {
		m.registry.Release(a.Preview)
	}
	m.assets = nil
	m.mu.Unlock()

	if err := m.store.ClearPhotos(ctx); err != nil {
		logging.Logger.WithError(err).Warn("Failed to clear persisted photos")
		return err
	}
	return nil
}

// Restore rebuilds the collection from the persisted channel, re-acquiring a preview
// handle per entry. An entry whose encoding no longer decodes is kept without a
// preview so the user does not silently lose the asset.
func (m *Manager) Restore(ctx context.Context) error {
	persisted, err := m.store.LoadPhotos(ctx)
	if err != nil {
		return err
	}

	assets := make([]*Asset, 0, len(persisted))
	for _, p := range persisted {
		asset := &Asset{
			ID:        p.ID,
			Name:      p.Name,
			Size:      p.Size,
			MimeType:  p.MimeType,
			Encoded:   p.Encoded,
			CreatedAt: p.CreatedAt,
		}
		data, mimeType, err := imagecodec.Decode(p.Encoded)
		if err != nil {
			logging.Logger.WithError(err).WithField("photo_id", p.ID).
				Warn("Persisted photo failed to decode, keeping it without a preview")
		} else {
			asset.Preview = m.registry.Acquire(data, mimeType)
			asset.PreviewAvailable = true
		}
		assets = append(assets, asset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		for _, a := range assets {
			m.registry.Release(a.Preview)
		}
		return fmt.Errorf("photo manager is closed")
	}
	m.assets = assets
	return nil
}

// Assets returns a snapshot of the collection in display order.
func (m *Manager) Assets() []*Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Asset, len(m.assets))
	copy(out, m.assets)
	return out
}

// Count reports the number of photos currently in the draft.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assets)
}

// EncodedPhotos returns the encoded strings in display order for submission.
func (m *Manager) EncodedPhotos() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.assets))
	for i, a := range m.assets {
		out[i] = a.Encoded
	}
	return out
}

// Close releases every live preview handle exactly once. It runs on session
// teardown as well as explicit reset, and tolerates being called twice.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, a := range m.assets {
		m.registry.Release(a.Preview)
	}
	m.assets = nil
}

func (m *Manager) persist(ctx context.Context) error {
	m.mu.Lock()
	persisted := make([]storage.PersistedPhoto, len(m.assets))
	for i, a := range m.assets {
		persisted[i] = storage.PersistedPhoto{
			ID:        a.ID,
			Name:      a.Name,
			Size:      a.Size,
			MimeType:  a.MimeType,
			Encoded:   a.Encoded,
			CreatedAt: a.CreatedAt,
		}
	}
	m.mu.Unlock()

	if err := m.store.SavePhotos(ctx, persisted); err != nil {
		logging.Logger.WithError(err).Warn("Photo persistence degraded, in-memory collection remains authoritative")
		return err
	}
	return nil
}

// ToResponse renders an asset for the API, resolving the preview handle into a URL.
func (a *Asset) ToResponse(previewBaseURL string) models.PhotoResponse {
	resp := models.PhotoResponse{
		ID:               a.ID,
		Filename:         a.Name,
		Size:             a.Size,
		MimeType:         a.MimeType,
		PreviewAvailable: a.PreviewAvailable,
		CreatedAt:        a.CreatedAt,
	}
	if a.PreviewAvailable {
		resp.PreviewURL = previewBaseURL + "/" + string(a.Preview)
	}
	return resp
}
