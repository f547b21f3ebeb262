package imagecodec

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is an opaque, revocable reference to a displayable image. Handles never
// survive persistence; they are re-acquired on restore.
type Handle string

// NoHandle marks an asset whose preview could not be derived.
const NoHandle Handle = ""

type previewBlob struct {
	data     []byte
	mimeType string
}

// PreviewRegistry is the arena that owns every live preview handle. Each displayed
// asset holds exactly one handle; Release is idempotent because an explicit removal
// and an unmount-time sweep may race on the same handle.
type PreviewRegistry struct {
	mu    sync.Mutex
	blobs map[Handle]previewBlob
}

func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{
		blobs: make(map[Handle]previewBlob),
	}
}

// Acquire registers the bytes under a fresh handle.
func (r *PreviewRegistry) Acquire(data []byte, mimeType string) Handle {
	h := Handle(uuid.New().String())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[h] = previewBlob{data: data, mimeType: mimeType}
	return h
}

// Release revokes a handle. Releasing NoHandle or an already-released handle is a no-op.
func (r *PreviewRegistry) Release(h Handle) {
	if h == NoHandle {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blobs, h)
}

// Resolve returns the bytes behind a live handle for display.
func (r *PreviewRegistry) Resolve(h Handle) ([]byte, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	blob, ok := r.blobs[h]
	if !ok {
		return nil, "", false
	}
	return blob.data, blob.mimeType, true
}

// Len reports the number of live handles.
func (r *PreviewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blobs)
}
