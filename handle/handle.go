// Package handle provides scoped, revocable references to in-memory binary
// content.
//
// A Handle stands in for a transient object URL: it is created when content
// enters a store (a preview, a converted result, an assembled archive) and
// must be released when that store supersedes or discards it. Content lives
// in a lode.Store so every acquisition is observable and a released handle
// can no longer be re-acquired.
package handle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/webpify/iox"
)

// ErrReleased is returned when opening a handle that was already released.
var ErrReleased = errors.New("handle released")

// Kind labels what a handle is used for.
type Kind string

const (
	// KindPreview is a selection preview view.
	KindPreview Kind = "preview"
	// KindResult is a converted result body.
	KindResult Kind = "result"
	// KindArchive is a client-side assembled archive.
	KindArchive Kind = "archive"
)

// keyPrefix is the store prefix all handle content is written under.
const keyPrefix = "handles/"

// Registry creates handles and tracks which are still live.
// Safe for concurrent use.
type Registry struct {
	store lode.Store

	mu   sync.Mutex
	live map[string]Kind
}

// NewRegistry creates a registry backed by an in-memory lode store.
func NewRegistry() *Registry {
	return NewRegistryWithStore(lode.NewMemory())
}

// NewRegistryWithStore creates a registry backed by the given store.
func NewRegistryWithStore(store lode.Store) *Registry {
	return &Registry{
		store: store,
		live:  make(map[string]Kind),
	}
}

// Acquire copies r into the backing store and returns a live handle to it.
func (r *Registry) Acquire(ctx context.Context, kind Kind, src io.Reader) (*Handle, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read %s content: %w", kind, err)
	}

	key := keyPrefix + string(kind) + "/" + uuid.NewString()
	if err := r.store.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("store %s content: %w", kind, err)
	}

	r.mu.Lock()
	r.live[key] = kind
	r.mu.Unlock()

	return &Handle{registry: r, key: key, kind: kind, size: int64(len(data))}, nil
}

// AcquireBytes is Acquire for content already in memory.
func (r *Registry) AcquireBytes(ctx context.Context, kind Kind, data []byte) (*Handle, error) {
	return r.Acquire(ctx, kind, bytes.NewReader(data))
}

// Live returns the number of handles not yet released.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// LiveKind returns the number of unreleased handles of the given kind.
func (r *Registry) LiveKind(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, k := range r.live {
		if k == kind {
			n++
		}
	}
	return n
}

// ReleaseAll releases every live handle. Returns the first delete error.
func (r *Registry) ReleaseAll(ctx context.Context) error {
	r.mu.Lock()
	keys := make([]string, 0, len(r.live))
	for key := range r.live {
		keys = append(keys, key)
	}
	r.live = make(map[string]Kind)
	r.mu.Unlock()

	var firstErr error
	for _, key := range keys {
		if err := r.store.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// isLive reports whether key has not been released.
func (r *Registry) isLive(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[key]
	return ok
}

// forget marks key released. Returns false if it already was.
func (r *Registry) forget(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[key]; !ok {
		return false
	}
	delete(r.live, key)
	return true
}

// Handle is a reference to content held by a Registry.
// The zero value is not usable; handles come from Registry.Acquire.
type Handle struct {
	registry *Registry
	key      string
	kind     Kind
	size     int64
}

// Key returns the opaque store key. Stable for the life of the handle.
func (h *Handle) Key() string { return h.key }

// Kind returns the handle kind.
func (h *Handle) Kind() Kind { return h.kind }

// Size returns the content length in bytes.
func (h *Handle) Size() int64 { return h.size }

// Released reports whether Release has been called.
func (h *Handle) Released() bool {
	return h == nil || !h.registry.isLive(h.key)
}

// Open re-acquires the content. Returns ErrReleased after Release.
func (h *Handle) Open(ctx context.Context) (io.ReadCloser, error) {
	if h.Released() {
		return nil, ErrReleased
	}
	rc, err := h.registry.store.Get(ctx, h.key)
	if err != nil {
		return nil, fmt.Errorf("open %s handle: %w", h.kind, err)
	}
	return rc, nil
}

// Bytes reads the full content.
func (h *Handle) Bytes(ctx context.Context) ([]byte, error) {
	rc, err := h.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(rc)
	return io.ReadAll(rc)
}

// Release frees the content. Releasing twice is a no-op.
func (h *Handle) Release(ctx context.Context) error {
	if h == nil || !h.registry.forget(h.key) {
		return nil
	}
	if err := h.registry.store.Delete(ctx, h.key); err != nil {
		return fmt.Errorf("release %s handle: %w", h.kind, err)
	}
	return nil
}

// ReleaseAll releases each handle, ignoring nils. Returns the first error.
func ReleaseAll(ctx context.Context, handles ...*Handle) error {
	var firstErr error
	for _, h := range handles {
		if err := h.Release(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
