// Package selection holds the current batch of input files.
//
// Each selected file owns exactly one preview handle. The store releases a
// preview whenever its entry leaves the batch, whether by Remove, by a new
// Select replacing the batch, or by Clear, so previews never outlive their
// entry.
package selection

import (
	"context"
	"fmt"
	"sync"

	"github.com/pithecene-io/webpify/handle"
	"github.com/pithecene-io/webpify/iox"
	"github.com/pithecene-io/webpify/types"
)

// Store holds the selected batch. Safe for concurrent use, although the
// orchestrator is its only writer.
type Store struct {
	handles *handle.Registry

	mu    sync.Mutex
	files []types.SelectedFile
}

// NewStore creates an empty store creating previews in handles.
func NewStore(handles *handle.Registry) *Store {
	return &Store{handles: handles}
}

// Select replaces the entire batch with files. Selecting zero files is a
// no-op and leaves the current batch in place. Returns the new batch size.
//
// Previews for the new batch are created before the old batch is released,
// so a preview failure leaves the previous batch untouched.
func (s *Store) Select(ctx context.Context, files []types.RawFile) (int, error) {
	if len(files) == 0 {
		return s.Len(), nil
	}

	next := make([]types.SelectedFile, 0, len(files))
	for _, f := range files {
		preview, err := s.preview(ctx, f)
		if err != nil {
			for _, sf := range next {
				_ = sf.Preview.Release(ctx)
			}
			return s.Len(), fmt.Errorf("preview %s: %w", f.Name, err)
		}
		next = append(next, types.SelectedFile{
			OriginalName: f.Name,
			SizeBytes:    f.Size,
			MimeType:     f.MimeType,
			Content:      f.Source,
			Preview:      preview,
		})
	}

	s.mu.Lock()
	prev := s.files
	s.files = next
	s.mu.Unlock()

	releasePreviews(ctx, prev)
	return len(next), nil
}

func (s *Store) preview(ctx context.Context, f types.RawFile) (*handle.Handle, error) {
	if f.Source == nil {
		return s.handles.AcquireBytes(ctx, handle.KindPreview, nil)
	}
	rc, err := f.Source.Open()
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(rc)
	return s.handles.Acquire(ctx, handle.KindPreview, rc)
}

// Remove releases the preview at index and drops the entry. Out-of-range
// indices are ignored. Reports whether an entry was removed.
func (s *Store) Remove(ctx context.Context, index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.files) {
		s.mu.Unlock()
		return false
	}
	removed := s.files[index]
	next := make([]types.SelectedFile, 0, len(s.files)-1)
	next = append(next, s.files[:index]...)
	next = append(next, s.files[index+1:]...)
	s.files = next
	s.mu.Unlock()

	_ = removed.Preview.Release(ctx)
	return true
}

// Clear empties the batch, releasing every preview.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	prev := s.files
	s.files = nil
	s.mu.Unlock()

	releasePreviews(ctx, prev)
}

// Snapshot returns a copy of the current batch. Later mutation of the
// store does not affect the returned slice.
func (s *Store) Snapshot() []types.SelectedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.SelectedFile, len(s.files))
	copy(out, s.files)
	return out
}

// Len returns the batch size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func releasePreviews(ctx context.Context, files []types.SelectedFile) {
	for _, f := range files {
		_ = f.Preview.Release(ctx)
	}
}
