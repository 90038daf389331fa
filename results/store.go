// Package results holds the outcome of the latest conversion: either the
// converted results or the last error message, never both.
package results

import (
	"context"
	"sync"

	"github.com/pithecene-io/webpify/handle"
	"github.com/pithecene-io/webpify/types"
)

// Store owns the content handles of the results it holds.
type Store struct {
	mu      sync.Mutex
	results []types.ConvertedResult
	err     string
}

// NewStore creates an empty result store.
func NewStore() *Store {
	return &Store{}
}

// SetResults replaces the current state with results. Previous result
// handles and any error are released first.
func (s *Store) SetResults(ctx context.Context, results []types.ConvertedResult) error {
	s.mu.Lock()
	prev := s.results
	s.results = append([]types.ConvertedResult(nil), results...)
	s.err = ""
	s.mu.Unlock()
	return release(ctx, prev)
}

// SetError replaces the current state with an error message, releasing
// any held results.
func (s *Store) SetError(ctx context.Context, msg string) error {
	s.mu.Lock()
	prev := s.results
	s.results = nil
	s.err = msg
	s.mu.Unlock()
	return release(ctx, prev)
}

// Clear empties the store and releases every held handle.
func (s *Store) Clear(ctx context.Context) error {
	return s.SetError(ctx, "")
}

// Results returns a copy of the held results in request order.
func (s *Store) Results() []types.ConvertedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.ConvertedResult(nil), s.results...)
}

// At returns the result at index i.
func (s *Store) At(i int) (types.ConvertedResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.results) {
		return types.ConvertedResult{}, false
	}
	return s.results[i], true
}

// Err returns the active error message, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Len returns the number of held results.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func release(ctx context.Context, results []types.ConvertedResult) error {
	handles := make([]*handle.Handle, len(results))
	for i, r := range results {
		handles[i] = r.Content
	}
	return handle.ReleaseAll(ctx, handles...)
}
