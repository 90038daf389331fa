// Package session is the batch conversion orchestrator.
//
// A Session owns one selection, one result store and the handles both
// reference. Its public methods are the input events of the workflow:
// Select, Remove, SetPattern, Convert, Download, DownloadAll and Reset.
// The endpoint is resolved once, when the session is created.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pithecene-io/webpify/adapter"
	"github.com/pithecene-io/webpify/archive"
	"github.com/pithecene-io/webpify/client"
	"github.com/pithecene-io/webpify/download"
	"github.com/pithecene-io/webpify/endpoint"
	"github.com/pithecene-io/webpify/handle"
	"github.com/pithecene-io/webpify/log"
	"github.com/pithecene-io/webpify/metrics"
	"github.com/pithecene-io/webpify/naming"
	"github.com/pithecene-io/webpify/request"
	"github.com/pithecene-io/webpify/results"
	"github.com/pithecene-io/webpify/selection"
	"github.com/pithecene-io/webpify/types"
)

var (
	// ErrSubmissionInFlight is returned by Convert while another
	// submission is pending.
	ErrSubmissionInFlight = errors.New("a conversion is already in progress")
	// ErrNoResults is returned by downloads when no results are held.
	ErrNoResults = errors.New("no converted results")
	// ErrResultIndex is returned by Download for an out-of-range index.
	ErrResultIndex = errors.New("result index out of range")
	// ErrSuperseded is returned by Convert when the selection changed
	// while the request was in flight. The late results are released.
	ErrSuperseded = errors.New("selection changed during conversion; results discarded")
)

// Config configures a Session.
type Config struct {
	// Endpoint yields the service URL (required).
	Endpoint endpoint.Provider
	// Quality is the WebP quality; 0 means 85.
	Quality int
	// Pattern is the initial rename pattern; nil keeps original names.
	Pattern *types.RenamePattern
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Saver receives downloads. Defaults to the working directory.
	Saver download.Saver
	// Adapter receives a notification after each conversion attempt.
	Adapter adapter.Adapter
	Logger  *log.Logger
	// Handles defaults to an in-memory registry.
	Handles *handle.Registry
	Naming  *naming.Engine
	Now     func() time.Time
}

// Session is the orchestrating context for one user.
type Session struct {
	id       string
	endpoint string

	handles    *handle.Registry
	selection  *selection.Store
	results    *results.Store
	builder    *request.Builder
	client     *client.Client
	dispatcher *download.Dispatcher
	adapter    adapter.Adapter
	logger     *log.Logger
	metrics    *metrics.Collector
	now        func() time.Time

	mu         sync.Mutex
	pattern    *types.RenamePattern
	generation uint64
	submitting bool
}

// New resolves the endpoint and wires the stores, client and dispatcher.
func New(cfg Config) (*Session, error) {
	convertURL, err := endpoint.ConvertURL(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("resolve endpoint: %w", err)
	}

	var pattern *types.RenamePattern
	if cfg.Pattern != nil {
		p := cfg.Pattern.Normalized()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		pattern = &p
	}

	saver := cfg.Saver
	if saver == nil {
		fs, err := download.NewFSSaver(".")
		if err != nil {
			return nil, err
		}
		saver = fs
	}

	handles := cfg.Handles
	if handles == nil {
		handles = handle.NewRegistry()
	}

	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With("session_id", id).With("endpoint", convertURL)

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := client.New(convertURL, handles)
	c.HTTPClient = cfg.HTTPClient

	return &Session{
		id:        id,
		endpoint:  convertURL,
		handles:   handles,
		selection: selection.NewStore(handles),
		results:   results.NewStore(),
		builder:   &request.Builder{Naming: cfg.Naming, Quality: cfg.Quality, Logger: logger},
		client:    c,
		dispatcher: &download.Dispatcher{
			Saver:     saver,
			Assembler: &archive.Assembler{Logger: logger},
			Handles:   handles,
			Logger:    logger,
		},
		adapter: cfg.Adapter,
		logger:  logger,
		metrics: metrics.NewCollector(id, convertURL),
		now:     now,
		pattern: pattern,
	}, nil
}

// Select replaces the batch with files. Previous results, the active
// error and every previous preview are released first. Selecting zero
// files changes nothing.
func (s *Session) Select(ctx context.Context, files []types.RawFile) (int, error) {
	if len(files) == 0 {
		return s.selection.Len(), nil
	}

	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	if err := s.results.Clear(ctx); err != nil {
		s.logger.Warn("release previous results", map[string]any{"error": err.Error()})
	}

	n, err := s.selection.Select(ctx, files)
	if err != nil {
		return n, err
	}
	for _, f := range files {
		if !types.IsSupportedImage(f.Name) {
			s.logger.Warn("unsupported image type", map[string]any{"name": f.Name})
		}
	}
	s.metrics.RecordSelection(n)
	s.logger.Info("selection replaced", map[string]any{"count": n})
	return n, nil
}

// Remove drops the entry at index and releases its preview. Out-of-range
// indices are ignored.
func (s *Session) Remove(ctx context.Context, index int) bool {
	if !s.selection.Remove(ctx, index) {
		return false
	}
	s.metrics.IncFilesRemoved()
	s.logger.Info("entry removed", map[string]any{"index": index, "remaining": s.selection.Len()})
	return true
}

// SetPattern sets the active rename pattern. nil restores original names.
func (s *Session) SetPattern(p *types.RenamePattern) error {
	var next *types.RenamePattern
	if p != nil {
		n := p.Normalized()
		if err := n.Validate(); err != nil {
			return err
		}
		next = &n
	}
	s.mu.Lock()
	s.pattern = next
	s.mu.Unlock()
	return nil
}

// Convert submits a snapshot of the current selection. On success the
// results replace the store contents; on failure the user-facing message
// becomes the active error. Either way the session is ready for another
// attempt when Convert returns.
func (s *Session) Convert(ctx context.Context) ([]types.ConvertedResult, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	s.submitting = true
	gen := s.generation
	pattern := s.pattern
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	if err := s.results.Clear(ctx); err != nil {
		s.logger.Warn("release previous results", map[string]any{"error": err.Error()})
	}

	files := s.selection.Snapshot()
	req, err := s.builder.Build(files, pattern)
	if err != nil {
		return nil, err
	}

	var uploadBytes int64
	for _, f := range files {
		uploadBytes += f.SizeBytes
	}
	s.metrics.RecordSubmissionStarted(uploadBytes)
	s.logger.Info("submission started", map[string]any{
		"count":   len(req.Parts),
		"quality": req.Quality,
	})

	start := s.now()
	converted, err := s.client.Submit(ctx, req)
	if errors.Is(err, client.ErrBusy) {
		return nil, ErrSubmissionInFlight
	}
	event := s.event(req, start, uploadBytes)

	if s.superseded(gen) {
		s.discard(ctx, converted)
		return nil, ErrSuperseded
	}

	if err != nil {
		msg := err.Error()
		var convErr *client.ConversionError
		if errors.As(err, &convErr) {
			msg = convErr.Message
			event.StatusCode = convErr.StatusCode
		}
		if serr := s.results.SetError(ctx, msg); serr != nil {
			s.logger.Warn("release previous results", map[string]any{"error": serr.Error()})
		}
		s.metrics.IncSubmissionFailed()
		s.logger.Error("submission failed", map[string]any{
			"status":  event.StatusCode,
			"message": msg,
		})
		event.Outcome = adapter.OutcomeError
		event.Error = msg
		s.publish(ctx, event)
		return nil, err
	}

	if err := s.results.SetResults(ctx, converted); err != nil {
		s.logger.Warn("release previous results", map[string]any{"error": err.Error()})
	}
	for _, r := range converted {
		event.ResultNames = append(event.ResultNames, r.Name)
		event.BytesRecv += r.SizeBytes
		event.Bundle = event.Bundle || r.IsBundle
	}
	s.metrics.RecordSubmissionSucceeded(event.BytesRecv, event.Bundle)
	s.logger.Info("submission succeeded", map[string]any{
		"results": len(converted),
		"bundle":  event.Bundle,
		"bytes":   event.BytesRecv,
	})
	event.Outcome = adapter.OutcomeSuccess
	s.publish(ctx, event)
	return s.results.Results(), nil
}

func (s *Session) superseded(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation != gen
}

func (s *Session) discard(ctx context.Context, converted []types.ConvertedResult) {
	for _, r := range converted {
		if err := r.Content.Release(ctx); err != nil {
			s.logger.Warn("release discarded result", map[string]any{"error": err.Error()})
		}
	}
	s.metrics.IncSubmissionDiscarded()
	s.logger.Warn("submission superseded by new selection", map[string]any{"results": len(converted)})
}

func (s *Session) event(req *types.ConversionRequest, start time.Time, uploadBytes int64) *adapter.BatchConvertedEvent {
	end := s.now()
	return &adapter.BatchConvertedEvent{
		EventVersion: types.EventVersion,
		EventType:    adapter.EventType,
		SessionID:    s.id,
		Endpoint:     s.endpoint,
		Quality:      req.Quality,
		FileCount:    len(req.Parts),
		Filenames:    req.Filenames(),
		BytesSent:    uploadBytes,
		Timestamp:    end.UTC().Format(time.RFC3339),
		DurationMs:   end.Sub(start).Milliseconds(),
	}
}

func (s *Session) publish(ctx context.Context, event *adapter.BatchConvertedEvent) {
	if s.adapter == nil {
		return
	}
	if err := s.adapter.Publish(ctx, event); err != nil {
		s.metrics.IncNotificationFailed()
		s.logger.Warn("notification publish failed", map[string]any{"error": err.Error()})
		return
	}
	s.metrics.IncNotificationPublished()
}

// Download saves the result at index under its own name.
func (s *Session) Download(ctx context.Context, index int) (download.Saved, error) {
	r, ok := s.results.At(index)
	if !ok {
		if s.results.Len() == 0 {
			return download.Saved{}, ErrNoResults
		}
		return download.Saved{}, fmt.Errorf("%w: %d", ErrResultIndex, index)
	}
	return s.track(s.dispatcher.DownloadOne(ctx, r))
}

// DownloadAll saves every held result as one file: the result itself
// when there is only one, otherwise an assembled archive.
func (s *Session) DownloadAll(ctx context.Context) (download.Saved, error) {
	held := s.results.Results()
	if len(held) == 0 {
		return download.Saved{}, ErrNoResults
	}
	saved, err := s.track(s.dispatcher.DownloadAll(ctx, held))
	if err == nil {
		s.metrics.AddArchiveItemsSkipped(len(saved.Skipped))
	}
	return saved, err
}

func (s *Session) track(saved download.Saved, err error) (download.Saved, error) {
	if err != nil {
		s.metrics.IncDownloadFailed()
		s.logger.Error("download failed", map[string]any{"error": err.Error()})
		return saved, err
	}
	s.metrics.IncDownloadSaved()
	return saved, nil
}

// Reset discards the selection and results and releases their handles.
// An in-flight submission's late results are discarded.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	s.selection.Clear(ctx)
	return s.results.Clear(ctx)
}

// Close resets the session, releases any remaining handles and closes
// the notification adapter.
func (s *Session) Close(ctx context.Context) error {
	err := s.Reset(ctx)
	if rerr := s.handles.ReleaseAll(ctx); err == nil {
		err = rerr
	}
	if s.adapter != nil {
		if cerr := s.adapter.Close(); err == nil {
			err = cerr
		}
	}
	_ = s.logger.Sync()
	return err
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Endpoint returns the resolved convert URL.
func (s *Session) Endpoint() string { return s.endpoint }

// Files returns a snapshot of the current selection.
func (s *Session) Files() []types.SelectedFile { return s.selection.Snapshot() }

// Results returns the held results in request order.
func (s *Session) Results() []types.ConvertedResult { return s.results.Results() }

// Err returns the active error message, or "".
func (s *Session) Err() string { return s.results.Err() }

// State returns the submission state.
func (s *Session) State() client.State { return s.client.State() }

// Pattern returns a copy of the active rename pattern, or nil.
func (s *Session) Pattern() *types.RenamePattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pattern == nil {
		return nil
	}
	p := *s.pattern
	return &p
}

// Stats returns the session counters.
func (s *Session) Stats() metrics.Snapshot { return s.metrics.Snapshot() }

// Handles exposes the registry for leak accounting.
func (s *Session) Handles() *handle.Registry { return s.handles }

// Health queries the service health route.
func (s *Session) Health(ctx context.Context) (*client.HealthStatus, error) {
	return s.client.Health(ctx)
}

// GeneratedNames previews the names the current pattern gives the
// current selection without contacting the service.
func (s *Session) GeneratedNames() ([]string, error) {
	req, err := s.builder.Build(s.selection.Snapshot(), s.Pattern())
	if err != nil {
		return nil, err
	}
	return req.Filenames(), nil
}
