// Package adapter defines the notification boundary.
//
// Adapters publish a summary of every conversion attempt to a downstream
// system. Notification failures never reach the user; the session logs
// them and carries on.
package adapter

import (
	"context"
	"fmt"
	"time"
)

// EventType is the type of every published event.
const EventType = "batch_converted"

// Outcome values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// BatchConvertedEvent is the payload published after a conversion attempt.
type BatchConvertedEvent struct {
	EventVersion string   `json:"event_version"`
	EventType    string   `json:"event_type"` // always "batch_converted"
	SessionID    string   `json:"session_id"`
	Endpoint     string   `json:"endpoint"`
	Outcome      string   `json:"outcome"` // success or error
	Quality      int      `json:"quality"`
	FileCount    int      `json:"file_count"`
	Filenames    []string `json:"filenames"`
	ResultNames  []string `json:"result_names,omitempty"`
	Bundle       bool     `json:"bundle"`
	BytesSent    int64    `json:"bytes_sent"`
	BytesRecv    int64    `json:"bytes_received"`
	StatusCode   int      `json:"status_code,omitempty"`
	Error        string   `json:"error,omitempty"`
	Timestamp    string   `json:"timestamp"` // RFC 3339
	DurationMs   int64    `json:"duration_ms"`
}

// Adapter publishes conversion events to a downstream system.
type Adapter interface {
	// Publish sends one event. Must respect context cancellation.
	Publish(ctx context.Context, event *BatchConvertedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Backoff returns the wait before retry attempt i (i >= 1):
// 500ms, 1s, 2s, ...
func Backoff(i int) time.Duration {
	return time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
}

// Retry calls fn up to 1+retries times with Backoff between attempts.
// It stops early when fatal reports the error as non-retriable.
func Retry(ctx context.Context, name string, retries int, fn func(context.Context) error, fatal func(error) bool) error {
	var lastErr error
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(Backoff(i)):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if fatal != nil && fatal(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
