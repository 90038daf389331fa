// Package metrics provides per-session counters for the conversion pipeline.
//
// The Collector accumulates counters for one orchestrator session. It is a
// leaf package with no internal dependencies.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all session metrics.
type Snapshot struct {
	// Selection
	BatchesSelected int64 `json:"batches_selected"`
	FilesSelected   int64 `json:"files_selected"`
	FilesRemoved    int64 `json:"files_removed"`

	// Submission
	SubmissionsStarted   int64 `json:"submissions_started"`
	SubmissionsSucceeded int64 `json:"submissions_succeeded"`
	SubmissionsFailed    int64 `json:"submissions_failed"`
	SubmissionsDiscarded int64 `json:"submissions_discarded"`
	BytesUploaded        int64 `json:"bytes_uploaded"`
	BytesReceived        int64 `json:"bytes_received"`
	BundleResults        int64 `json:"bundle_results"`

	// Archive / download
	ArchiveItemsSkipped int64 `json:"archive_items_skipped"`
	DownloadsSaved      int64 `json:"downloads_saved"`
	DownloadsFailed     int64 `json:"downloads_failed"`

	// Notifications
	NotificationsPublished int64 `json:"notifications_published"`
	NotificationsFailed    int64 `json:"notifications_failed"`

	// Dimensions (informational, set at construction)
	SessionID string `json:"session_id"`
	Endpoint  string `json:"endpoint"`
}

// Collector accumulates metrics during a session.
// Thread-safe via sync.Mutex. All methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex
	s  Snapshot
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(sessionID, endpoint string) *Collector {
	return &Collector{s: Snapshot{SessionID: sessionID, Endpoint: endpoint}}
}

// update applies fn under the lock. No-op on a nil collector.
func (c *Collector) update(fn func(s *Snapshot)) {
	if c == nil {
		return
	}
	c.mu.Lock()
	fn(&c.s)
	c.mu.Unlock()
}

// --- Selection ---

// RecordSelection records a batch replacement of n files.
func (c *Collector) RecordSelection(n int) {
	c.update(func(s *Snapshot) {
		s.BatchesSelected++
		s.FilesSelected += int64(n)
	})
}

// IncFilesRemoved records one removed entry.
func (c *Collector) IncFilesRemoved() {
	c.update(func(s *Snapshot) { s.FilesRemoved++ })
}

// --- Submission ---

// RecordSubmissionStarted records a submission of uploadBytes request bytes.
func (c *Collector) RecordSubmissionStarted(uploadBytes int64) {
	c.update(func(s *Snapshot) {
		s.SubmissionsStarted++
		s.BytesUploaded += uploadBytes
	})
}

// RecordSubmissionSucceeded records a classified success response.
func (c *Collector) RecordSubmissionSucceeded(receivedBytes int64, bundle bool) {
	c.update(func(s *Snapshot) {
		s.SubmissionsSucceeded++
		s.BytesReceived += receivedBytes
		if bundle {
			s.BundleResults++
		}
	})
}

// IncSubmissionFailed records a transport failure.
func (c *Collector) IncSubmissionFailed() {
	c.update(func(s *Snapshot) { s.SubmissionsFailed++ })
}

// IncSubmissionDiscarded records results dropped because the selection
// changed while the submission was in flight.
func (c *Collector) IncSubmissionDiscarded() {
	c.update(func(s *Snapshot) { s.SubmissionsDiscarded++ })
}

// --- Archive / download ---

// AddArchiveItemsSkipped records n items left out of an assembled archive.
func (c *Collector) AddArchiveItemsSkipped(n int) {
	c.update(func(s *Snapshot) { s.ArchiveItemsSkipped += int64(n) })
}

// IncDownloadSaved records a completed save action.
func (c *Collector) IncDownloadSaved() {
	c.update(func(s *Snapshot) { s.DownloadsSaved++ })
}

// IncDownloadFailed records a failed save action.
func (c *Collector) IncDownloadFailed() {
	c.update(func(s *Snapshot) { s.DownloadsFailed++ })
}

// --- Notifications ---

// IncNotificationPublished records a delivered notification.
func (c *Collector) IncNotificationPublished() {
	c.update(func(s *Snapshot) { s.NotificationsPublished++ })
}

// IncNotificationFailed records a notification that could not be delivered.
func (c *Collector) IncNotificationFailed() {
	c.update(func(s *Snapshot) { s.NotificationsFailed++ })
}

// --- Snapshot ---

// Snapshot returns a point-in-time copy of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}
