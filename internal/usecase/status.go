package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/csera5/BlockchainTech/internal/domain"
)

// PipelineStatus is the live view of one certification request, served by
// the status endpoint.
type PipelineStatus struct {
	RequestID   string
	Fingerprint string
	Stage       domain.Stage
	ContentID   string
	TxID        string
	Error       string
	FailedStage domain.Stage
	UpdatedAt   time.Time
}

// StatusTracker records stage transitions in process memory. Terminal
// entries older than maxAge are collected on write.
type StatusTracker struct {
	mu      sync.Mutex
	entries map[string]PipelineStatus
	maxAge  time.Duration
	now     func() time.Time
}

func NewStatusTracker(maxAge time.Duration) *StatusTracker {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &StatusTracker{
		entries: make(map[string]PipelineStatus),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

func (t *StatusTracker) OnStage(ctx context.Context, update StageUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := t.entries[update.RequestID]
	entry.RequestID = update.RequestID
	entry.Stage = update.Stage
	entry.UpdatedAt = update.At
	if update.Fingerprint != "" {
		entry.Fingerprint = update.Fingerprint
	}
	if update.ContentID != "" {
		entry.ContentID = update.ContentID
	}
	if update.TxID != "" {
		entry.TxID = update.TxID
	}
	if update.Error != "" {
		entry.Error = update.Error
		entry.FailedStage = update.FailedStage
	}
	t.entries[update.RequestID] = entry

	t.gc()
}

func (t *StatusTracker) Get(requestID string) (PipelineStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[requestID]
	return entry, ok
}

func (t *StatusTracker) gc() {
	cutoff := t.now().Add(-t.maxAge)
	for id, entry := range t.entries {
		if entry.Stage.Terminal() && entry.UpdatedAt.Before(cutoff) {
			delete(t.entries, id)
		}
	}
}

var _ ProgressSink = (*StatusTracker)(nil)
