package bulkmail

import "sync"

// Tracker holds the mutable progress counters for the current batch.
// A processed recipient counts toward SentCount whether delivery succeeded
// or failed; SentCount == TotalEmails means the batch is complete.
type Tracker struct {
	mu    sync.Mutex
	sent  int
	total int
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Reset starts a new batch of the given size. Sent resets to zero.
func (t *Tracker) Reset(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sent = 0
	t.total = total
}

// Increment records one processed recipient.
func (t *Tracker) Increment() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sent++
}

// Snapshot returns a consistent view of the counters.
func (t *Tracker) Snapshot() ProgressSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return ProgressSnapshot{
		SentCount:   t.sent,
		TotalEmails: t.total,
	}
}
