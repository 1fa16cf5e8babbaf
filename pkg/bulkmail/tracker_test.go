package bulkmail_test

import (
	"sync"
	"testing"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail"
)

func TestTrackerResetAndIncrement(t *testing.T) {
	tracker := bulkmail.NewTracker()

	tracker.Reset(5)
	snap := tracker.Snapshot()
	if snap.SentCount != 0 || snap.TotalEmails != 5 {
		t.Fatalf("after reset: got %d/%d, want 0/5", snap.SentCount, snap.TotalEmails)
	}

	tracker.Increment()
	tracker.Increment()
	snap = tracker.Snapshot()
	if snap.SentCount != 2 || snap.TotalEmails != 5 {
		t.Fatalf("after two increments: got %d/%d, want 2/5", snap.SentCount, snap.TotalEmails)
	}
}

func TestTrackerResetClearsPreviousBatch(t *testing.T) {
	tracker := bulkmail.NewTracker()

	tracker.Reset(3)
	tracker.Increment()
	tracker.Increment()
	tracker.Increment()

	tracker.Reset(10)
	snap := tracker.Snapshot()
	if snap.SentCount != 0 || snap.TotalEmails != 10 {
		t.Fatalf("after second reset: got %d/%d, want 0/10", snap.SentCount, snap.TotalEmails)
	}
}

func TestTrackerConcurrentIncrements(t *testing.T) {
	tracker := bulkmail.NewTracker()
	tracker.Reset(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Increment()
		}()
	}
	wg.Wait()

	snap := tracker.Snapshot()
	if snap.SentCount != 100 {
		t.Fatalf("got %d increments, want 100", snap.SentCount)
	}
}
