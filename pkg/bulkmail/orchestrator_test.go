package bulkmail_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"
)

type memLock struct {
	mu   sync.Mutex
	held bool
}

func (l *memLock) TryAcquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *memLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.held = false
	return nil
}

func newTestOrchestrator(mailer bulkmail.TemplatedMailer, outcomes bulkmail.OutcomeRepository, opts ...bulkmail.OrchestratorOption) (*bulkmail.Orchestrator, *bulkmail.Tracker, *bulkmail.Broadcaster) {
	tracker := bulkmail.NewTracker()
	broadcaster := bulkmail.NewBroadcaster(bulkmail.WithSubscriberBuffer(64))
	dispatcher := bulkmail.NewDispatcher(mailer, outcomes, bulkmail.NopGate{}, bulkmail.RetryPolicy{MaxAttempts: 1}, "")
	return bulkmail.NewOrchestrator(dispatcher, tracker, broadcaster), tracker, broadcaster
}

func TestOrchestratorProcessesBatchInOrder(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{}}
	outcomes := &memOutcomes{}
	orch, tracker, _ := newTestOrchestrator(mailer, outcomes)

	recipients := []bulkmail.Recipient{
		{Name: "A", Email: "a@example.com"},
		{Name: "B", Email: "b@example.com"},
		{Name: "C", Email: "c@example.com"},
	}

	processed, err := orch.Run(context.Background(), recipients)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if processed != 3 {
		t.Fatalf("processed: got %d, want 3", processed)
	}

	if got := []string{mailer.calls[0], mailer.calls[1], mailer.calls[2]}; got[0] != "a@example.com" || got[1] != "b@example.com" || got[2] != "c@example.com" {
		t.Fatalf("dispatch order: got %v", got)
	}

	snap := tracker.Snapshot()
	if snap.SentCount != 3 || snap.TotalEmails != 3 {
		t.Fatalf("final snapshot: got %d/%d, want 3/3", snap.SentCount, snap.TotalEmails)
	}
}

func TestOrchestratorBroadcastsEveryStep(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{"b@example.com": 5}}
	outcomes := &memOutcomes{}
	orch, _, broadcaster := newTestOrchestrator(mailer, outcomes)

	sub := broadcaster.Subscribe()
	defer broadcaster.Unsubscribe(sub)

	recipients := []bulkmail.Recipient{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	}
	if _, err := orch.Run(context.Background(), recipients); err != nil {
		t.Fatalf("run: %v", err)
	}

	// One broadcast for the reset plus one per recipient. Failures count
	// toward progress like successes.
	want := []bulkmail.ProgressSnapshot{
		{SentCount: 0, TotalEmails: 2},
		{SentCount: 1, TotalEmails: 2},
		{SentCount: 2, TotalEmails: 2},
	}
	for i, w := range want {
		var got bulkmail.ProgressSnapshot
		if err := json.Unmarshal(<-sub.C, &got); err != nil {
			t.Fatalf("payload %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("payload %d: got %+v, want %+v", i, got, w)
		}
	}
}

func TestOrchestratorEmptyBatch(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{}}
	outcomes := &memOutcomes{}
	orch, tracker, broadcaster := newTestOrchestrator(mailer, outcomes)

	sub := broadcaster.Subscribe()
	defer broadcaster.Unsubscribe(sub)

	processed, err := orch.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if processed != 0 {
		t.Fatalf("processed: got %d, want 0", processed)
	}

	var snap bulkmail.ProgressSnapshot
	if err := json.Unmarshal(<-sub.C, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.SentCount != 0 || snap.TotalEmails != 0 {
		t.Fatalf("snapshot: got %d/%d, want 0/0", snap.SentCount, snap.TotalEmails)
	}
	if final := tracker.Snapshot(); final.TotalEmails != 0 {
		t.Fatalf("tracker total: got %d, want 0", final.TotalEmails)
	}
}

func TestOrchestratorFailuresStillAdvanceProgress(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{
		"a@example.com": 5,
		"b@example.com": 5,
	}}
	outcomes := &memOutcomes{}
	orch, tracker, _ := newTestOrchestrator(mailer, outcomes)

	processed, err := orch.Run(context.Background(), []bulkmail.Recipient{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if processed != 2 {
		t.Fatalf("processed: got %d, want 2", processed)
	}

	snap := tracker.Snapshot()
	if snap.SentCount != 2 || snap.TotalEmails != 2 {
		t.Fatalf("snapshot: got %d/%d, want 2/2", snap.SentCount, snap.TotalEmails)
	}

	failed, err := outcomes.FindByStatus(context.Background(), bulkmail.OutcomeFailed)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(failed) != 2 {
		t.Fatalf("failed outcomes: got %d, want 2", len(failed))
	}
}

func TestOrchestratorDuplicateRecipientsAreNotDeduplicated(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{}}
	outcomes := &memOutcomes{}
	orch, _, _ := newTestOrchestrator(mailer, outcomes)

	processed, err := orch.Run(context.Background(), []bulkmail.Recipient{
		{Email: "dup@example.com"},
		{Email: "dup@example.com"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if processed != 2 {
		t.Fatalf("processed: got %d, want 2", processed)
	}
	if mailer.sendCount("dup@example.com") != 2 {
		t.Fatalf("sends: got %d, want 2", mailer.sendCount("dup@example.com"))
	}
}

func TestOrchestratorTagsOutcomesWithBatch(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{"b@example.com": 5}}
	outcomes := &memOutcomes{}
	orch, _, _ := newTestOrchestrator(mailer, outcomes)

	if _, err := orch.Run(context.Background(), []bulkmail.Recipient{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	first := outcomes.all()
	if len(first) != 2 {
		t.Fatalf("outcomes: got %d, want 2", len(first))
	}
	batch := first[0].BatchID
	if batch.IsEmpty() {
		t.Fatal("batch id is empty")
	}
	for i, rec := range first {
		if rec.BatchID != batch {
			t.Fatalf("record %d: batch %q, want %q", i, rec.BatchID, batch)
		}
	}

	if _, err := orch.Run(context.Background(), []bulkmail.Recipient{{Email: "c@example.com"}}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := outcomes.all()[2]
	if second.BatchID == batch {
		t.Fatalf("second run reused batch %q", batch)
	}
}

func TestOrchestratorBatchLockRejectsOverlap(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{}}
	outcomes := &memOutcomes{}

	lock := &memLock{held: true}
	tracker := bulkmail.NewTracker()
	broadcaster := bulkmail.NewBroadcaster()
	dispatcher := bulkmail.NewDispatcher(mailer, outcomes, bulkmail.NopGate{}, bulkmail.RetryPolicy{MaxAttempts: 1}, "")
	orch := bulkmail.NewOrchestrator(dispatcher, tracker, broadcaster, bulkmail.WithBatchLock(lock))

	_, err := orch.Run(context.Background(), []bulkmail.Recipient{{Email: "a@example.com"}})
	if err == nil {
		t.Fatal("expected batch-in-progress error")
	}

	var xerr *errx.Error
	if !errors.As(err, &xerr) {
		t.Fatalf("error type: got %T", err)
	}
	if xerr.HTTPStatus != 409 {
		t.Fatalf("http status: got %d, want 409", xerr.HTTPStatus)
	}
}

func TestOrchestratorReleasesLockAfterRun(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{}}
	outcomes := &memOutcomes{}

	lock := &memLock{}
	tracker := bulkmail.NewTracker()
	broadcaster := bulkmail.NewBroadcaster()
	dispatcher := bulkmail.NewDispatcher(mailer, outcomes, bulkmail.NopGate{}, bulkmail.RetryPolicy{MaxAttempts: 1}, "")
	orch := bulkmail.NewOrchestrator(dispatcher, tracker, broadcaster, bulkmail.WithBatchLock(lock))

	if _, err := orch.Run(context.Background(), []bulkmail.Recipient{{Email: "a@example.com"}}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := orch.Run(context.Background(), []bulkmail.Recipient{{Email: "b@example.com"}}); err != nil {
		t.Fatalf("second run after release: %v", err)
	}
}
