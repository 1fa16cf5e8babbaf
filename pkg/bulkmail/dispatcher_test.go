package bulkmail_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/kernel"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/notifx"
)

var testBatch = kernel.NewBatchID("8c2f8e0a-6f5f-4f30-9f1e-0a4c8d9b1a11")

// scriptedMailer fails the first failures[email] sends to an address, then
// succeeds.
type scriptedMailer struct {
	mu       sync.Mutex
	failures map[string]int
	calls    []string
}

func (m *scriptedMailer) SendTemplatedEmail(ctx context.Context, templateName string, data interface{}, message notifx.EmailMessage, opts ...notifx.Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := message.To[0]
	m.calls = append(m.calls, email)
	if m.failures[email] > 0 {
		m.failures[email]--
		return errors.New("smtp: transient failure")
	}
	return nil
}

func (m *scriptedMailer) sendCount(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.calls {
		if e == email {
			n++
		}
	}
	return n
}

type memOutcomes struct {
	mu      sync.Mutex
	records []bulkmail.OutcomeRecord
	fail    bool
}

func (r *memOutcomes) Append(ctx context.Context, record bulkmail.OutcomeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail {
		return errors.New("db: connection reset")
	}
	r.records = append(r.records, record)
	return nil
}

func (r *memOutcomes) FindByStatus(ctx context.Context, status bulkmail.OutcomeStatus) ([]bulkmail.OutcomeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []bulkmail.OutcomeRecord
	for _, rec := range r.records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memOutcomes) all() []bulkmail.OutcomeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]bulkmail.OutcomeRecord, len(r.records))
	copy(out, r.records)
	return out
}

func TestDispatchSuccessAppendsSentOutcome(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{}}
	outcomes := &memOutcomes{}
	d := bulkmail.NewDispatcher(mailer, outcomes, bulkmail.NopGate{}, bulkmail.DefaultRetryPolicy(), "")

	rec := d.Dispatch(context.Background(), testBatch, bulkmail.Recipient{Name: "Ada", Email: "ada@example.com", Code: "BC-001"})

	if rec.Status != bulkmail.OutcomeSent {
		t.Fatalf("status: got %q, want %q", rec.Status, bulkmail.OutcomeSent)
	}
	if rec.ErrorDetail != "" {
		t.Fatalf("unexpected error detail: %q", rec.ErrorDetail)
	}
	if got := len(outcomes.all()); got != 1 {
		t.Fatalf("outcome records: got %d, want 1", got)
	}
	if mailer.sendCount("ada@example.com") != 1 {
		t.Fatalf("send attempts: got %d, want 1", mailer.sendCount("ada@example.com"))
	}
}

func TestDispatchRetriesThenSucceeds(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{"flaky@example.com": 2}}
	outcomes := &memOutcomes{}
	d := bulkmail.NewDispatcher(mailer, outcomes, bulkmail.NopGate{}, bulkmail.RetryPolicy{MaxAttempts: 3}, "")

	rec := d.Dispatch(context.Background(), testBatch, bulkmail.Recipient{Email: "flaky@example.com"})

	if rec.Status != bulkmail.OutcomeSent {
		t.Fatalf("status: got %q, want %q", rec.Status, bulkmail.OutcomeSent)
	}
	if mailer.sendCount("flaky@example.com") != 3 {
		t.Fatalf("send attempts: got %d, want 3", mailer.sendCount("flaky@example.com"))
	}
	if got := len(outcomes.all()); got != 1 {
		t.Fatalf("outcome records: got %d, want exactly 1 despite retries", got)
	}
}

func TestDispatchExhaustedRetriesAppendsFailedOutcome(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{"down@example.com": 10}}
	outcomes := &memOutcomes{}
	d := bulkmail.NewDispatcher(mailer, outcomes, bulkmail.NopGate{}, bulkmail.RetryPolicy{MaxAttempts: 3}, "")

	rec := d.Dispatch(context.Background(), testBatch, bulkmail.Recipient{Name: "Bob", Email: "down@example.com", Code: "BC-002"})

	if rec.Status != bulkmail.OutcomeFailed {
		t.Fatalf("status: got %q, want %q", rec.Status, bulkmail.OutcomeFailed)
	}
	if rec.ErrorDetail == "" {
		t.Fatal("failed outcome missing error detail")
	}
	if mailer.sendCount("down@example.com") != 3 {
		t.Fatalf("send attempts: got %d, want 3", mailer.sendCount("down@example.com"))
	}

	got := outcomes.all()
	if len(got) != 1 {
		t.Fatalf("outcome records: got %d, want 1", len(got))
	}
	if got[0].Name != "Bob" || got[0].Code != "BC-002" {
		t.Fatalf("outcome dropped recipient fields: %+v", got[0])
	}
}

func TestDispatchOutcomeWriteFailureStillReturnsRecord(t *testing.T) {
	mailer := &scriptedMailer{failures: map[string]int{}}
	outcomes := &memOutcomes{fail: true}
	d := bulkmail.NewDispatcher(mailer, outcomes, bulkmail.NopGate{}, bulkmail.DefaultRetryPolicy(), "")

	rec := d.Dispatch(context.Background(), testBatch, bulkmail.Recipient{Email: "ada@example.com"})
	if rec.Status != bulkmail.OutcomeSent {
		t.Fatalf("status: got %q, want %q", rec.Status, bulkmail.OutcomeSent)
	}
}

func TestFixedIntervalGateWaits(t *testing.T) {
	gate := bulkmail.NewFixedIntervalGate(30 * time.Millisecond)

	start := time.Now()
	if err := gate.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("gate returned after %v, want at least 30ms", elapsed)
	}
}

func TestFixedIntervalGateHonorsContext(t *testing.T) {
	gate := bulkmail.NewFixedIntervalGate(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := gate.Wait(ctx); err == nil {
		t.Fatal("expected context error, got nil")
	}
}
