package bulkmail

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/kernel"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/logx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/notifx"
)

// DefaultMaxAttempts is the number of delivery attempts per recipient when
// the policy does not specify one.
const DefaultMaxAttempts = 3

// RetryPolicy controls per-recipient delivery attempts. Backoff, when set,
// returns the pause before retry attempt+1; a nil Backoff retries
// immediately.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts}
}

// Dispatcher sends one email per invocation and appends exactly one outcome
// record, sent or failed, for it.
type Dispatcher struct {
	mailer   TemplatedMailer
	outcomes OutcomeRepository
	gate     Gate
	policy   RetryPolicy
	subject  string
}

func NewDispatcher(mailer TemplatedMailer, outcomes OutcomeRepository, gate Gate, policy RetryPolicy, subject string) *Dispatcher {
	if gate == nil {
		gate = NopGate{}
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &Dispatcher{
		mailer:   mailer,
		outcomes: outcomes,
		gate:     gate,
		policy:   policy,
		subject:  subject,
	}
}

// Dispatch waits on the gate, attempts delivery up to MaxAttempts times and
// logs the outcome tagged with the running batch. It always returns the
// appended record; delivery failure is a recorded outcome, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, batch kernel.BatchID, rcpt Recipient) OutcomeRecord {
	if err := d.gate.Wait(ctx); err != nil {
		logx.WithError(err).WithField("email", rcpt.Email).Warn("bulkmail: send gate interrupted")
	}

	var lastErr error
	for attempt := 1; attempt <= d.policy.MaxAttempts; attempt++ {
		message := notifx.EmailMessage{
			To:      []string{rcpt.Email},
			Subject: d.subject,
		}

		err := d.mailer.SendTemplatedEmail(ctx, NotificationTemplate, rcpt, message)
		if err == nil {
			return d.record(ctx, batch, rcpt, OutcomeSent, "")
		}

		lastErr = err
		logx.WithError(err).WithFields(logx.Fields{
			"email":   rcpt.Email,
			"attempt": attempt,
		}).Warn("bulkmail: delivery attempt failed")

		if d.policy.Backoff != nil && attempt < d.policy.MaxAttempts {
			time.Sleep(d.policy.Backoff(attempt))
		}
	}

	return d.record(ctx, batch, rcpt, OutcomeFailed, lastErr.Error())
}

func (d *Dispatcher) record(ctx context.Context, batch kernel.BatchID, rcpt Recipient, status OutcomeStatus, detail string) OutcomeRecord {
	rec := OutcomeRecord{
		ID:          uuid.NewString(),
		BatchID:     batch,
		Name:        rcpt.Name,
		Email:       rcpt.Email,
		Code:        rcpt.Code,
		Status:      status,
		ErrorDetail: detail,
		CreatedAt:   time.Now().UTC(),
	}

	// An outcome write failure must not abort the batch; the remaining
	// recipients still get their mail.
	if err := d.outcomes.Append(ctx, rec); err != nil {
		logx.WithError(err).WithFields(logx.Fields{
			"email":  rcpt.Email,
			"status": status,
		}).Error("bulkmail: failed to append outcome record")
	}

	return rec
}
