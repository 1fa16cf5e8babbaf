package bulkmail

import (
	"context"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/notifx"
)

// OutcomeRepository is the append-only outcome log. Append never updates or
// deletes; retried recipients produce new records.
type OutcomeRepository interface {
	Append(ctx context.Context, record OutcomeRecord) error
	FindByStatus(ctx context.Context, status OutcomeStatus) ([]OutcomeRecord, error)
}

// TemplatedMailer sends templated email. Satisfied by *notifx.Client.
type TemplatedMailer interface {
	SendTemplatedEmail(ctx context.Context, templateName string, data interface{}, message notifx.EmailMessage, opts ...notifx.Option) error
}

// BatchLock guards against overlapping batch runs across processes.
type BatchLock interface {
	// TryAcquire returns false without blocking when the lock is held.
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}
