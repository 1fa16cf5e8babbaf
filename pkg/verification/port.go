package verification

import (
	"context"
	"time"
)

// Store persists pending verification codes, expiring them with their TTL.
type Store interface {
	// Save stores a code, replacing any pending code for the same email
	// and purpose.
	Save(ctx context.Context, code *Code, ttl time.Duration) error

	// Find returns the pending code for an email and purpose.
	Find(ctx context.Context, email string, purpose Purpose) (*Code, error)

	// Delete removes a pending code.
	Delete(ctx context.Context, email string, purpose Purpose) error
}

// CodeSender delivers a freshly issued code to its recipient.
type CodeSender interface {
	SendCode(ctx context.Context, email string, code string) error
}
