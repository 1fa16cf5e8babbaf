package config

import "time"

// BulkMailConfig configures the bulk email dispatch pipeline.
type BulkMailConfig struct {
	// SendDelay is the fixed pre-send delay applied before every dispatch,
	// used as a batch-wide send-rate throttle.
	SendDelay time.Duration

	// MaxAttempts is the number of delivery attempts per recipient.
	MaxAttempts int

	// SubscriberBuffer is the per-subscriber progress channel capacity.
	SubscriberBuffer int

	// PruneSubscribers enables dropping subscribers whose channel cannot
	// accept a progress write. Off keeps the historical fire-and-forget
	// behavior.
	PruneSubscribers bool

	// BatchLock enables the Redis mutual-exclusion lock so only one batch
	// can run at a time. Off, concurrent batches share counters
	// last-writer-wins.
	BatchLock    bool
	BatchLockTTL time.Duration
}

func loadBulkMailConfig() BulkMailConfig {
	return BulkMailConfig{
		SendDelay:        getEnvDuration("BULKMAIL_SEND_DELAY", 2*time.Second),
		MaxAttempts:      getEnvInt("BULKMAIL_MAX_ATTEMPTS", 3),
		SubscriberBuffer: getEnvInt("BULKMAIL_SUBSCRIBER_BUFFER", 8),
		PruneSubscribers: getEnvBool("BULKMAIL_PRUNE_SUBSCRIBERS", false),
		BatchLock:        getEnvBool("BULKMAIL_BATCH_LOCK", false),
		BatchLockTTL:     getEnvDuration("BULKMAIL_BATCH_LOCK_TTL", 30*time.Minute),
	}
}
