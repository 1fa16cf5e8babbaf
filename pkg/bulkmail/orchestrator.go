package bulkmail

import (
	"context"

	"github.com/google/uuid"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/kernel"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/logx"
)

// Orchestrator drives one batch: it resets the tracker, dispatches
// recipients strictly in order, one at a time, and broadcasts a progress
// snapshot after the reset and after every recipient.
type Orchestrator struct {
	dispatcher  *Dispatcher
	tracker     *Tracker
	broadcaster *Broadcaster
	lock        BatchLock
}

type OrchestratorOption func(*Orchestrator)

// WithBatchLock rejects a batch while another one holds the lock.
func WithBatchLock(lock BatchLock) OrchestratorOption {
	return func(o *Orchestrator) {
		o.lock = lock
	}
}

func NewOrchestrator(dispatcher *Dispatcher, tracker *Tracker, broadcaster *Broadcaster, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		dispatcher:  dispatcher,
		tracker:     tracker,
		broadcaster: broadcaster,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes the batch to completion and returns the number of recipients
// processed. An empty batch resets the tracker to 0/0 and completes
// immediately.
func (o *Orchestrator) Run(ctx context.Context, recipients []Recipient) (int, error) {
	if o.lock != nil {
		ok, err := o.lock.TryAcquire(ctx)
		if err != nil {
			return 0, ErrBatchLockFailed(err)
		}
		if !ok {
			return 0, ErrBatchInProgress()
		}
		defer func() {
			if err := o.lock.Release(context.WithoutCancel(ctx)); err != nil {
				logx.WithError(err).Warn("bulkmail: failed to release batch lock")
			}
		}()
	}

	batch := kernel.NewBatchID(uuid.NewString())

	o.tracker.Reset(len(recipients))
	o.broadcaster.Broadcast(o.tracker.Snapshot())

	sent := 0
	for _, rcpt := range recipients {
		rec := o.dispatcher.Dispatch(ctx, batch, rcpt)
		if rec.Status == OutcomeSent {
			sent++
		}

		o.tracker.Increment()
		o.broadcaster.Broadcast(o.tracker.Snapshot())
	}

	logx.WithFields(logx.Fields{
		"batch":     batch.String(),
		"total":     len(recipients),
		"delivered": sent,
		"failed":    len(recipients) - sent,
	}).Info("bulkmail: batch complete")

	return len(recipients), nil
}
