package bulkmail

import (
	"context"
	"time"
)

// Gate throttles dispatches. The dispatcher waits on the gate once before
// every recipient, including the first.
type Gate interface {
	Wait(ctx context.Context) error
}

// FixedIntervalGate waits a fixed duration before each send.
type FixedIntervalGate struct {
	interval time.Duration
}

func NewFixedIntervalGate(interval time.Duration) *FixedIntervalGate {
	return &FixedIntervalGate{interval: interval}
}

func (g *FixedIntervalGate) Wait(ctx context.Context) error {
	if g.interval <= 0 {
		return nil
	}

	timer := time.NewTimer(g.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NopGate never waits. Used in tests and for unthrottled batches.
type NopGate struct{}

func (NopGate) Wait(ctx context.Context) error { return nil }
