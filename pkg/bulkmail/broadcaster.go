package bulkmail

import (
	"encoding/json"
	"sync"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/logx"
)

const defaultSubscriberBuffer = 8

// Subscriber is one listener on the progress feed. The channel carries
// JSON-encoded ProgressSnapshot payloads and is closed on Unsubscribe.
type Subscriber struct {
	C chan []byte
}

// Broadcaster fans progress snapshots out to subscribers. Sends never block:
// a subscriber whose buffer is full misses that update and catches up on the
// next one. With auto-prune enabled, a full subscriber is unsubscribed
// instead.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	buffer int
	prune  bool
}

type BroadcasterOption func(*Broadcaster)

// WithSubscriberBuffer sets the per-subscriber channel capacity.
func WithSubscriberBuffer(n int) BroadcasterOption {
	return func(b *Broadcaster) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithAutoPrune drops subscribers that cannot keep up instead of skipping
// their updates.
func WithAutoPrune() BroadcasterOption {
	return func(b *Broadcaster) {
		b.prune = true
	}
}

func NewBroadcaster(opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		subs:   make(map[*Subscriber]struct{}),
		buffer: defaultSubscriberBuffer,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Broadcaster) Subscribe() *Subscriber {
	s := &Subscriber{C: make(chan []byte, b.buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[s] = struct{}{}
	return s
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call
// more than once for the same subscriber.
func (b *Broadcaster) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.C)
	}
}

// Broadcast pushes a snapshot to every subscriber.
func (b *Broadcaster) Broadcast(snapshot ProgressSnapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		logx.WithError(err).Error("bulkmail: failed to encode progress snapshot")
		return
	}

	var stale []*Subscriber

	b.mu.RLock()
	for s := range b.subs {
		select {
		case s.C <- payload:
		default:
			if b.prune {
				stale = append(stale, s)
			}
		}
	}
	b.mu.RUnlock()

	for _, s := range stale {
		b.Unsubscribe(s)
	}
}

// Count returns the number of active subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}
