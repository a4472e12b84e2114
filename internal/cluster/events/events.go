// Package events implements the Event Bus (spec §4.5): in-process fan-out
// of state-change events to subscribed observers, at-most-once and
// best-effort. Adapted from the teacher's sse.Hub broadcast/drop-on-overflow
// design, generalized from one fixed "channel" key to a single cluster-wide
// stream (this system has one logical observer feed, not per-user topics).
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/distcluster/coordinator/internal/logger"
)

// Type names the kind of state transition a Event carries (spec §4.5).
type Type string

const (
	TypeInitialStatus  Type = "initial_status"
	TypeNodeRegistered Type = "node_registered"
	TypeNodeOffline    Type = "node_offline"
	TypeJobCompleted   Type = "job_completed"
	TypeJobFailed      Type = "job_failed"
)

// Event is a self-contained structured transition notification.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data,omitempty"`

	// Remote marks an event that arrived from another coordinator process
	// via the cluster bus forwarder, as opposed to one raised locally.
	// Never serialized: it only exists to stop Publish from re-forwarding
	// an event that just came off the shared channel back onto it.
	Remote bool `json:"-"`
}

const subscriberBuffer = 32

// Subscriber is one observer's push channel. Outbound is bounded; a full
// buffer means the subscriber is slow and gets dropped, never retried.
type Subscriber struct {
	ID       uuid.UUID
	Outbound chan Event
	done     chan struct{}
	closeOne sync.Once
}

func (s *Subscriber) close() {
	s.closeOne.Do(func() {
		close(s.done)
		close(s.Outbound)
	})
}

// Done reports subscriber removal, so an HTTP handler streaming to a client
// can stop without racing a second close of Outbound.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Bus is the coordinator's single Event Bus instance.
type Bus struct {
	log *logger.Logger

	mu   sync.RWMutex
	subs map[*Subscriber]struct{}

	forwardMu sync.RWMutex
	forward   func(Event)
}

func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		log:  log.With("component", "EventBus"),
		subs: make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new observer and delivers it the given initial
// event (typically an initial_status snapshot) before returning, matching
// spec §4.5's "on subscription, the bus sends one initial_status event".
func (b *Bus) Subscribe(initial Event) *Subscriber {
	sub := &Subscriber{
		ID:       uuid.New(),
		Outbound: make(chan Event, subscriberBuffer),
		done:     make(chan struct{}),
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	sub.Outbound <- initial
	b.log.Debug("subscriber added", "subscriber_id", sub.ID)
	return sub
}

// Unsubscribe removes and closes a subscriber. Safe to call more than once
// and safe to call concurrently with Publish.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	_, existed := b.subs[sub]
	delete(b.subs, sub)
	b.mu.Unlock()
	if existed {
		sub.close()
		b.log.Debug("subscriber removed", "subscriber_id", sub.ID)
	}
}

// SetForwarder registers a hook invoked with every locally-raised event, so
// an optional cluster bus forwarder can republish it for other coordinator
// processes. fn may be nil to disable forwarding.
func (b *Bus) SetForwarder(fn func(Event)) {
	b.forwardMu.Lock()
	b.forward = fn
	b.forwardMu.Unlock()
}

// Publish fans an event out to every subscriber without blocking on any of
// them: a subscriber whose buffer is full is dropped silently and never
// retried (spec §4.5, §5 — a slow subscriber must never stall the
// Dispatcher or the monitors). A forwarder set via SetForwarder is called
// synchronously, after local delivery, so Publish returns only once it has. The send loop holds RLock for its entire
// duration, like the teacher's sse.Hub.Broadcast, so a concurrent
// Unsubscribe can never close a channel this loop is about to send on;
// subscribers found overflowing are unsubscribed only after RUnlock, since
// Unsubscribe needs the write lock.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	var overflowed []*Subscriber
	for sub := range b.subs {
		select {
		case sub.Outbound <- ev:
		default:
			b.log.Warn("dropping slow subscriber", "subscriber_id", sub.ID)
			overflowed = append(overflowed, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range overflowed {
		b.Unsubscribe(sub)
	}

	if !ev.Remote {
		b.forwardMu.RLock()
		fwd := b.forward
		b.forwardMu.RUnlock()
		if fwd != nil {
			fwd(ev)
		}
	}
}

// CloseAll tears down every subscriber, used on coordinator shutdown.
func (b *Bus) CloseAll() {
	b.mu.Lock()
	subs := make([]*Subscriber, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.subs = make(map[*Subscriber]struct{})
	b.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
}
