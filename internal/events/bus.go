// Package events fans committed appointment changes out to connected
// observers.
//
// Publish never blocks. Every subscriber owns a bounded buffer; when it is
// full the subscriber is evicted and its channel closed, and the observer is
// expected to reconnect and re-fetch state. Events carrying a sequence
// number are delivered strictly in sequence order, so each subscriber sees
// changes in commit order even when publishers race after releasing the
// write lock. A Bus sequences events from a single producer. If a sequence
// number never arrives, at most WithMaxPending later events are held back;
// beyond that the gap is skipped and delivery resumes from the lowest
// pending event.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

// Metrics receives bus measurements.
type Metrics interface {
	Subscribers(n int)
	Published(kind string)
	Evicted()
}

type nopMetrics struct{}

func (nopMetrics) Subscribers(int)  {}
func (nopMetrics) Published(string) {}
func (nopMetrics) Evicted()         {}

type Option func(*Bus)

// WithBufferSize sets the per subscriber buffer (default: 64).
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufSize = n
		}
	}
}

// WithMaxPending bounds how many out of order events wait for a missing
// sequence number (default: 1024).
func WithMaxPending(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxPending = n
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(b *Bus) {
		if m != nil {
			b.metrics = m
		}
	}
}

type Subscription struct {
	ID    uuid.UUID
	ch    chan Message
	admin atomic.Bool
	bus   *Bus
}

// C is closed when the subscription ends, either by Close or eviction.
func (s *Subscription) C() <-chan Message {
	return s.ch
}

// JoinAdmin adds the admin notification stream to this subscription.
func (s *Subscription) JoinAdmin() {
	s.admin.Store(true)
}

func (s *Subscription) IsAdmin() bool {
	return s.admin.Load()
}

func (s *Subscription) Close() {
	s.bus.Unsubscribe(s)
}

type Bus struct {
	mu      sync.Mutex
	subs    map[uuid.UUID]*Subscription
	closed  bool
	next    uint64
	pending map[uint64]appointment.ChangeEvent

	bufSize    int
	maxPending int
	metrics    Metrics
}

func New(opts ...Option) *Bus {
	b := &Bus{
		subs:    make(map[uuid.UUID]*Subscription),
		next:    1,
		pending: make(map[uint64]appointment.ChangeEvent),
		bufSize:    64,
		maxPending: 1024,
		metrics:    nopMetrics{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new observer. It only receives events published
// after this call returns.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{
		ID:  uuid.New(),
		ch:  make(chan Message, b.bufSize),
		bus: b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(s.ch)
		return s
	}
	b.subs[s.ID] = s
	b.metrics.Subscribers(len(b.subs))
	return s
}

func (b *Bus) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(s)
}

func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish hands ev to every current subscriber. Events with Seq 0 are
// delivered immediately; sequenced events are held until all lower
// sequence numbers have been delivered.
func (b *Bus) Publish(ev appointment.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	if ev.Seq == 0 {
		b.deliverLocked(ev)
		return
	}
	if ev.Seq < b.next {
		return // already delivered
	}

	b.pending[ev.Seq] = ev
	if len(b.pending) > b.maxPending {
		b.next = b.lowestPendingLocked()
	}
	for {
		next, ok := b.pending[b.next]
		if !ok {
			return
		}
		delete(b.pending, b.next)
		b.next++
		b.deliverLocked(next)
	}
}

func (b *Bus) lowestPendingLocked() uint64 {
	var lowest uint64
	for seq := range b.pending {
		if lowest == 0 || seq < lowest {
			lowest = seq
		}
	}
	return lowest
}

// Close ends every subscription and drops further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		b.removeLocked(s)
	}
}

func (b *Bus) deliverLocked(ev appointment.ChangeEvent) {
	b.metrics.Published(string(ev.Kind))

	change := ev
	raw := Message{Channel: ChannelAppointments, Change: &change}

	var admin *Message
	for _, s := range b.subs {
		if !b.sendLocked(s, raw) {
			continue
		}
		if !s.IsAdmin() {
			continue
		}
		if admin == nil {
			n := notificationFor(ev)
			admin = &Message{Channel: ChannelAdmin, Notification: &n}
		}
		b.sendLocked(s, *admin)
	}
}

// sendLocked enqueues m for s, evicting s if its buffer is full.
func (b *Bus) sendLocked(s *Subscription, m Message) bool {
	select {
	case s.ch <- m:
		return true
	default:
		b.removeLocked(s)
		b.metrics.Evicted()
		return false
	}
}

func (b *Bus) removeLocked(s *Subscription) {
	if _, ok := b.subs[s.ID]; !ok {
		return
	}
	delete(b.subs, s.ID)
	close(s.ch)
	b.metrics.Subscribers(len(b.subs))
}

var _ appointment.Publisher = (*Bus)(nil)
