package events

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Bus is the process-wide event registry: per-room subscriber callbacks
// plus liveness bookkeeping for open push connections. One Bus is built
// at startup and handed to whatever needs it; there is no package-level
// instance.
type Bus struct {
	log *zap.Logger

	mu     sync.RWMutex
	nextID int64
	subs   map[string]map[int64]*subscription
	conns  map[string]*connection
}

type subscription struct {
	// closed is re-checked immediately before every callback invocation,
	// so a subscriber can unsubscribe itself from inside its own
	// callback without blocking the emit that is delivering to it. No
	// lock is held across fn: callbacks may emit or unsubscribe freely.
	closed atomic.Bool
	fn     func(Event)
}

type connection struct {
	roomID        string
	lastHeartbeat time.Time
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		log:   log,
		subs:  map[string]map[int64]*subscription{},
		conns: map[string]*connection{},
	}
}

// Subscribe registers fn for every event emitted to roomID and returns
// an idempotent unsubscribe func. After unsubscribe returns, fn will not
// be called again.
func (b *Bus) Subscribe(roomID string, fn func(Event)) func() {
	sub := &subscription{fn: fn}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[roomID] == nil {
		b.subs[roomID] = map[int64]*subscription{}
	}
	b.subs[roomID][id] = sub
	b.mu.Unlock()

	return func() {
		sub.closed.Store(true)

		b.mu.Lock()
		if room := b.subs[roomID]; room != nil {
			delete(room, id)
			if len(room) == 0 {
				delete(b.subs, roomID)
			}
		}
		b.mu.Unlock()
	}
}

// Emit delivers e synchronously to every current subscriber of
// e.RoomID. A panicking callback is logged and does not stop delivery
// to the rest.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	targets := make([]*subscription, 0, len(b.subs[e.RoomID]))
	for _, sub := range b.subs[e.RoomID] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		b.deliver(sub, e)
	}
}

func (b *Bus) deliver(sub *subscription, e Event) {
	if sub.closed.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("subscriber callback panicked",
				zap.String("room", e.RoomID),
				zap.String("event", string(e.Type)),
				zap.Any("panic", r))
		}
	}()
	sub.fn(e)
}

func (b *Bus) ListenerCount(roomID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[roomID])
}

// RegisterConnection tracks a live push channel independently of its
// subscription.
func (b *Bus) RegisterConnection(roomID, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[connID] = &connection{roomID: roomID, lastHeartbeat: time.Now()}
}

func (b *Bus) UnregisterConnection(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conns, connID)
}

// UpdateHeartbeat refreshes connID's liveness marker and reports whether
// the connection is still registered.
func (b *Bus) UpdateHeartbeat(connID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.conns[connID]
	if !ok {
		return false
	}
	c.lastHeartbeat = time.Now()
	return true
}

func (b *Bus) ConnectionCount(roomID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, c := range b.conns {
		if c.roomID == roomID {
			n++
		}
	}
	return n
}

// Close drops every subscription and connection. Emit on a closed bus
// is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, room := range b.subs {
		for _, sub := range room {
			sub.closed.Store(true)
		}
	}
	b.subs = map[string]map[int64]*subscription{}
	b.conns = map[string]*connection{}
}
