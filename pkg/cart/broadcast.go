package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hesham156/wafarle/pkg/repository"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel carrying cart change signals between
// instances.
const Channel = "cart:updated"

// Event announces that a cart changed. Owner is the guest or user id whose
// cart it was, Origin identifies the emitting instance so remote forwarding
// does not echo events back to their source.
type Event struct {
	Owner  string    `json:"owner"`
	Action string    `json:"action"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// Broadcaster fans cart change signals out to every subscriber. Delivery is
// fire-and-forget: a full subscriber channel is skipped rather than blocking
// the mutation that triggered the event. When constructed with a Redis
// repository it also publishes every local event and, via Run, forwards
// events published by other instances to local subscribers.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int

	redis  *repository.RedisRepository
	origin string
	logger *zap.Logger
}

func NewBroadcaster(rdb *repository.RedisRepository, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[int]chan Event),
		redis:  rdb,
		origin: uuid.NewString(),
		logger: logger,
	}
}

// Subscribe registers a listener. The returned cancel function must be
// called when the listener goes away.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Notify announces a cart change to local subscribers and, if Redis is
// wired, to other instances. Publish failures are logged and swallowed; a
// missed signal is compensated by the polling fallback, never by failing the
// mutation.
func (b *Broadcaster) Notify(ctx context.Context, owner, action string) {
	ev := Event{
		Owner:  owner,
		Action: action,
		Origin: b.origin,
		At:     time.Now(),
	}
	b.fanOut(ev)

	if b.redis != nil {
		if err := b.redis.Publish(ctx, Channel, ev); err != nil {
			b.logger.Warn("Failed to publish cart event",
				zap.String("owner", owner), zap.String("action", action), zap.Error(err))
		}
	}
}

func (b *Broadcaster) fanOut(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Run consumes the Redis channel and forwards events from other instances to
// local subscribers. Blocks until ctx is cancelled. No-op without Redis.
func (b *Broadcaster) Run(ctx context.Context) {
	if b.redis == nil {
		return
	}
	pubsub := b.redis.Subscribe(ctx, Channel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Warn("Dropping malformed cart event", zap.Error(err))
				continue
			}
			if ev.Origin == b.origin {
				continue
			}
			b.fanOut(ev)
		}
	}
}

// Summary is the badge view of a cart: unit count and total including tax.
type Summary struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Watcher keeps a cart summary current for one owner. It reloads on every
// broadcast event for that owner and additionally on a fixed tick, so a
// missed event only leaves the summary stale until the next poll.
type Watcher struct {
	owner       string
	load        func(context.Context) ([]Item, error)
	taxRate     float64
	broadcaster *Broadcaster
	interval    time.Duration
	logger      *zap.Logger

	mu      sync.RWMutex
	summary Summary
}

func NewWatcher(owner string, load func(context.Context) ([]Item, error), taxRate float64, b *Broadcaster, interval time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{
		owner:       owner,
		load:        load,
		taxRate:     taxRate,
		broadcaster: b,
		interval:    interval,
		logger:      logger,
	}
}

// Summary returns the last loaded summary.
func (w *Watcher) Summary() Summary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.summary
}

// Run blocks until ctx is cancelled, refreshing the summary on broadcast
// events for this owner and on every poll tick.
func (w *Watcher) Run(ctx context.Context) {
	events, cancel := w.broadcaster.Subscribe()
	defer cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Owner != w.owner {
				continue
			}
			w.Refresh(ctx)
		case <-ticker.C:
			w.Refresh(ctx)
		}
	}
}

// Refresh reloads the summary immediately. Run calls it on every event and
// tick; the summary endpoint calls it once when a watcher first starts so
// the first response is not empty.
func (w *Watcher) Refresh(ctx context.Context) {
	items, err := w.load(ctx)
	if err != nil {
		w.logger.Warn("Failed to refresh cart summary",
			zap.String("owner", w.owner), zap.Error(err))
		return
	}
	totals := CalculateTotals(items, w.taxRate)

	w.mu.Lock()
	w.summary = Summary{Count: Count(items), Total: totals.Total}
	w.mu.Unlock()
}
