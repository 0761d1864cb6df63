package api

import (
	"context"
	"sync"
	"time"

	"github.com/hesham156/wafarle/pkg/cart"
	"go.uber.org/zap"
)

// summaryIdleTTL is how long a shopper's summary watcher survives without a
// request before it is stopped.
const summaryIdleTTL = 5 * time.Minute

// summaryWatchers keeps one live cart.Watcher per shopper behind the cart
// summary endpoint. The watcher holds the badge view current between
// requests: broadcast events trigger an immediate reload and the poll tick
// covers any signal that was missed.
type summaryWatchers struct {
	taxRate     float64
	interval    time.Duration
	broadcaster *cart.Broadcaster
	logger      *zap.Logger

	mu      sync.Mutex
	entries map[string]*summaryEntry
}

type summaryEntry struct {
	watcher  *cart.Watcher
	cancel   context.CancelFunc
	lastSeen time.Time
}

func newSummaryWatchers(taxRate float64, interval time.Duration, b *cart.Broadcaster, logger *zap.Logger) *summaryWatchers {
	return &summaryWatchers{
		taxRate:     taxRate,
		interval:    interval,
		broadcaster: b,
		logger:      logger,
		entries:     make(map[string]*summaryEntry),
	}
}

// Summary returns the current summary for owner, starting a watcher the
// first time an owner is seen. Watchers idle past summaryIdleTTL are
// stopped on the way through.
func (sw *summaryWatchers) Summary(ctx context.Context, owner string, load func(context.Context) ([]cart.Item, error)) cart.Summary {
	sw.mu.Lock()
	now := time.Now()
	for id, entry := range sw.entries {
		if id != owner && now.Sub(entry.lastSeen) > summaryIdleTTL {
			entry.cancel()
			delete(sw.entries, id)
		}
	}

	entry, started := sw.entries[owner]
	if !started {
		watchCtx, cancel := context.WithCancel(context.Background())
		entry = &summaryEntry{
			watcher: cart.NewWatcher(owner, load, sw.taxRate, sw.broadcaster, sw.interval, sw.logger),
			cancel:  cancel,
		}
		sw.entries[owner] = entry
		go entry.watcher.Run(watchCtx)
	}
	entry.lastSeen = now
	sw.mu.Unlock()

	if !started {
		// First request for this shopper: load synchronously instead of
		// racing the watcher goroutine's initial refresh.
		entry.watcher.Refresh(ctx)
	}
	return entry.watcher.Summary()
}

// Stop cancels every running watcher.
func (sw *summaryWatchers) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	for id, entry := range sw.entries {
		entry.cancel()
		delete(sw.entries, id)
	}
}
