package cart

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBroadcasterFansOutToAllSubscribers(t *testing.T) {
	b := NewBroadcaster(nil, zap.NewNop())

	first, cancelFirst := b.Subscribe()
	defer cancelFirst()
	second, cancelSecond := b.Subscribe()
	defer cancelSecond()

	b.Notify(context.Background(), "u1", ActionAdd)

	for _, ch := range []<-chan Event{first, second} {
		select {
		case ev := <-ch:
			assert.Equal(t, "u1", ev.Owner)
			assert.Equal(t, ActionAdd, ev.Action)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBroadcasterCancelStopsDelivery(t *testing.T) {
	b := NewBroadcaster(nil, zap.NewNop())

	events, cancel := b.Subscribe()
	cancel()

	// Channel is closed after cancel; Notify must not panic.
	b.Notify(context.Background(), "u1", ActionAdd)
	_, open := <-events
	assert.False(t, open)
}

func TestBroadcasterSkipsFullSubscriber(t *testing.T) {
	b := NewBroadcaster(nil, zap.NewNop())

	events, cancel := b.Subscribe()
	defer cancel()

	// Overflow the buffer; Notify must never block the mutation path.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Notify(context.Background(), "u1", ActionAdd)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full subscriber")
	}
	assert.NotEmpty(t, events)
}

func TestWatcherRefreshesOnEvent(t *testing.T) {
	b := NewBroadcaster(nil, zap.NewNop())

	var mu sync.Mutex
	items := []Item{}
	load := func(ctx context.Context) ([]Item, error) {
		mu.Lock()
		defer mu.Unlock()
		out := make([]Item, len(items))
		copy(out, items)
		return out, nil
	}

	w := NewWatcher("u1", load, 0.15, b, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool {
		return w.Summary().Count == 0
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	items = []Item{{ID: "i1", ProductID: "p1", Quantity: 2, Product: ProductInfo{ID: "p1", Price: 100}}}
	mu.Unlock()
	b.Notify(ctx, "u1", ActionAdd)

	require.Eventually(t, func() bool {
		s := w.Summary()
		return s.Count == 2 && math.Abs(s.Total-230) < 1e-6
	}, time.Second, 5*time.Millisecond)
}

func TestWatcherIgnoresOtherOwners(t *testing.T) {
	b := NewBroadcaster(nil, zap.NewNop())

	var calls int
	var mu sync.Mutex
	load := func(ctx context.Context) ([]Item, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return nil, nil
	}

	w := NewWatcher("u1", load, 0.15, b, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, 5*time.Millisecond)

	b.Notify(ctx, "someone-else", ActionAdd)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestWatcherPollsAsFallback(t *testing.T) {
	b := NewBroadcaster(nil, zap.NewNop())

	var mu sync.Mutex
	items := []Item{}
	load := func(ctx context.Context) ([]Item, error) {
		mu.Lock()
		defer mu.Unlock()
		out := make([]Item, len(items))
		copy(out, items)
		return out, nil
	}

	w := NewWatcher("u1", load, 0.15, b, 10*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Mutate without any broadcast; the poll tick alone must pick it up.
	mu.Lock()
	items = []Item{{ID: "i1", ProductID: "p1", Quantity: 1, Product: ProductInfo{ID: "p1", Price: 10}}}
	mu.Unlock()

	require.Eventually(t, func() bool {
		return w.Summary().Count == 1
	}, time.Second, 5*time.Millisecond)
}
