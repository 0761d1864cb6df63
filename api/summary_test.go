package api

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/hesham156/wafarle/pkg/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type summaryFixture struct {
	mu    sync.Mutex
	items []cart.Item
}

func (f *summaryFixture) load(ctx context.Context) ([]cart.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]cart.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *summaryFixture) set(items []cart.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

func TestSummaryFirstRequestLoadsSynchronously(t *testing.T) {
	b := cart.NewBroadcaster(nil, zap.NewNop())
	sw := newSummaryWatchers(0.15, time.Hour, b, zap.NewNop())
	defer sw.Stop()

	fixture := &summaryFixture{items: []cart.Item{
		{ID: "i1", ProductID: "p1", Quantity: 2, Product: cart.ProductInfo{ID: "p1", Price: 100}},
	}}

	s := sw.Summary(context.Background(), "u1", fixture.load)
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 230, s.Total, 1e-6)
}

func TestSummaryReloadsOnBroadcast(t *testing.T) {
	b := cart.NewBroadcaster(nil, zap.NewNop())
	// Hour-long poll interval so only the broadcast can explain a reload.
	sw := newSummaryWatchers(0.15, time.Hour, b, zap.NewNop())
	defer sw.Stop()

	fixture := &summaryFixture{}
	s := sw.Summary(context.Background(), "u1", fixture.load)
	require.Equal(t, 0, s.Count)

	fixture.set([]cart.Item{
		{ID: "i1", ProductID: "p1", Quantity: 3, Product: cart.ProductInfo{ID: "p1", Price: 10}},
	})
	require.Eventually(t, func() bool {
		b.Notify(context.Background(), "u1", cart.ActionAdd)
		s := sw.Summary(context.Background(), "u1", fixture.load)
		return s.Count == 3 && math.Abs(s.Total-34.5) < 1e-6
	}, time.Second, 5*time.Millisecond)
}

func TestSummaryPollsWithoutBroadcast(t *testing.T) {
	b := cart.NewBroadcaster(nil, zap.NewNop())
	sw := newSummaryWatchers(0.15, 10*time.Millisecond, b, zap.NewNop())
	defer sw.Stop()

	fixture := &summaryFixture{}
	s := sw.Summary(context.Background(), "u1", fixture.load)
	require.Equal(t, 0, s.Count)

	// Mutate without notifying; the poll tick alone must pick it up.
	fixture.set([]cart.Item{
		{ID: "i1", ProductID: "p1", Quantity: 1, Product: cart.ProductInfo{ID: "p1", Price: 10}},
	})

	require.Eventually(t, func() bool {
		return sw.Summary(context.Background(), "u1", fixture.load).Count == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSummaryIsPerOwner(t *testing.T) {
	b := cart.NewBroadcaster(nil, zap.NewNop())
	sw := newSummaryWatchers(0.15, time.Hour, b, zap.NewNop())
	defer sw.Stop()

	full := &summaryFixture{items: []cart.Item{
		{ID: "i1", ProductID: "p1", Quantity: 5, Product: cart.ProductInfo{ID: "p1", Price: 20}},
	}}
	empty := &summaryFixture{}

	assert.Equal(t, 5, sw.Summary(context.Background(), "u1", full.load).Count)
	assert.Equal(t, 0, sw.Summary(context.Background(), "u2", empty.load).Count)
}
