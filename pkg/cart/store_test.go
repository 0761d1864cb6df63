package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepository backs a Store with a plain slice, standing in for either
// real backend in tests.
type memoryRepository struct {
	items  []Item
	nextID int
}

func (m *memoryRepository) Items(ctx context.Context) ([]Item, error) {
	if m.items == nil {
		return []Item{}, nil
	}
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memoryRepository) Add(ctx context.Context, product ProductInfo, quantity int) error {
	m.nextID++
	m.items = mergeAdd(m.items, fmt.Sprintf("item-%d", m.nextID), product, quantity)
	return nil
}

func (m *memoryRepository) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	m.items = setQuantity(m.items, itemID, quantity)
	return nil
}

func (m *memoryRepository) Remove(ctx context.Context, itemID string) error {
	m.items = removeItem(m.items, itemID)
	return nil
}

func (m *memoryRepository) Clear(ctx context.Context) error {
	m.items = nil
	return nil
}

func newTestStore(t *testing.T) (*Store, *memoryRepository, <-chan Event) {
	t.Helper()
	repo := &memoryRepository{}
	broadcaster := NewBroadcaster(nil, zap.NewNop())
	events, cancel := broadcaster.Subscribe()
	t.Cleanup(cancel)
	store := NewStore(repo, "shopper-1", 0.15, broadcaster, zap.NewNop())
	return store, repo, events
}

func product(id string, price float64) ProductInfo {
	return ProductInfo{ID: id, Name: "Product " + id, Price: price}
}

func TestAddMergesQuantityForSameProduct(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, product("p1", 10), 2))
	require.NoError(t, store.Add(ctx, product("p1", 10), 3))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestDoubleAddYieldsOneLineItem(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, product("a", 100), 1))
	require.NoError(t, store.Add(ctx, product("a", 100), 1))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddKeepsDistinctProductsSeparate(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, product("a", 100), 1))
	require.NoError(t, store.Add(ctx, product("b", 50), 2))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSetQuantityIsAbsolute(t *testing.T) {
	store, repo, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, product("p1", 10), 2))
	require.NoError(t, store.SetQuantity(ctx, repo.items[0].ID, 7))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestRemoveUnknownItemIsNoOp(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, product("p1", 10), 1))
	require.NoError(t, store.Remove(ctx, "no-such-item"))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestClearThenItemsYieldsEmptyList(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, product("p1", 10), 3))
	require.NoError(t, store.Add(ctx, product("p2", 20), 1))
	require.NoError(t, store.Clear(ctx))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestItemsOnFreshCartIsEmptyNotError(t *testing.T) {
	store, _, _ := newTestStore(t)

	items, err := store.Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTotalsFormula(t *testing.T) {
	items := []Item{
		{ProductID: "a", Quantity: 1, Product: product("a", 100)},
		{ProductID: "b", Quantity: 2, Product: product("b", 50)},
	}

	totals := CalculateTotals(items, 0.15)
	assert.InDelta(t, 200.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 30.0, totals.Tax, 1e-9)
	assert.InDelta(t, 230.0, totals.Total, 1e-9)
}

func TestTotalsOnEmptyCart(t *testing.T) {
	totals := CalculateTotals(nil, 0.15)
	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.Tax)
	assert.Zero(t, totals.Total)
}

func TestTotalsSubtotalPlusTaxEqualsTotal(t *testing.T) {
	items := []Item{
		{ProductID: "a", Quantity: 3, Product: product("a", 19.99)},
		{ProductID: "b", Quantity: 1, Product: product("b", 249.5)},
		{ProductID: "c", Quantity: 7, Product: product("c", 4.25)},
	}

	totals := CalculateTotals(items, 0.15)
	assert.InDelta(t, totals.Subtotal+totals.Subtotal*0.15, totals.Total, 1e-9)
	assert.InDelta(t, totals.Subtotal+totals.Tax, totals.Total, 1e-9)
}

func TestCount(t *testing.T) {
	items := []Item{
		{Quantity: 2},
		{Quantity: 3},
	}
	assert.Equal(t, 5, Count(items))
	assert.Zero(t, Count(nil))
}

func TestMutationsBroadcast(t *testing.T) {
	store, repo, events := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, product("p1", 10), 1))
	require.NoError(t, store.SetQuantity(ctx, repo.items[0].ID, 4))
	require.NoError(t, store.Remove(ctx, repo.items[0].ID))
	require.NoError(t, store.Clear(ctx))

	for _, want := range []string{ActionAdd, ActionUpdate, ActionRemove, ActionClear} {
		ev := <-events
		assert.Equal(t, want, ev.Action)
		assert.Equal(t, "shopper-1", ev.Owner)
	}
}
