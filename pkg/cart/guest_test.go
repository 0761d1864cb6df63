package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGuestStorage holds raw record strings per key, standing in for the
// Redis repository. failWith simulates a transport failure on reads.
type fakeGuestStorage struct {
	records  map[string]string
	lastTTL  time.Duration
	failWith error
}

func newFakeGuestStorage() *fakeGuestStorage {
	return &fakeGuestStorage{records: make(map[string]string)}
}

func (f *fakeGuestStorage) Get(ctx context.Context, key string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	data, ok := f.records[key]
	if !ok {
		return "", redis.Nil
	}
	return data, nil
}

func (f *fakeGuestStorage) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.records[key] = string(data)
	f.lastTTL = expiration
	return nil
}

func (f *fakeGuestStorage) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.records, key)
	}
	return nil
}

func newTestGuestRepo(storage *fakeGuestStorage) *GuestRepository {
	return NewGuestRepository(storage, "g1", time.Hour, zap.NewNop())
}

func TestGuestCartMissingRecordReadsAsEmpty(t *testing.T) {
	repo := newTestGuestRepo(newFakeGuestStorage())

	items, err := repo.Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGuestCartCorruptRecordReadsAsEmpty(t *testing.T) {
	storage := newFakeGuestStorage()
	storage.records["cart:guest:g1"] = `{"items": [{"id": 12`
	repo := newTestGuestRepo(storage)

	items, err := repo.Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGuestCartCorruptRecordIsReplacedOnAdd(t *testing.T) {
	storage := newFakeGuestStorage()
	storage.records["cart:guest:g1"] = `not json at all`
	repo := newTestGuestRepo(storage)

	err := repo.Add(context.Background(), ProductInfo{ID: "p1", Name: "Office Suite", Price: 100}, 2)
	require.NoError(t, err)

	items, err := repo.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestGuestCartTransportErrorSurfacesInsteadOfEmpty(t *testing.T) {
	storage := newFakeGuestStorage()
	storage.failWith = errors.New("connection refused")
	repo := newTestGuestRepo(storage)

	_, err := repo.Items(context.Background())
	require.Error(t, err)

	err = repo.Add(context.Background(), ProductInfo{ID: "p1", Price: 10}, 1)
	require.Error(t, err)
}

func TestGuestCartAddPersistsProductSnapshot(t *testing.T) {
	storage := newFakeGuestStorage()
	repo := newTestGuestRepo(storage)

	snapshot := ProductInfo{ID: "p1", Name: "Office Suite", Price: 100, Category: "productivity"}
	require.NoError(t, repo.Add(context.Background(), snapshot, 1))

	// The snapshot is in the stored record itself, not re-joined on read.
	var rec guestRecord
	require.NoError(t, json.Unmarshal([]byte(storage.records["cart:guest:g1"]), &rec))
	require.Len(t, rec.Items, 1)
	assert.Equal(t, snapshot, rec.Items[0].Product)
}

func TestGuestCartSaveAppliesTTL(t *testing.T) {
	storage := newFakeGuestStorage()
	repo := newTestGuestRepo(storage)

	require.NoError(t, repo.Add(context.Background(), ProductInfo{ID: "p1", Price: 10}, 1))
	assert.Equal(t, time.Hour, storage.lastTTL)
}

func TestGuestCartRepeatedAddMergesInStorage(t *testing.T) {
	storage := newFakeGuestStorage()
	repo := newTestGuestRepo(storage)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, ProductInfo{ID: "p1", Price: 10}, 1))
	require.NoError(t, repo.Add(ctx, ProductInfo{ID: "p1", Price: 10}, 2))

	items, err := repo.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestGuestCartClearDeletesRecord(t *testing.T) {
	storage := newFakeGuestStorage()
	repo := newTestGuestRepo(storage)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, ProductInfo{ID: "p1", Price: 10}, 1))
	require.NoError(t, repo.Clear(ctx))

	_, ok := storage.records["cart:guest:g1"]
	assert.False(t, ok)
}
