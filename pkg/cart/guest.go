package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hesham156/wafarle/pkg/repository"
	"go.uber.org/zap"
)

// GuestStorage is the slice of the Redis repository a guest cart needs.
type GuestStorage interface {
	Get(ctx context.Context, key string) (string, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// GuestRepository keeps an anonymous shopper's cart as a single JSON record
// in Redis, keyed by the guest id minted into their cookie. The record is the
// same shape the storefront historically kept client-side: {"items": [...]}.
// Line items carry the product snapshot taken at add time.
type GuestRepository struct {
	storage GuestStorage
	guest   string
	ttl     time.Duration
	logger  *zap.Logger
}

type guestRecord struct {
	Items []Item `json:"items"`
}

func NewGuestRepository(storage GuestStorage, guestID string, ttl time.Duration, logger *zap.Logger) *GuestRepository {
	return &GuestRepository{
		storage: storage,
		guest:   guestID,
		ttl:     ttl,
		logger:  logger,
	}
}

func (g *GuestRepository) key() string {
	return fmt.Sprintf("cart:guest:%s", g.guest)
}

// load reads the cart record. A missing record or one that no longer parses
// reads as an empty cart; only transport failures surface as errors.
func (g *GuestRepository) load(ctx context.Context) (*guestRecord, error) {
	data, err := g.storage.Get(ctx, g.key())
	if err != nil {
		if repository.IsNil(err) {
			return &guestRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read guest cart: %w", err)
	}

	var rec guestRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		g.logger.Warn("Discarding unreadable guest cart record",
			zap.String("guest_id", g.guest), zap.Error(err))
		return &guestRecord{}, nil
	}
	return &rec, nil
}

func (g *GuestRepository) save(ctx context.Context, rec *guestRecord) error {
	return g.storage.SetJSON(ctx, g.key(), rec, g.ttl)
}

func (g *GuestRepository) Items(ctx context.Context) ([]Item, error) {
	rec, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	if rec.Items == nil {
		return []Item{}, nil
	}
	return rec.Items, nil
}

func (g *GuestRepository) Add(ctx context.Context, product ProductInfo, quantity int) error {
	rec, err := g.load(ctx)
	if err != nil {
		return err
	}
	rec.Items = mergeAdd(rec.Items, uuid.NewString(), product, quantity)
	return g.save(ctx, rec)
}

func (g *GuestRepository) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	rec, err := g.load(ctx)
	if err != nil {
		return err
	}
	rec.Items = setQuantity(rec.Items, itemID, quantity)
	return g.save(ctx, rec)
}

func (g *GuestRepository) Remove(ctx context.Context, itemID string) error {
	rec, err := g.load(ctx)
	if err != nil {
		return err
	}
	rec.Items = removeItem(rec.Items, itemID)
	return g.save(ctx, rec)
}

func (g *GuestRepository) Clear(ctx context.Context) error {
	return g.storage.Del(ctx, g.key())
}
