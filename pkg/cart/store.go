package cart

import (
	"context"

	"go.uber.org/zap"
)

// Cart mutation actions carried on broadcast events.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionRemove = "remove"
	ActionClear  = "clear"
)

// Store is the cart facade for one shopper. The backing repository is chosen
// once, when the session is resolved, so a session expiring mid-flow cannot
// silently switch a request between backends. Mutations that succeed are
// announced on the broadcaster; failures are returned to the caller without
// retry.
type Store struct {
	repo        Repository
	owner       string
	taxRate     float64
	broadcaster *Broadcaster
	logger      *zap.Logger
}

func NewStore(repo Repository, owner string, taxRate float64, b *Broadcaster, logger *zap.Logger) *Store {
	return &Store{
		repo:        repo,
		owner:       owner,
		taxRate:     taxRate,
		broadcaster: b,
		logger:      logger,
	}
}

// Owner returns the guest or user id this store is bound to.
func (s *Store) Owner() string {
	return s.owner
}

func (s *Store) Items(ctx context.Context) ([]Item, error) {
	return s.repo.Items(ctx)
}

func (s *Store) Add(ctx context.Context, product ProductInfo, quantity int) error {
	if err := s.repo.Add(ctx, product, quantity); err != nil {
		s.logger.Error("Failed to add to cart",
			zap.String("owner", s.owner), zap.String("product_id", product.ID), zap.Error(err))
		return err
	}
	s.broadcaster.Notify(ctx, s.owner, ActionAdd)
	return nil
}

func (s *Store) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if err := s.repo.SetQuantity(ctx, itemID, quantity); err != nil {
		s.logger.Error("Failed to update cart quantity",
			zap.String("owner", s.owner), zap.String("item_id", itemID), zap.Error(err))
		return err
	}
	s.broadcaster.Notify(ctx, s.owner, ActionUpdate)
	return nil
}

func (s *Store) Remove(ctx context.Context, itemID string) error {
	if err := s.repo.Remove(ctx, itemID); err != nil {
		s.logger.Error("Failed to remove from cart",
			zap.String("owner", s.owner), zap.String("item_id", itemID), zap.Error(err))
		return err
	}
	s.broadcaster.Notify(ctx, s.owner, ActionRemove)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear cart",
			zap.String("owner", s.owner), zap.Error(err))
		return err
	}
	s.broadcaster.Notify(ctx, s.owner, ActionClear)
	return nil
}

// Totals computes the checkout math for items at this store's tax rate.
func (s *Store) Totals(items []Item) Totals {
	return CalculateTotals(items, s.taxRate)
}
