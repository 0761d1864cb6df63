package cart

import (
	"context"
)

// Repository is the storage port for one shopper's cart. An implementation
// is bound to a single owner (guest id or user id) when constructed, so the
// backend is picked once per resolved session instead of being re-decided on
// every call.
type Repository interface {
	// Items returns the cart's line items in insertion order. A cart that
	// does not exist yet reads as empty, never as an error.
	Items(ctx context.Context) ([]Item, error)

	// Add merges quantity into the existing line for product.ID, or appends
	// a new line. Callers are trusted to pass a positive quantity.
	Add(ctx context.Context, product ProductInfo, quantity int) error

	// SetQuantity sets the absolute quantity of one line item. Setting an
	// unknown item id is a no-op.
	SetQuantity(ctx context.Context, itemID string, quantity int) error

	// Remove deletes one line item. Removing an unknown item id is a no-op.
	Remove(ctx context.Context, itemID string) error

	// Clear deletes every line item for this owner.
	Clear(ctx context.Context) error
}

// mergeAdd implements the merge-on-add invariant over an in-memory item
// slice. Shared by the guest repository and exercised directly in tests.
func mergeAdd(items []Item, newID string, product ProductInfo, quantity int) []Item {
	for i := range items {
		if items[i].ProductID == product.ID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, Item{
		ID:        newID,
		ProductID: product.ID,
		Quantity:  quantity,
		Product:   product,
	})
}

func setQuantity(items []Item, itemID string, quantity int) []Item {
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
		}
	}
	return items
}

func removeItem(items []Item, itemID string) []Item {
	out := items[:0]
	for _, item := range items {
		if item.ID != itemID {
			out = append(out, item)
		}
	}
	return out
}
