// Package cart holds line items for the current shopper, either in Redis for
// guest sessions or in MySQL for authenticated users, behind one Repository
// port. Every successful mutation is announced through a Broadcaster so that
// independent consumers (header badge data, open cart views, activity logs)
// can re-read the cart without sharing state.
package cart

import (
	"github.com/hesham156/wafarle/pkg/models"
)

// ProductInfo is the denormalized product snapshot carried on a line item.
// Guest carts persist it at add time; user carts re-join it from the products
// table on every read.
type ProductInfo struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	ImageURL      string  `json:"image_url"`
	Category      string  `json:"category"`
}

// SnapshotProduct builds the line-item snapshot from a catalog product.
func SnapshotProduct(p *models.Product) ProductInfo {
	return ProductInfo{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
	}
}

// Item is one (product, quantity) line in a cart. A cart holds at most one
// Item per product; repeated adds merge into the existing line's quantity.
type Item struct {
	ID        string      `json:"id"`
	ProductID string      `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Product   ProductInfo `json:"product"`
}

// Totals is the checkout math for a set of items: subtotal is the sum of
// price times quantity, tax is subtotal times the configured rate, total is
// their sum. All amounts are in the canonical currency; display conversion
// happens at render time.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// CalculateTotals computes Totals over items at the given tax rate. Pure.
func CalculateTotals(items []Item, taxRate float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Product.Price * float64(item.Quantity)
	}
	tax := subtotal * taxRate
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// Count returns the number of units across all lines, for badge display.
func Count(items []Item) int {
	var n int
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
