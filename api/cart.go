package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hesham156/wafarle/pkg/cart"
	"github.com/hesham156/wafarle/pkg/currency"
	"github.com/hesham156/wafarle/pkg/models"
	"github.com/hesham156/wafarle/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"
)

func newGuestID() string {
	return uuid.NewString()
}

// cartStore binds a cart store to this request's shopper. The backend is
// chosen here, once: user rows when a session resolved, the guest Redis
// record otherwise.
func (s *Server) cartStore(c *gin.Context) *cart.Store {
	if session := s.session(c); session != nil {
		repo := cart.NewUserRepository(s.db, session.UserID)
		return cart.NewStore(repo, session.UserID, s.config.Cart.TaxRate, s.broadcaster, s.logger)
	}
	guestID := s.guestID(c)
	repo := cart.NewGuestRepository(s.redis, guestID, s.config.Cart.GuestTTL, s.logger)
	return cart.NewStore(repo, guestID, s.config.Cart.TaxRate, s.broadcaster, s.logger)
}

// displayTotals converts totals into the requested display currency and
// formats them. Unknown codes fall back to the canonical currency.
func (s *Server) displayTotals(c *gin.Context, totals cart.Totals) gin.H {
	base := s.config.Currency.Base
	code := c.DefaultQuery("currency", base)
	if !currency.IsValid(code) {
		code = base
	}
	subtotal := currency.Convert(totals.Subtotal, base, code)
	tax := currency.Convert(totals.Tax, base, code)
	total := currency.Convert(totals.Total, base, code)
	return gin.H{
		"currency":           code,
		"subtotal":           subtotal,
		"tax":                tax,
		"total":              total,
		"formatted_subtotal": currency.Format(subtotal, code),
		"formatted_tax":      currency.Format(tax, code),
		"formatted_total":    currency.Format(total, code),
	}
}

func (s *Server) getCart(c *gin.Context) {
	store := s.cartStore(c)
	items, err := store.Items(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	totals := store.Totals(items)
	c.JSON(http.StatusOK, gin.H{
		"items":   items,
		"totals":  totals,
		"display": s.displayTotals(c, totals),
	})
}

// getCartSummary serves the badge view from the per-shopper watcher rather
// than hitting the cart backend on every request. The watcher reloads on
// broadcast events and on the configured poll tick.
func (s *Server) getCartSummary(c *gin.Context) {
	store := s.cartStore(c)
	summary := s.summaries.Summary(c.Request.Context(), store.Owner(), store.Items)
	c.JSON(http.StatusOK, summary)
}

type addToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
		return
	}

	var product models.Product
	err := s.db.WithContext(c.Request.Context()).
		Where("id = ? AND is_active = ?", req.ProductID, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	store := s.cartStore(c)
	if err := store.Add(c.Request.Context(), cart.SnapshotProduct(&product), req.Quantity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go s.mongo.CreateAuditLog(context.Background(), &repository.AuditLog{
		Service:  "storefront",
		Action:   repository.AuditActionAddToCart,
		EntityID: store.Owner(),
		Data:     bson.M{"product_id": product.ID, "quantity": req.Quantity},
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "تم إضافة المنتج إلى السلة",
	})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (s *Server) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// The store takes any quantity; the floor lives here at the edge.
	if req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
		return
	}

	store := s.cartStore(c)
	if err := store.SetQuantity(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) removeCartItem(c *gin.Context) {
	store := s.cartStore(c)
	if err := store.Remove(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) clearCart(c *gin.Context) {
	store := s.cartStore(c)
	if err := store.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go s.mongo.CreateAuditLog(context.Background(), &repository.AuditLog{
		Service:  "storefront",
		Action:   repository.AuditActionClearCart,
		EntityID: store.Owner(),
		Data:     bson.M{},
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}
