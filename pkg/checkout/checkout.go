// Package checkout turns a user's cart into an order. Order row, order
// items, and the cart clear commit in one database transaction, so checkout
// leaves exactly one outcome: either the order exists and the cart is empty,
// or neither happened.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hesham156/wafarle/pkg/cart"
	"github.com/hesham156/wafarle/pkg/models"
	"github.com/hesham156/wafarle/pkg/notify"
	"github.com/hesham156/wafarle/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrIncompleteContact = errors.New("contact info is incomplete")
	ErrBadPaymentMethod  = errors.New("unknown payment method")
	ErrOrderNotFound     = errors.New("order not found")
	ErrBadOrderStatus    = errors.New("unknown order status")
)

type Service struct {
	db          *gorm.DB
	mongo       *repository.MongoRepository
	notifier    *notify.Service
	broadcaster *cart.Broadcaster
	taxRate     float64
	logger      *zap.Logger
}

func NewService(db *gorm.DB, mongo *repository.MongoRepository, notifier *notify.Service, b *cart.Broadcaster, taxRate float64, logger *zap.Logger) *Service {
	return &Service{
		db:          db,
		mongo:       mongo,
		notifier:    notifier,
		broadcaster: b,
		taxRate:     taxRate,
		logger:      logger,
	}
}

type PlaceOrderInput struct {
	Contact       models.ContactInfo
	PaymentMethod string
}

func (in *PlaceOrderInput) validate() error {
	if strings.TrimSpace(in.Contact.FullName) == "" ||
		strings.TrimSpace(in.Contact.Email) == "" ||
		strings.TrimSpace(in.Contact.Phone) == "" {
		return ErrIncompleteContact
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return ErrBadPaymentMethod
	}
	return nil
}

// PlaceOrder creates the order for userID from their current cart.
func (s *Service) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	items, err := cart.NewUserRepository(s.db, userID).Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	totals := cart.CalculateTotals(items, s.taxRate)
	contactJSON, err := json.Marshal(in.Contact)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize contact info: %w", err)
	}

	order := &models.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		TotalAmount:   totals.Total,
		Status:        models.OrderStatusPending,
		PaymentMethod: in.PaymentMethod,
		ContactInfo:   string(contactJSON),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	orderItems := make([]models.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = models.OrderItem{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Checkout failed",
			zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	order.Items = orderItems

	s.broadcaster.Notify(ctx, userID, cart.ActionClear)

	go s.mongo.CreateAuditLog(context.Background(), &repository.AuditLog{
		Service:  "storefront",
		Action:   repository.AuditActionPlaceOrder,
		EntityID: order.ID,
		Data:     bson.M{"user_id": userID, "total_amount": order.TotalAmount, "payment_method": in.PaymentMethod},
	})

	s.notifier.OrderPlaced(&notify.OrderPlaced{
		OrderID:     order.ID,
		UserID:      userID,
		Email:       in.Contact.Email,
		FullName:    in.Contact.FullName,
		TotalAmount: order.TotalAmount,
	})

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Float64("total_amount", order.TotalAmount))
	return order, nil
}

// ListOrders returns the user's orders, newest first, with items.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns one of the user's orders with items.
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListAllOrders pages over every order, for the admin screen.
func (s *Service) ListAllOrders(ctx context.Context, page, pageSize int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int64
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateOrderStatus moves an order through the status enum (admin only).
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, ErrBadOrderStatus
	}

	var order models.Order
	err := s.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if err := s.db.WithContext(ctx).Model(&order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	order.Status = status

	go s.mongo.CreateAuditLog(context.Background(), &repository.AuditLog{
		Service:  "storefront",
		Action:   repository.AuditActionOrderStatus,
		EntityID: order.ID,
		Data:     bson.M{"status": status},
	})

	return &order, nil
}
