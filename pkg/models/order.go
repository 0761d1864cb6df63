package models

import (
	"time"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCard         = "card"
	PaymentMethodPaypal       = "paypal"
	PaymentMethodBankTransfer = "bank_transfer"
)

type Order struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Subtotal      float64     `gorm:"type:decimal(10,2)" json:"subtotal"`
	Tax           float64     `gorm:"type:decimal(10,2)" json:"tax"`
	TotalAmount   float64     `gorm:"type:decimal(10,2)" json:"total_amount"`
	Status        string      `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentMethod string      `gorm:"type:varchar(20)" json:"payment_method"`
	ContactInfo   string      `gorm:"type:text" json:"contact_info"` // JSON string
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots a cart line at checkout time. Price is the product
// price at the moment the order was placed, not a live join.
type OrderItem struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID     string  `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID   string  `gorm:"type:varchar(36);not null" json:"product_id"`
	ProductName string  `gorm:"type:varchar(200)" json:"product_name"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	Price       float64 `gorm:"type:decimal(10,2)" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// ContactInfo is the checkout contact record stored on the order as JSON.
type ContactInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPaypal, PaymentMethodBankTransfer:
		return true
	}
	return false
}

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}
