package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingDetails is what the customer fills in at checkout.
type ShippingDetails struct {
	CustomerName string `json:"customer_name" validate:"required,min=3,max=150"`
	Address      string `json:"address" validate:"required,min=5,max=255"`
	City         string `json:"city" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"required,min=7,max=20"`
	DocumentID   string `json:"document_id" validate:"required,alphanum,min=5,max=20"`
}

// Order is the write-once record of a completed purchase. Only Status changes after creation.
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string          `json:"user_id" gorm:"type:varchar(36);not null;index"`
	CustomerName  string          `json:"customer_name" gorm:"type:varchar(150);not null"`
	Address       string          `json:"address" gorm:"type:varchar(255);not null"`
	City          string          `json:"city" gorm:"type:varchar(100);not null"`
	Phone         string          `json:"phone" gorm:"type:varchar(20);not null"`
	DocumentID    string          `json:"document_id" gorm:"type:varchar(20);not null"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(14,4);not null"`
	Tax           decimal.Decimal `json:"tax" gorm:"type:decimal(14,4);not null"`
	ShippingPrice decimal.Decimal `json:"shipping_price" gorm:"type:decimal(14,4);not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(14,4);not null"`
	Currency      string          `json:"currency" gorm:"type:varchar(3);not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem freezes quantity and unit price as charged at purchase time.
type OrderItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(36);not null;index"`
	ProductName string          `json:"product_name" gorm:"type:varchar(150);not null"`
	Position    int             `json:"position" gorm:"not null"`
	Quantity    int             `json:"quantity" gorm:"not null;check:chk_order_items_quantity,quantity > 0"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Product     *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// OrderPlacedEvent is published once an order has been committed.
type OrderPlacedEvent struct {
	OrderID  string            `json:"order_id"`
	UserID   string            `json:"user_id"`
	Status   OrderStatus       `json:"status"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Tax      decimal.Decimal   `json:"tax"`
	Total    decimal.Decimal   `json:"total"`
	Currency string            `json:"currency"`
	Items    []OrderPlacedItem `json:"items"`
	PlacedAt time.Time         `json:"placed_at"`
}

// OrderPlacedItem is one line of an OrderPlacedEvent.
type OrderPlacedItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
