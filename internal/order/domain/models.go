// Package domain contains persistence models for orders.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OrderStatus represents payment states for an order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusFailed   OrderStatus = "failed"
	OrderStatusCanceled OrderStatus = "canceled"
)

// ValidStatus reports whether s is one of the accepted order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFailed, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// Order is a single charge against a subscription. Status transitions happen
// only through explicit update calls; nothing here advances them.
type Order struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	SubscriptionID snowflake.ID      `gorm:"not null;index" json:"subscription_id"`
	Amount         float64           `gorm:"not null" json:"amount"`
	Currency       string            `gorm:"type:text;not null" json:"currency"`
	Status         OrderStatus       `gorm:"type:text;not null" json:"status"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

var (
	ErrOrderNotFound         = errors.New("order_not_found")
	ErrInvalidSubscriptionID = errors.New("Invalid subscription ID")
	ErrInvalidAmount         = errors.New("invalid_amount")
	ErrInvalidCurrency       = errors.New("invalid_currency")
	ErrInvalidStatus         = errors.New("invalid_status")
	ErrNotOwner              = errors.New("order_access_denied")
)
