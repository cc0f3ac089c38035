// Package domain contains persistence models for subscriptions and their
// activation windows.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
)

// Subscription ties a team to its current plan. PlanID is reassigned on
// upgrade; history lives in the activation rows, not here.
type Subscription struct {
	ID        snowflake.ID       `gorm:"primaryKey" json:"id"`
	TeamID    snowflake.ID       `gorm:"not null;index" json:"team_id"`
	PlanID    snowflake.ID       `gorm:"not null;index" json:"plan_id"`
	Status    SubscriptionStatus `gorm:"type:text;not null" json:"status"`
	Metadata  datatypes.JSONMap  `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// SubscriptionActivation records one billing cycle window and the order that
// funded it. Rows are append-only; the current cycle is the row with the most
// recent StartDate.
type SubscriptionActivation struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	SubscriptionID snowflake.ID `gorm:"not null;index" json:"subscription_id"`
	OrderID        snowflake.ID `gorm:"not null;index" json:"order_id"`
	StartDate      time.Time    `gorm:"not null" json:"start_date"`
	EndDate        time.Time    `gorm:"not null" json:"end_date"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SubscriptionActivation) TableName() string { return "subscription_activations" }

var (
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrActivationNotFound   = errors.New("activation_not_found")
)
