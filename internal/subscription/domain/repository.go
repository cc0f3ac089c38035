package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	FindFirstByTeamID(ctx context.Context, db *gorm.DB, teamID snowflake.ID) (*Subscription, error)
	// FindFirstByTeamIDForUpdate locks the subscription row so concurrent
	// upgrades serialize on it.
	FindFirstByTeamIDForUpdate(ctx context.Context, db *gorm.DB, teamID snowflake.ID) (*Subscription, error)
	UpdatePlan(ctx context.Context, db *gorm.DB, id, planID snowflake.ID, now time.Time) error

	InsertActivation(ctx context.Context, db *gorm.DB, activation *SubscriptionActivation) error
	FindLatestActivation(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID) (*SubscriptionActivation, error)
}
