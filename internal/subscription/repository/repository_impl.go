package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/faturahq/fatura/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, subscription *subscriptiondomain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscriptions (id, team_id, plan_id, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		subscription.ID,
		subscription.TeamID,
		subscription.PlanID,
		subscription.Status,
		subscription.Metadata,
		subscription.CreatedAt,
		subscription.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var subscription subscriptiondomain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, team_id, plan_id, status, metadata, created_at, updated_at
		 FROM subscriptions WHERE id = ?`,
		id,
	).Scan(&subscription).Error
	if err != nil {
		return nil, err
	}
	if subscription.ID == 0 {
		return nil, nil
	}
	return &subscription, nil
}

func (r *repo) FindFirstByTeamID(ctx context.Context, db *gorm.DB, teamID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	return r.findFirstByTeamID(ctx, db, teamID, "")
}

func (r *repo) FindFirstByTeamIDForUpdate(ctx context.Context, db *gorm.DB, teamID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	// SQLite serializes writers on its own and rejects FOR UPDATE syntax.
	lock := " FOR UPDATE"
	if db.Dialector.Name() == "sqlite" {
		lock = ""
	}
	return r.findFirstByTeamID(ctx, db, teamID, lock)
}

func (r *repo) findFirstByTeamID(ctx context.Context, db *gorm.DB, teamID snowflake.ID, lock string) (*subscriptiondomain.Subscription, error) {
	var subscription subscriptiondomain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, team_id, plan_id, status, metadata, created_at, updated_at
		 FROM subscriptions WHERE team_id = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT 1`+lock,
		teamID,
	).Scan(&subscription).Error
	if err != nil {
		return nil, err
	}
	if subscription.ID == 0 {
		return nil, nil
	}
	return &subscription, nil
}

func (r *repo) UpdatePlan(ctx context.Context, db *gorm.DB, id, planID snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions SET plan_id = ?, updated_at = ? WHERE id = ?`,
		planID,
		now,
		id,
	).Error
}

func (r *repo) InsertActivation(ctx context.Context, db *gorm.DB, activation *subscriptiondomain.SubscriptionActivation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscription_activations (id, subscription_id, order_id, start_date, end_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		activation.ID,
		activation.SubscriptionID,
		activation.OrderID,
		activation.StartDate,
		activation.EndDate,
		activation.CreatedAt,
		activation.UpdatedAt,
	).Error
}

func (r *repo) FindLatestActivation(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID) (*subscriptiondomain.SubscriptionActivation, error) {
	var activation subscriptiondomain.SubscriptionActivation
	err := db.WithContext(ctx).Raw(
		`SELECT id, subscription_id, order_id, start_date, end_date, created_at, updated_at
		 FROM subscription_activations
		 WHERE subscription_id = ?
		 ORDER BY start_date DESC, id DESC
		 LIMIT 1`,
		subscriptionID,
	).Scan(&activation).Error
	if err != nil {
		return nil, err
	}
	if activation.ID == 0 {
		return nil, nil
	}
	return &activation, nil
}
