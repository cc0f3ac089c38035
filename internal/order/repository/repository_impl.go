package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (id, subscription_id, amount, currency, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.SubscriptionID,
		order.Amount,
		order.Currency,
		order.Status,
		order.Metadata,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, subscription_id, amount, currency, status, metadata, created_at, updated_at
		 FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status orderdomain.OrderStatus, now time.Time) (int64, error) {
	tx := db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		now,
		id,
	)
	return tx.RowsAffected, tx.Error
}
