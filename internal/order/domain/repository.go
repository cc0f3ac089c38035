package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	// UpdateStatus applies the transition and reports how many rows matched.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status OrderStatus, now time.Time) (int64, error)
}
