package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, team *Team) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Team, error)
	// FindFirstByUserID resolves the caller's team. Business flows assume at
	// most one relevant team per user; ties break on creation order.
	FindFirstByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Team, error)
}
