package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// PlanPatch carries a partial update; nil fields are left untouched.
type PlanPatch struct {
	Name  *string
	Price *float64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Plan, error)
	List(ctx context.Context, db *gorm.DB) ([]Plan, error)
	// Update applies the patch and reports how many rows matched.
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, patch PlanPatch, now time.Time) (int64, error)
}
