package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/faturahq/fatura/internal/plan/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() plandomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *plandomain.Plan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans (id, code, name, price, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.Code,
		plan.Name,
		plan.Price,
		plan.CreatedAt,
		plan.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*plandomain.Plan, error) {
	var plan plandomain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, price, created_at, updated_at
		 FROM plans WHERE id = ?`,
		id,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]plandomain.Plan, error) {
	var plans []plandomain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, price, created_at, updated_at
		 FROM plans ORDER BY price ASC, id ASC`,
	).Scan(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, patch plandomain.PlanPatch, now time.Time) (int64, error) {
	updates := map[string]any{"updated_at": now}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}

	tx := db.WithContext(ctx).
		Table("plans").
		Where("id = ?", id).
		Updates(updates)
	return tx.RowsAffected, tx.Error
}
