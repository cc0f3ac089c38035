package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	teamdomain "github.com/faturahq/fatura/internal/team/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() teamdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, team *teamdomain.Team) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO teams (id, user_id, name, is_personal, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		team.ID,
		team.UserID,
		team.Name,
		team.IsPersonal,
		team.CreatedAt,
		team.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*teamdomain.Team, error) {
	var team teamdomain.Team
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, is_personal, created_at, updated_at
		 FROM teams WHERE id = ?`,
		id,
	).Scan(&team).Error
	if err != nil {
		return nil, err
	}
	if team.ID == 0 {
		return nil, nil
	}
	return &team, nil
}

func (r *repo) FindFirstByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*teamdomain.Team, error) {
	var team teamdomain.Team
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, is_personal, created_at, updated_at
		 FROM teams WHERE user_id = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT 1`,
		userID,
	).Scan(&team).Error
	if err != nil {
		return nil, err
	}
	if team.ID == 0 {
		return nil, nil
	}
	return &team, nil
}
