package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/faturahq/fatura/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() userdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *userdomain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, email, name, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*userdomain.User, error) {
	var user userdomain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, name, is_admin, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*userdomain.User, error) {
	var user userdomain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, name, is_admin, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}
