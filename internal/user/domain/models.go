// Package domain contains persistence models for users.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is an account identity. Authentication happens upstream; this service
// only consults the row for authorization (admin gate) and team ownership.
type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	IsAdmin   bool         `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

var (
	ErrUserNotFound = errors.New("user_not_found")
)
