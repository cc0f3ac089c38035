// Package domain contains persistence models for teams.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Team is the billing tenant. Every team belongs to exactly one owning user;
// subscriptions hang off the team, not the user.
type Team struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID     snowflake.ID `gorm:"not null;index" json:"user_id"`
	Name       string       `gorm:"type:text;not null" json:"name"`
	IsPersonal bool         `gorm:"not null;default:false" json:"is_personal"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Team) TableName() string { return "teams" }

var (
	ErrTeamNotFound = errors.New("team_not_found")
)
