// Package domain contains persistence models for plans.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Plan is a priced subscription tier. Price is the monthly charge in the
// billing currency.
type Plan struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"type:text;not null;uniqueIndex" json:"code"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Price     float64      `gorm:"not null" json:"price"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }
