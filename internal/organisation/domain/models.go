// Package domain contains the organisation reference entity.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Organisation struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	Name           string       `gorm:"type:text;not null"`
	BusinessID     string       `gorm:"type:text"`
	Website        string       `gorm:"type:text"`
	Address        string       `gorm:"type:text"`
	PrimaryContact string       `gorm:"type:text"`
	IsDeleted      bool         `gorm:"not null;default:false;column:is_deleted"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Organisation) TableName() string { return "organisations" }

func (o *Organisation) GetID() snowflake.ID { return o.ID }

func (o *Organisation) EntityName() string { return "Organisation" }

func (o *Organisation) MarkDeleted() { o.IsDeleted = true }
