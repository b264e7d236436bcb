// Package domain contains the production device entity. Each device belongs
// to exactly one account and carries the nameplate capacity used to bound
// issuance volumes.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Device struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	DeviceName string       `gorm:"type:text;not null"`
	// MeterDataID identifies the device at its meter data source. A device
	// without one cannot be issued certificates.
	MeterDataID     *string      `gorm:"type:text"`
	Grid            string       `gorm:"type:text;not null"`
	EnergySource    string       `gorm:"type:text;not null"`
	TechnologyType  string       `gorm:"type:text;not null"`
	OperationalDate time.Time    `gorm:"not null"`
	// Capacity is the nameplate capacity in Watts.
	Capacity   float64      `gorm:"not null"`
	PeakDemand float64      `gorm:"not null"`
	Location   string       `gorm:"type:text"`
	IsStorage  bool         `gorm:"not null;default:false"`
	AccountID  snowflake.ID `gorm:"not null;index"`
	IsDeleted  bool         `gorm:"not null;default:false;column:is_deleted"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Device) TableName() string { return "devices" }

func (d *Device) GetID() snowflake.ID { return d.ID }

func (d *Device) EntityName() string { return "Device" }

func (d *Device) MarkDeleted() { d.IsDeleted = true }

type Repository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]*Device, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Device, error)
	CapacityByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (float64, error)
}

var ErrDeviceNotFound = errors.New("device_not_found")
