// Package domain contains manually submitted meter readings, the data source
// for the manual-submission meter client.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MeasurementReport struct {
	ID                    snowflake.ID `gorm:"primaryKey"`
	DeviceID              snowflake.ID `gorm:"not null;index"`
	IntervalStartDatetime time.Time    `gorm:"not null"`
	IntervalEndDatetime   time.Time    `gorm:"not null"`
	// IntervalUsage is the energy produced in Wh during the interval.
	IntervalUsage int64 `gorm:"not null"`
	// GrossNetIndicator states whether the usage is gross or net of system
	// losses.
	GrossNetIndicator string    `gorm:"type:text;not null"`
	IsDeleted         bool      `gorm:"not null;default:false;column:is_deleted"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (MeasurementReport) TableName() string { return "measurement_reports" }

func (m *MeasurementReport) GetID() snowflake.ID { return m.ID }

func (m *MeasurementReport) EntityName() string { return "MeasurementReport" }

func (m *MeasurementReport) MarkDeleted() { m.IsDeleted = true }
