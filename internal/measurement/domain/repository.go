package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrNoReadings = errors.New("no_meter_readings_found")

type Repository interface {
	// FindByDeviceInRange returns the device's readings whose intervals fall
	// entirely inside [start, end], ordered by interval start.
	FindByDeviceInRange(ctx context.Context, db *gorm.DB, deviceID snowflake.ID, start, end time.Time) ([]*MeasurementReport, error)
}
