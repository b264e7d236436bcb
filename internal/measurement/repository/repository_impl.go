package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltgrid/gc-registry/internal/measurement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByDeviceInRange(ctx context.Context, db *gorm.DB, deviceID snowflake.ID, start, end time.Time) ([]*domain.MeasurementReport, error) {
	var reports []*domain.MeasurementReport
	err := db.WithContext(ctx).
		Where("device_id = ? AND interval_start_datetime >= ? AND interval_end_datetime <= ? AND is_deleted = ?",
			deviceID, start, end, false).
		Order("interval_start_datetime ASC").
		Find(&reports).Error
	return reports, err
}
