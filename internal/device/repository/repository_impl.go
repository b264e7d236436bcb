package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/voltgrid/gc-registry/internal/device/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]*domain.Device, error) {
	var devices []*domain.Device
	err := db.WithContext(ctx).Where("is_deleted = ?", false).Order("id asc").Find(&devices).Error
	return devices, err
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Device, error) {
	var device domain.Device
	err := db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

func (r *repo) CapacityByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (float64, error) {
	var capacity *float64
	err := db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("id = ?", id).
		Select("capacity").
		Scan(&capacity).Error
	if err != nil {
		return 0, err
	}
	if capacity == nil {
		return 0, domain.ErrDeviceNotFound
	}
	return *capacity, nil
}
