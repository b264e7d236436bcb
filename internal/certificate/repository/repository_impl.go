package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltgrid/gc-registry/internal/certificate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]*domain.GranularCertificateBundle, error) {
	var bundles []*domain.GranularCertificateBundle
	err := db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Order("bundle_id_range_start ASC").
		Find(&bundles).Error
	if err != nil {
		return nil, err
	}
	if len(bundles) != len(ids) {
		return nil, domain.ErrBundleNotFound
	}
	return bundles, nil
}

func (r *repo) Search(ctx context.Context, db *gorm.DB, filter domain.BundleFilter) ([]*domain.GranularCertificateBundle, error) {
	q := db.WithContext(ctx).
		Model(&domain.GranularCertificateBundle{}).
		Where("is_deleted = ?", false)

	if len(filter.IssuanceIDs) > 0 {
		// Issuance IDs resolve to (device, production start) pairs and
		// replace every other filter parameter except the source account.
		pairs := db.Session(&gorm.Session{NewDB: true}).Where("1 = 0")
		for _, id := range filter.IssuanceIDs {
			deviceID, start, err := domain.ParseIssuanceID(id)
			if err != nil {
				return nil, err
			}
			pairs = pairs.Or("device_id = ? AND production_starting_interval = ?", deviceID, start)
		}
		q = q.Where("account_id = ?", filter.SourceID).Where(pairs)
	} else {
		q = q.Where("account_id = ?", filter.SourceID)
		if filter.DeviceID != nil {
			q = q.Where("device_id = ?", *filter.DeviceID)
		}
		if filter.EnergySource != nil {
			q = q.Where("energy_source = ?", *filter.EnergySource)
		}
		if filter.CertificatePeriodStart != nil {
			q = q.Where("production_starting_interval >= ?", *filter.CertificatePeriodStart)
		}
		if filter.CertificatePeriodEnd != nil {
			q = q.Where("production_ending_interval <= ?", *filter.CertificatePeriodEnd)
		}
		if filter.CertificateStatus != nil {
			q = q.Where("certificate_status = ?", *filter.CertificateStatus)
		}
	}

	var bundles []*domain.GranularCertificateBundle
	err := q.Order("bundle_id_range_start ASC").Find(&bundles).Error
	return bundles, err
}

func (r *repo) MaxCertificateID(ctx context.Context, db *gorm.DB, deviceID snowflake.ID) (int64, error) {
	var max *int64
	err := db.WithContext(ctx).
		Model(&domain.GranularCertificateBundle{}).
		Where("device_id = ? AND certificate_status <> ?", deviceID, domain.StatusWithdrawn).
		Select("MAX(bundle_id_range_end)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repo) MaxProductionEnd(ctx context.Context, db *gorm.DB, deviceID snowflake.ID) (time.Time, error) {
	// MAX over zero rows yields NULL, which cannot scan into time.Time.
	var max sql.NullTime
	err := db.WithContext(ctx).
		Model(&domain.GranularCertificateBundle{}).
		Where("device_id = ? AND certificate_status <> ?", deviceID, domain.StatusWithdrawn).
		Select("MAX(production_ending_interval)").
		Scan(&max).Error
	if err != nil {
		return time.Time{}, err
	}
	if !max.Valid {
		return time.Time{}, nil
	}
	return max.Time, nil
}
