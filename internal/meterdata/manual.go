package meterdata

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	certdomain "github.com/voltgrid/gc-registry/internal/certificate/domain"
	"github.com/voltgrid/gc-registry/internal/clock"
	"github.com/voltgrid/gc-registry/internal/config"
	devicedomain "github.com/voltgrid/gc-registry/internal/device/domain"
	measurementdomain "github.com/voltgrid/gc-registry/internal/measurement/domain"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const daysPerYear = 365

type ManualParams struct {
	fx.In

	Read  db.ReaderDB
	Log   *zap.Logger
	Clock clock.Clock
	Cfg   config.Config
	Repo  measurementdomain.Repository
}

// ManualSubmissionClient sources readings from measurement reports submitted
// directly to the registry.
type ManualSubmissionClient struct {
	read  *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	cfg   config.Config
	repo  measurementdomain.Repository
}

func NewManualSubmissionClient(p ManualParams) *ManualSubmissionClient {
	return &ManualSubmissionClient{
		read:  p.Read.DB,
		log:   p.Log.Named("meterdata.manual"),
		clock: p.Clock,
		cfg:   p.Cfg,
		repo:  p.Repo,
	}
}

func (c *ManualSubmissionClient) Name() string { return "ManualSubmissionClient" }

func (c *ManualSubmissionClient) GetReadings(ctx context.Context, deviceID snowflake.ID, start, end time.Time) ([]*measurementdomain.MeasurementReport, error) {
	readings, err := c.repo.FindByDeviceInRange(ctx, c.read, deviceID, start, end)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		c.log.Warn("no meter readings found",
			zap.Int64("device_id", int64(deviceID)),
			zap.Time("start", start),
			zap.Time("end", end),
		)
		return nil, measurementdomain.ErrNoReadings
	}
	return readings, nil
}

func (c *ManualSubmissionClient) MapReadingsToBundles(readings []*measurementdomain.MeasurementReport, device *devicedomain.Device, accountID, metadataID snowflake.ID, rangeStart int64) []*certdomain.GranularCertificateBundle {
	now := c.clock.Now()
	expiry := now.AddDate(0, 0, daysPerYear*c.cfg.CertificateExpiryYears)

	bundles := make([]*certdomain.GranularCertificateBundle, 0, len(readings))
	for _, reading := range readings {
		if len(bundles) > 0 {
			rangeStart = bundles[len(bundles)-1].BundleIDRangeEnd + 1
		}
		// One certificate per Wh of production, so the range covers exactly
		// interval_usage IDs.
		rangeEnd := rangeStart + reading.IntervalUsage - 1

		bundles = append(bundles, &certdomain.GranularCertificateBundle{
			IssuanceID:                 certdomain.NewIssuanceID(device.ID, reading.IntervalStartDatetime),
			CertificateStatus:          certdomain.StatusActive,
			AccountID:                  accountID,
			BundleIDRangeStart:         rangeStart,
			BundleIDRangeEnd:           rangeEnd,
			BundleQuantity:             rangeEnd - rangeStart + 1,
			EnergyCarrier:              certdomain.CarrierElectricity,
			EnergySource:               certdomain.EnergySource(device.EnergySource),
			FaceValue:                  1,
			DeviceID:                   device.ID,
			MetadataID:                 metadataID,
			ProductionStartingInterval: reading.IntervalStartDatetime,
			ProductionEndingInterval:   reading.IntervalEndDatetime,
			IssuanceDatestamp:          now,
			ExpiryDatestamp:            expiry,
			IsStorage:                  device.IsStorage,
		})
	}
	return bundles
}
