// Package service runs the issuance pipeline: meter readings in, validated
// hash-anchored certificate bundles out.
package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	certdomain "github.com/voltgrid/gc-registry/internal/certificate/domain"
	"github.com/voltgrid/gc-registry/internal/certificate/lineage"
	certservice "github.com/voltgrid/gc-registry/internal/certificate/service"
	"github.com/voltgrid/gc-registry/internal/clock"
	"github.com/voltgrid/gc-registry/internal/config"
	"github.com/voltgrid/gc-registry/internal/cqrs"
	devicedomain "github.com/voltgrid/gc-registry/internal/device/domain"
	deviceservice "github.com/voltgrid/gc-registry/internal/device/service"
	measurementdomain "github.com/voltgrid/gc-registry/internal/measurement/domain"
	"github.com/voltgrid/gc-registry/internal/meterdata"
	"github.com/voltgrid/gc-registry/internal/observability/metrics"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoDevices = errors.New("no_devices_registered")

type Params struct {
	fx.In

	Read    db.ReaderDB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Cfg     config.Config
	Bundles certdomain.Repository
	Certs   *certservice.Service
	Devices devicedomain.Repository
	Caps    *deviceservice.Service
	Meter   meterdata.Client
	CQRS    *cqrs.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	read    *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	cfg     config.Config
	bundles certdomain.Repository
	certs   *certservice.Service
	devices devicedomain.Repository
	caps    *deviceservice.Service
	meter   meterdata.Client
	cqrs    *cqrs.Service
	metrics *metrics.Metrics

	mu          sync.Mutex
	deviceLocks map[snowflake.ID]*sync.Mutex
}

func NewService(p Params) *Service {
	return &Service{
		read:        p.Read.DB,
		log:         p.Log.Named("issuance.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		cfg:         p.Cfg,
		bundles:     p.Bundles,
		certs:       p.Certs,
		devices:     p.Devices,
		caps:        p.Caps,
		meter:       p.Meter,
		cqrs:        p.CQRS,
		metrics:     p.Metrics,
		deviceLocks: map[snowflake.ID]*sync.Mutex{},
	}
}

// lockDevice serialises issuance per device. Two concurrent runs over the
// same device would both read the same max certificate ID and issue
// overlapping ranges.
func (s *Service) lockDevice(deviceID snowflake.ID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.deviceLocks[deviceID]
	if !ok {
		lock = &sync.Mutex{}
		s.deviceLocks[deviceID] = lock
	}
	return lock
}

// IssueForDevice issues certificates for one device over [from, to]. Periods
// already certified are skipped; a nil result with a nil error means there
// was nothing to issue.
func (s *Service) IssueForDevice(ctx context.Context, device *devicedomain.Device, from, to time.Time, metadataID snowflake.ID) ([]*certdomain.GranularCertificateBundle, error) {
	if device.MeterDataID == nil {
		s.log.Warn("device has no meter data source, skipping issuance",
			zap.Int64("device_id", int64(device.ID)))
		return nil, nil
	}

	lock := s.lockDevice(device.ID)
	lock.Lock()
	defer lock.Unlock()

	maxIssued, err := s.bundles.MaxProductionEnd(ctx, s.read, device.ID)
	if err != nil {
		return nil, err
	}
	if !maxIssued.IsZero() && !maxIssued.Before(to) {
		s.log.Info("period already certified",
			zap.Int64("device_id", int64(device.ID)),
			zap.Time("from", from),
			zap.Time("to", to),
		)
		return nil, nil
	}
	if maxIssued.After(from) {
		from = maxIssued
	}

	readings, err := s.meter.GetReadings(ctx, device.ID, from, to)
	if err != nil {
		if errors.Is(err, measurementdomain.ErrNoReadings) {
			return nil, nil
		}
		return nil, err
	}

	maxCertID, err := s.bundles.MaxCertificateID(ctx, s.read, device.ID)
	if err != nil {
		return nil, err
	}

	candidates := s.meter.MapReadingsToBundles(readings, device, device.AccountID, metadataID, maxCertID+1)
	if len(candidates) == 0 {
		return nil, nil
	}

	whMax, err := s.caps.CapacityWh(ctx, device.ID, s.cfg.CertificateGranularityHours)
	if err != nil {
		return nil, err
	}

	entities := make([]cqrs.Entity, 0, len(candidates))
	var issued int64
	for _, bundle := range candidates {
		if err := s.certs.ValidateBundle(bundle, whMax, maxCertID); err != nil {
			return nil, err
		}
		bundle.ID = s.genID.Generate()
		// Root issuances anchor the hash chain with an empty nonce.
		bundle.Hash = lineage.BundleHash(bundle, "")
		maxCertID = bundle.BundleIDRangeEnd
		issued += bundle.BundleQuantity
		entities = append(entities, bundle)
	}

	if err := s.cqrs.Create(ctx, entities...); err != nil {
		return nil, err
	}
	s.metrics.RecordIssued(strconv.FormatInt(int64(device.ID), 10), issued)

	s.log.Info("certificates issued",
		zap.Int64("device_id", int64(device.ID)),
		zap.Int("bundles", len(candidates)),
		zap.Int64("certificates", issued),
	)
	return candidates, nil
}

// IssueInDateRange runs issuance for every registered device. Devices that
// cannot be issued are skipped; the run continues with the rest.
func (s *Service) IssueInDateRange(ctx context.Context, from, to time.Time, metadataID snowflake.ID) ([]*certdomain.GranularCertificateBundle, error) {
	devices, err := s.devices.FindAll(ctx, s.read)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}

	var all []*certdomain.GranularCertificateBundle
	for _, device := range devices {
		issued, err := s.IssueForDevice(ctx, device, from, to, metadataID)
		if err != nil {
			s.log.Error("issuance failed for device",
				zap.Int64("device_id", int64(device.ID)),
				zap.Error(err),
			)
			continue
		}
		all = append(all, issued...)
	}
	return all, nil
}

// CreateMetadata registers the issuing body characteristics for a run and
// returns the stored record.
func (s *Service) CreateMetadata(ctx context.Context, metadata *certdomain.IssuanceMetaData) (*certdomain.IssuanceMetaData, error) {
	if metadata.ID == 0 {
		metadata.ID = s.genID.Generate()
	}
	if err := s.cqrs.Create(ctx, metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}
