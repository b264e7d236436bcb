package meterdata

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	certdomain "github.com/voltgrid/gc-registry/internal/certificate/domain"
	"github.com/voltgrid/gc-registry/internal/clock"
	"github.com/voltgrid/gc-registry/internal/config"
	devicedomain "github.com/voltgrid/gc-registry/internal/device/domain"
	measurementdomain "github.com/voltgrid/gc-registry/internal/measurement/domain"
	measurementrepo "github.com/voltgrid/gc-registry/internal/measurement/repository"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestClient(t *testing.T, name string) (*ManualSubmissionClient, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&measurementdomain.MeasurementReport{}))

	fakeClock := clock.NewFakeClock(time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC))
	client := NewManualSubmissionClient(ManualParams{
		Read:  db.ReaderDB{DB: conn},
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Cfg:   config.Config{CertificateExpiryYears: 2},
		Repo:  measurementrepo.Provide(),
	})
	return client, conn, fakeClock
}

func testDevice() *devicedomain.Device {
	return &devicedomain.Device{
		ID:           42,
		DeviceName:   "turbine",
		EnergySource: string(certdomain.SourceWind),
		AccountID:    100,
	}
}

func TestGetReadings_NoneFound(t *testing.T) {
	client, _, _ := newTestClient(t, "meterdata_none")

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.GetReadings(context.Background(), 42, from, from.Add(time.Hour))
	assert.ErrorIs(t, err, measurementdomain.ErrNoReadings)
}

func TestGetReadings_BoundsAreInclusive(t *testing.T) {
	client, conn, _ := newTestClient(t, "meterdata_bounds")
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	inside := &measurementdomain.MeasurementReport{
		ID: 1, DeviceID: 42,
		IntervalStartDatetime: from,
		IntervalEndDatetime:   from.Add(time.Hour),
		IntervalUsage:         1000,
	}
	outside := &measurementdomain.MeasurementReport{
		ID: 2, DeviceID: 42,
		IntervalStartDatetime: from.Add(time.Hour),
		IntervalEndDatetime:   from.Add(2 * time.Hour),
		IntervalUsage:         500,
	}
	require.NoError(t, conn.Create(inside).Error)
	require.NoError(t, conn.Create(outside).Error)

	readings, err := client.GetReadings(context.Background(), 42, from, from.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, int64(1000), readings[0].IntervalUsage)
}

func TestMapReadingsToBundles(t *testing.T) {
	client, _, fakeClock := newTestClient(t, "meterdata_map")
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	readings := []*measurementdomain.MeasurementReport{
		{DeviceID: 42, IntervalStartDatetime: start, IntervalEndDatetime: start.Add(time.Hour), IntervalUsage: 1000},
		{DeviceID: 42, IntervalStartDatetime: start.Add(time.Hour), IntervalEndDatetime: start.Add(2 * time.Hour), IntervalUsage: 500},
	}

	bundles := client.MapReadingsToBundles(readings, testDevice(), 100, 7, 1)
	require.Len(t, bundles, 2)

	first, second := bundles[0], bundles[1]
	assert.Equal(t, int64(1), first.BundleIDRangeStart)
	assert.Equal(t, int64(1000), first.BundleIDRangeEnd)
	assert.Equal(t, int64(1000), first.BundleQuantity)
	assert.Equal(t, int64(1001), second.BundleIDRangeStart)
	assert.Equal(t, int64(1500), second.BundleIDRangeEnd)

	for _, b := range bundles {
		assert.Equal(t, certdomain.StatusActive, b.CertificateStatus)
		assert.Equal(t, certdomain.CarrierElectricity, b.EnergyCarrier)
		assert.Equal(t, certdomain.SourceWind, b.EnergySource)
		assert.Equal(t, int64(1), b.FaceValue)
		assert.Empty(t, b.Hash)
		assert.Equal(t, fakeClock.Now().AddDate(0, 0, 730), b.ExpiryDatestamp)
	}
	assert.Equal(t, "42-2024-03-01T00:00:00Z", first.IssuanceID)
	assert.Equal(t, "42-2024-03-01T01:00:00Z", second.IssuanceID)
}
