// Package meterdata abstracts the source of production readings used for
// issuance. The registry ships a manual submission client reading from its
// own measurement table; grid operator integrations implement the same
// interface.
package meterdata

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	certdomain "github.com/voltgrid/gc-registry/internal/certificate/domain"
	devicedomain "github.com/voltgrid/gc-registry/internal/device/domain"
	measurementdomain "github.com/voltgrid/gc-registry/internal/measurement/domain"
)

type Client interface {
	Name() string
	// GetReadings returns the device's production readings whose intervals
	// fall inside [start, end].
	GetReadings(ctx context.Context, deviceID snowflake.ID, start, end time.Time) ([]*measurementdomain.MeasurementReport, error)
	// MapReadingsToBundles converts readings into candidate bundles with
	// contiguous certificate ID ranges starting at rangeStart. The candidates
	// carry no row ID and no hash; the issuance pipeline assigns both.
	MapReadingsToBundles(readings []*measurementdomain.MeasurementReport, device *devicedomain.Device, accountID, metadataID snowflake.ID, rangeStart int64) []*certdomain.GranularCertificateBundle
}
