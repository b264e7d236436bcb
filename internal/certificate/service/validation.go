package service

import (
	"math"

	"github.com/voltgrid/gc-registry/internal/certificate/domain"
)

// ValidateBundle checks a candidate bundle against the issuing device before
// it is written. deviceWhMax is the maximum Watt-hours the device can produce
// over one certificate granularity period; deviceMaxCertID is the highest
// certificate ID already issued to the device, 0 when none exist.
func (s *Service) ValidateBundle(b *domain.GranularCertificateBundle, deviceWhMax float64, deviceMaxCertID int64) error {
	// Round the cap to a whole Watt-hour so float noise in the margin
	// product cannot shift the acceptance boundary.
	whCap := int64(math.Round(deviceWhMax * s.cfg.CapacityMargin))
	if b.BundleQuantity >= whCap {
		return &domain.ValidationError{Field: "bundle_quantity", Criteria: "less_than"}
	}
	if b.BundleQuantity != b.BundleIDRangeEnd-b.BundleIDRangeStart+1 {
		return &domain.ValidationError{Field: "bundle_quantity", Criteria: "equal"}
	}
	if b.BundleIDRangeStart != deviceMaxCertID+1 {
		return &domain.ValidationError{Field: "bundle_id_range_start", Criteria: "equal"}
	}
	return nil
}
