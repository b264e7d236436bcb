// Package lineage derives and verifies the hash chain linking split bundle
// children to their parent.
package lineage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/voltgrid/gc-registry/internal/certificate/domain"
)

var ErrLineageMismatch = errors.New("lineage_mismatch")

// immutableFields is the canonical serialisation subset. Row identity,
// timestamps of record keeping, and every mutable attribute stay out so that
// transfers and status changes never alter a bundle's hash.
type immutableFields struct {
	IssuanceID                          string               `json:"issuance_id"`
	BundleQuantity                      int64                `json:"bundle_quantity"`
	EnergyCarrier                       domain.EnergyCarrier `json:"energy_carrier"`
	EnergySource                        domain.EnergySource  `json:"energy_source"`
	FaceValue                           int64                `json:"face_value"`
	IssuancePostEnergyCarrierConversion bool                 `json:"issuance_post_energy_carrier_conversion"`
	EmissionsFactorProductionDevice     *float64             `json:"emissions_factor_production_device"`
	EmissionsFactorSource               *string              `json:"emissions_factor_source"`
	DeviceID                            snowflake.ID         `json:"device_id"`
	MetadataID                          snowflake.ID         `json:"metadata_id"`
	ProductionStartingInterval          time.Time            `json:"production_starting_interval"`
	ProductionEndingInterval            time.Time            `json:"production_ending_interval"`
	IssuanceDatestamp                   time.Time            `json:"issuance_datestamp"`
	ExpiryDatestamp                     time.Time            `json:"expiry_datestamp"`
	IsStorage                           bool                 `json:"is_storage"`
}

// BundleHash computes the lineage hash for a bundle. nonce is the parent
// bundle's hash, or empty for a root issuance.
func BundleHash(b *domain.GranularCertificateBundle, nonce string) string {
	payload, err := json.Marshal(immutableFields{
		IssuanceID:                          b.IssuanceID,
		BundleQuantity:                      b.BundleQuantity,
		EnergyCarrier:                       b.EnergyCarrier,
		EnergySource:                        b.EnergySource,
		FaceValue:                           b.FaceValue,
		IssuancePostEnergyCarrierConversion: b.IssuancePostEnergyCarrierConversion,
		EmissionsFactorProductionDevice:     b.EmissionsFactorProductionDevice,
		EmissionsFactorSource:               b.EmissionsFactorSource,
		DeviceID:                            b.DeviceID,
		MetadataID:                          b.MetadataID,
		ProductionStartingInterval:          b.ProductionStartingInterval,
		ProductionEndingInterval:            b.ProductionEndingInterval,
		IssuanceDatestamp:                   b.IssuanceDatestamp,
		ExpiryDatestamp:                     b.ExpiryDatestamp,
		IsStorage:                           b.IsStorage,
	})
	if err != nil {
		// Marshalling a struct of plain fields cannot fail.
		panic(err)
	}

	sum := sha256.Sum256(append(payload, []byte(nonce)...))
	return hex.EncodeToString(sum[:])
}

// VerifyLineage recomputes the child's hash against the parent and reports
// ErrLineageMismatch if the stored hash disagrees.
func VerifyLineage(parent, child *domain.GranularCertificateBundle) error {
	if BundleHash(child, parent.Hash) != child.Hash {
		return ErrLineageMismatch
	}
	return nil
}
