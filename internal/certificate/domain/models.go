// Package domain contains the granular certificate bundle, the action record
// mutating it, and the filter used to match bundles. A bundle is the primary
// unit of issuance and transfer: a contiguous, inclusive range of certificate
// IDs issued to one account for one device and production interval.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type CertificateStatus string

const (
	StatusActive      CertificateStatus = "Active"
	StatusCancelled   CertificateStatus = "Cancelled"
	StatusClaimed     CertificateStatus = "Claimed"
	StatusExpired     CertificateStatus = "Expired"
	StatusWithdrawn   CertificateStatus = "Withdrawn"
	StatusLocked      CertificateStatus = "Locked"
	StatusReserved    CertificateStatus = "Reserved"
	StatusBundleSplit CertificateStatus = "Bundle Split"
)

type EnergyCarrier string

const (
	CarrierElectricity EnergyCarrier = "electricity"
	CarrierNaturalGas  EnergyCarrier = "natural_gas"
	CarrierHydrogen    EnergyCarrier = "hydrogen"
	CarrierHeat        EnergyCarrier = "heat"
	CarrierOther       EnergyCarrier = "other"
)

type EnergySource string

const (
	SourceSolarPV        EnergySource = "solar_pv"
	SourceWind           EnergySource = "wind"
	SourceHydro          EnergySource = "hydro"
	SourceBiomass        EnergySource = "biomass"
	SourceNuclear        EnergySource = "nuclear"
	SourceElectrolysis   EnergySource = "electrolysis"
	SourceGeothermal     EnergySource = "geothermal"
	SourceBatteryStorage EnergySource = "battery_storage"
	SourceCHP            EnergySource = "chp"
	SourceOther          EnergySource = "other"
)

// GranularCertificateBundle is one bundle row. Rows sharing an issuance ID
// are fragments of the same original issuance; splits tombstone the parent
// row and create two child rows under the same issuance ID.
type GranularCertificateBundle struct {
	ID snowflake.ID `gorm:"primaryKey"`
	// IssuanceID is assigned once at first issuance and preserved through
	// every split.
	IssuanceID string `gorm:"type:text;not null;index"`
	// Hash chains this bundle to its parent: sha256 over the immutable
	// field subset concatenated with the parent bundle's hash (empty for a
	// root issuance).
	Hash string `gorm:"type:text;not null"`

	// Mutable attributes.
	CertificateStatus CertificateStatus `gorm:"type:text;not null;column:certificate_status"`
	AccountID         snowflake.ID      `gorm:"not null;index"`
	// Inclusive certificate ID range; BundleQuantity must equal
	// BundleIDRangeEnd - BundleIDRangeStart + 1.
	BundleIDRangeStart int64   `gorm:"not null;column:bundle_id_range_start"`
	BundleIDRangeEnd   int64   `gorm:"not null;column:bundle_id_range_end"`
	BundleQuantity     int64   `gorm:"not null"`
	Beneficiary        *string `gorm:"type:text"`

	// Bundle characteristics, fixed at issuance.
	EnergyCarrier EnergyCarrier `gorm:"type:text;not null"`
	EnergySource  EnergySource  `gorm:"type:text;not null"`
	// FaceValue is the Wh represented by each certificate in the bundle.
	FaceValue                           int64 `gorm:"not null"`
	IssuancePostEnergyCarrierConversion bool  `gorm:"not null;default:false"`

	EmissionsFactorProductionDevice *float64 `gorm:"column:emissions_factor_production_device"`
	EmissionsFactorSource           *string  `gorm:"type:text"`

	DeviceID   snowflake.ID `gorm:"not null;index"`
	MetadataID snowflake.ID `gorm:"not null"`

	ProductionStartingInterval time.Time `gorm:"not null;index"`
	ProductionEndingInterval   time.Time `gorm:"not null"`
	IssuanceDatestamp          time.Time `gorm:"not null"`
	ExpiryDatestamp            time.Time `gorm:"not null"`

	// Storage characteristics.
	IsStorage               bool          `gorm:"not null;default:false"`
	SDRAllocationID         *snowflake.ID `gorm:"column:sdr_allocation_id"`
	StorageEfficiencyFactor *float64      `gorm:"column:storage_efficiency_factor"`

	IsDeleted bool      `gorm:"not null;default:false;column:is_deleted"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (GranularCertificateBundle) TableName() string { return "granular_certificate_bundles" }

func (b *GranularCertificateBundle) GetID() snowflake.ID { return b.ID }

func (b *GranularCertificateBundle) EntityName() string { return "GranularCertificateBundle" }

func (b *GranularCertificateBundle) MarkDeleted() { b.IsDeleted = true }

// Clone returns a copy of the bundle with a zero row identity, used as the
// starting point for split children.
func (b *GranularCertificateBundle) Clone() *GranularCertificateBundle {
	clone := *b
	clone.ID = 0
	clone.CreatedAt = time.Time{}
	return &clone
}

// IssuanceMetaData details the issuing body characteristics and legal status
// shared by the bundles of an issuance run.
type IssuanceMetaData struct {
	ID                          snowflake.ID `gorm:"primaryKey"`
	CountryOfIssuance           string       `gorm:"type:text;not null"`
	ConnectedGridIdentification string       `gorm:"type:text;not null"`
	IssuingBody                 string       `gorm:"type:text;not null"`
	LegalStatus                 *string      `gorm:"type:text"`
	IssuancePurpose             *string      `gorm:"type:text"`
	SupportReceived             *string      `gorm:"type:text"`
	QualitySchemeReference      *string      `gorm:"type:text"`
	DisseminationLevel          *string      `gorm:"type:text"`
	IssueMarketZone             string       `gorm:"type:text;not null"`
	IsDeleted                   bool         `gorm:"not null;default:false;column:is_deleted"`
	CreatedAt                   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (IssuanceMetaData) TableName() string { return "issuance_metadata" }

func (m *IssuanceMetaData) GetID() snowflake.ID { return m.ID }

func (m *IssuanceMetaData) EntityName() string { return "IssuanceMetaData" }

func (m *IssuanceMetaData) MarkDeleted() { m.IsDeleted = true }

type ActionType string

const (
	ActionTransfer ActionType = "transfer"
	ActionCancel   ActionType = "cancel"
	ActionClaim    ActionType = "claim"
	ActionWithdraw ActionType = "withdraw"
	ActionLock     ActionType = "lock"
	ActionReserve  ActionType = "reserve"
)

type ActionResponseStatus string

const (
	ActionAccepted ActionResponseStatus = "accepted"
	ActionRejected ActionResponseStatus = "rejected"
)

// GranularCertificateAction records one lifecycle request against matched
// bundles. The record is persisted whether the action is accepted or
// rejected; ActionResponseStatus is the single authoritative outcome signal.
type GranularCertificateAction struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ActionType ActionType   `gorm:"type:text;not null"`
	// SourceID is the account the action originates from; UserID the actor.
	SourceID snowflake.ID  `gorm:"not null;index"`
	UserID   snowflake.ID  `gorm:"not null"`
	TargetID *snowflake.ID `gorm:"column:target_id"`

	// Either explicit bundle rows or a filter over the source account.
	BundleIDs datatypes.JSONSlice[int64] `gorm:"type:jsonb;column:bundle_ids"`

	// CertificateQuantity splits each matched bundle down to at most this
	// many certificates before acting; CertificatePercentage does the same
	// proportionally. At most one may be set.
	CertificateQuantity   *int64   `gorm:"column:certificate_quantity"`
	CertificatePercentage *float64 `gorm:"column:certificate_percentage"`

	Beneficiary *string `gorm:"type:text"`

	// Filter parameters.
	IssuanceIDs            datatypes.JSONSlice[string] `gorm:"type:jsonb;column:issuance_ids"`
	DeviceID               *snowflake.ID               `gorm:"column:device_id"`
	EnergySource           *EnergySource               `gorm:"type:text;column:energy_source"`
	CertificatePeriodStart *time.Time                  `gorm:"column:certificate_period_start"`
	CertificatePeriodEnd   *time.Time                  `gorm:"column:certificate_period_end"`
	CertificateStatus      *CertificateStatus          `gorm:"type:text;column:certificate_status"`

	// Recurrence parameters for scheduled repeated actions; recorded on the
	// request, executed by an external scheduler.
	RecurrencePeriodUnit     *string `gorm:"type:text"`
	RecurrencePeriodQuantity *int    `gorm:""`
	RecurrenceCount          *int    `gorm:""`

	ActionRequestDatetime   time.Time            `gorm:"not null"`
	ActionCompletedDatetime *time.Time           `gorm:""`
	ActionResponseStatus    ActionResponseStatus `gorm:"type:text"`
	RejectionReason         *string              `gorm:"type:text"`

	IsDeleted bool      `gorm:"not null;default:false;column:is_deleted"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (GranularCertificateAction) TableName() string { return "granular_certificate_actions" }

func (a *GranularCertificateAction) GetID() snowflake.ID { return a.ID }

func (a *GranularCertificateAction) EntityName() string { return "GranularCertificateAction" }

func (a *GranularCertificateAction) MarkDeleted() { a.IsDeleted = true }

// Filter projects the action's filter parameters into a bundle query.
func (a *GranularCertificateAction) Filter() BundleFilter {
	return BundleFilter{
		SourceID:               a.SourceID,
		IssuanceIDs:            a.IssuanceIDs,
		DeviceID:               a.DeviceID,
		EnergySource:           a.EnergySource,
		CertificatePeriodStart: a.CertificatePeriodStart,
		CertificatePeriodEnd:   a.CertificatePeriodEnd,
		CertificateStatus:      a.CertificateStatus,
	}
}

// BundleFilter is a sparse filter over stored bundles. Nil fields impose no
// constraint; supplied fields combine conjunctively. There is no implicit
// status filter.
type BundleFilter struct {
	SourceID               snowflake.ID
	IssuanceIDs            []string
	DeviceID               *snowflake.ID
	EnergySource           *EnergySource
	CertificatePeriodStart *time.Time
	CertificatePeriodEnd   *time.Time
	CertificateStatus      *CertificateStatus
}
