package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the bundle query surface. Callers pass the handle to query
// so the same implementation serves the read store and in-flight write
// transactions.
type Repository interface {
	FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]*GranularCertificateBundle, error)
	Search(ctx context.Context, db *gorm.DB, filter BundleFilter) ([]*GranularCertificateBundle, error)
	// MaxCertificateID returns the highest issued certificate ID for a
	// device, or 0 when none exist. Withdrawn bundles are excluded.
	MaxCertificateID(ctx context.Context, db *gorm.DB, deviceID snowflake.ID) (int64, error)
	// MaxProductionEnd returns the latest production ending interval
	// certified for a device, or the zero time when none exist. Withdrawn
	// bundles are excluded.
	MaxProductionEnd(ctx context.Context, db *gorm.DB, deviceID snowflake.ID) (time.Time, error)
}
