package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/voltgrid/gc-registry/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialect resolves the gorm dialector for a store config. Postgres is the
// production store; sqlite exists for local runs and tests.
func Dialect(cfg config.StoreConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.Port,
			cfg.SSLMode,
		)), nil
	case "sqlite":
		return sqlite.Open(cfg.Name), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.Type)
	}
}
