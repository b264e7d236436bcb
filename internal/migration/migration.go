// Package migration creates the registry schema on startup so a fresh
// deployment is usable out of the box. Both stores receive the same schema;
// the read mirror holds full copies of every table.
package migration

import (
	accountdomain "github.com/voltgrid/gc-registry/internal/account/domain"
	certdomain "github.com/voltgrid/gc-registry/internal/certificate/domain"
	devicedomain "github.com/voltgrid/gc-registry/internal/device/domain"
	eventdomain "github.com/voltgrid/gc-registry/internal/eventlog/domain"
	measurementdomain "github.com/voltgrid/gc-registry/internal/measurement/domain"
	organisationdomain "github.com/voltgrid/gc-registry/internal/organisation/domain"
	userdomain "github.com/voltgrid/gc-registry/internal/user/domain"
	"gorm.io/gorm"
)

func models() []any {
	return []any{
		&organisationdomain.Organisation{},
		&accountdomain.Account{},
		&userdomain.User{},
		&devicedomain.Device{},
		&measurementdomain.MeasurementReport{},
		&certdomain.IssuanceMetaData{},
		&certdomain.GranularCertificateBundle{},
		&certdomain.GranularCertificateAction{},
		&eventdomain.Event{},
	}
}

// Migrate applies the registry schema to one store.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(models()...)
}
