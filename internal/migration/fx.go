package migration

import (
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/fx"
)

var Module = fx.Module("migration",
	fx.Invoke(func(write db.WriterDB, read db.ReaderDB) error {
		if err := Migrate(write.DB); err != nil {
			return err
		}
		return Migrate(read.DB)
	}),
)
