package db

import (
	"github.com/voltgrid/gc-registry/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideWriter(cfg config.Config, log *zap.Logger) (WriterDB, error) {
	return OpenWriter(cfg.WriteDB, log.Named("db.writer"))
}

func provideReader(cfg config.Config, log *zap.Logger) (ReaderDB, error) {
	return OpenReader(cfg.ReadDB, log.Named("db.reader"))
}

// Module wires the two logical stores as distinct typed handles.
var Module = fx.Module("db",
	fx.Provide(
		provideWriter,
		provideReader,
	),
)
