package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/voltgrid/gc-registry/internal/account"
	"github.com/voltgrid/gc-registry/internal/certificate"
	"github.com/voltgrid/gc-registry/internal/clock"
	"github.com/voltgrid/gc-registry/internal/config"
	"github.com/voltgrid/gc-registry/internal/cqrs"
	"github.com/voltgrid/gc-registry/internal/device"
	"github.com/voltgrid/gc-registry/internal/eventlog"
	"github.com/voltgrid/gc-registry/internal/issuance"
	"github.com/voltgrid/gc-registry/internal/logger"
	"github.com/voltgrid/gc-registry/internal/measurement"
	"github.com/voltgrid/gc-registry/internal/meterdata"
	"github.com/voltgrid/gc-registry/internal/migration"
	"github.com/voltgrid/gc-registry/internal/observability/metrics"
	"github.com/voltgrid/gc-registry/internal/user"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,

		eventlog.Module,
		cqrs.Module,
		migration.Module,

		account.Module,
		user.Module,
		device.Module,
		measurement.Module,
		meterdata.Module,
		certificate.Module,
		issuance.Module,

		fx.Invoke(func(log *zap.Logger, cfg config.Config) {
			log.Info("registry started",
				zap.String("app", cfg.AppName),
				zap.String("version", cfg.AppVersion),
				zap.String("environment", cfg.Environment),
			)
		}),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
