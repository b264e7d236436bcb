package device

import (
	"github.com/voltgrid/gc-registry/internal/device/repository"
	"github.com/voltgrid/gc-registry/internal/device/service"
	"go.uber.org/fx"
)

var Module = fx.Module("device",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
