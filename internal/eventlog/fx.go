package eventlog

import (
	"github.com/voltgrid/gc-registry/internal/eventlog/repository"
	"github.com/voltgrid/gc-registry/internal/eventlog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("eventlog",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
