package certificate

import (
	"github.com/voltgrid/gc-registry/internal/certificate/repository"
	"github.com/voltgrid/gc-registry/internal/certificate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("certificate",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
