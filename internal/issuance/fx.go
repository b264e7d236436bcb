package issuance

import (
	"github.com/voltgrid/gc-registry/internal/issuance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("issuance",
	fx.Provide(service.NewService),
)
