package measurement

import (
	"github.com/voltgrid/gc-registry/internal/measurement/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("measurement",
	fx.Provide(repository.Provide),
)
