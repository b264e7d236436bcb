package account

import (
	"github.com/voltgrid/gc-registry/internal/account/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("account",
	fx.Provide(repository.Provide),
)
