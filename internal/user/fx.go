package user

import (
	"github.com/voltgrid/gc-registry/internal/user/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("user",
	fx.Provide(repository.Provide),
)
