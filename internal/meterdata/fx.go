package meterdata

import (
	"go.uber.org/fx"
)

var Module = fx.Module("meterdata",
	fx.Provide(
		fx.Annotate(NewManualSubmissionClient, fx.As(new(Client))),
	),
)
