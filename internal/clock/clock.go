package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall time so request and completion timestamps are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Module provides the system clock.
var Module = fx.Module("clock",
	fx.Provide(
		fx.Annotate(NewSystemClock, fx.As(new(Clock))),
	),
)
