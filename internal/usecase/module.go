package usecase

import (
	"time"

	"go.uber.org/fx"
)

// Clock returns the current time. Tests replace it with a fixed instant.
type Clock func() time.Time

var Module = fx.Module("usecase",
	fx.Provide(func() Clock { return time.Now }),
	fx.Provide(NewEnvelopeUsecase),
	fx.Provide(NewNetworkUsecase),
	fx.Provide(NewSyncUsecase),
)
