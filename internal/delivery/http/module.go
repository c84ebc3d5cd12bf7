package http

import (
	"go.uber.org/fx"

	"red-envelope/internal/delivery/http/handler"
	"red-envelope/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewEnvelopeHandler,
		handler.NewNetworkHandler,
		handler.NewHealthHandler,
		router.NewRouter,
	),
)
