package repository

import (
	"go.uber.org/fx"

	"red-envelope/internal/infrastructure/redis"
)

// provideCache exposes the Redis client through the narrow Cache interface.
func provideCache(client *redis.RedisClient) Cache {
	return client
}

var Module = fx.Module("repository",
	fx.Provide(provideCache),
	fx.Provide(NewEnvelopeRepository),
	fx.Provide(NewContractRepository),
	fx.Provide(NewEnvelopeIndexRepository),
)
