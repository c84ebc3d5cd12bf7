package repository

import (
	"context"
	"time"
)

const (
	envelopeKeyPrefix = "redenvelope:envelope:"
	viewerKeyPrefix   = "redenvelope:viewer:"
	limitsKey         = "redenvelope:limits"
)

// Cache is the part of the Redis client the repositories need.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}
