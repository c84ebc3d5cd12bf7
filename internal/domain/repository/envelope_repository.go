package repository

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"red-envelope/internal/domain/entity"
)

// EnvelopeRepository reads envelope state from the contract, through the cache.
type EnvelopeRepository interface {
	TotalEnvelopes(ctx context.Context) (uint64, error)
	GetEnvelope(ctx context.Context, id uint64) (*entity.Envelope, error)
	// RefreshEnvelope bypasses the cache and stores the fresh read in it.
	RefreshEnvelope(ctx context.Context, id uint64) (*entity.Envelope, error)
	GetViewerFlags(ctx context.Context, id uint64, viewer common.Address) (*entity.ViewerFlags, error)
	GetClaims(ctx context.Context, id uint64) ([]entity.Claim, error)
}

// ContractRepository reads contract-wide and node state.
type ContractRepository interface {
	ChainID(ctx context.Context) (uint64, error)
	ContractAddress() common.Address
	IsPaused(ctx context.Context) (bool, error)
	Owner(ctx context.Context) (common.Address, error)
	GetLimits(ctx context.Context) (*entity.ContractLimits, error)
	GetTransactionEvents(ctx context.Context, txHash common.Hash) (*entity.TransactionEvents, error)
}

// EnvelopeIndexRepository is the local index of envelopes kept by the indexer.
// It stores on-chain fields only; statuses are derived on read.
type EnvelopeIndexRepository interface {
	Upsert(ctx context.Context, env *entity.Envelope) error
	// List returns one page, newest first, and the number of matching rows.
	List(ctx context.Context, filter entity.EnvelopeFilter, now time.Time) ([]*entity.Envelope, int, error)
	// OpenIDs lists envelopes that can still change: active, unexpired, shares left.
	OpenIDs(ctx context.Context, now time.Time) ([]uint64, error)
	Stats(ctx context.Context, now time.Time) (*entity.EnvelopeStats, error)
}
