package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"red-envelope/internal/config"
	"red-envelope/internal/domain/entity"
	"red-envelope/internal/domain/repository"
	"red-envelope/internal/infrastructure/chain"
	"red-envelope/internal/infrastructure/metrics"
)

type contractRepository struct {
	config   *config.Config
	contract chain.EnvelopeContract
	cache    Cache
	metrics  *metrics.Metrics
	logger   *zap.Logger

	mu      sync.Mutex
	chainID uint64 // 0 until first read; the node's chain never changes while connected
}

func NewContractRepository(cfg *config.Config, contract chain.EnvelopeContract, cache Cache, m *metrics.Metrics, logger *zap.Logger) repository.ContractRepository {
	return &contractRepository{
		config:   cfg,
		contract: contract,
		cache:    cache,
		metrics:  m,
		logger:   logger,
	}
}

func (r *contractRepository) ChainID(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.chainID != 0 {
		return r.chainID, nil
	}
	id, err := r.contract.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain id: %w", err)
	}
	r.chainID = id
	return id, nil
}

func (r *contractRepository) ContractAddress() common.Address {
	return r.contract.Address()
}

func (r *contractRepository) IsPaused(ctx context.Context) (bool, error) {
	paused, err := r.contract.Paused(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get paused flag: %w", err)
	}
	return paused, nil
}

func (r *contractRepository) Owner(ctx context.Context) (common.Address, error) {
	owner, err := r.contract.Owner(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get contract owner: %w", err)
	}
	return owner, nil
}

func (r *contractRepository) GetLimits(ctx context.Context) (*entity.ContractLimits, error) {
	var cached entity.ContractLimits
	hit, err := r.cache.GetJSON(ctx, limitsKey, &cached)
	if err != nil {
		r.logger.Debug("Limits cache read failed", zap.Error(err))
	}
	r.metrics.CacheLookup("limits", hit)
	if hit {
		return &cached, nil
	}

	limits, err := r.contract.Limits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract limits: %w", err)
	}

	if err := r.cache.SetJSON(ctx, limitsKey, limits, r.config.Cache.LimitsTTL); err != nil {
		r.logger.Warn("Failed to cache contract limits", zap.Error(err))
	}
	return limits, nil
}

func (r *contractRepository) GetTransactionEvents(ctx context.Context, txHash common.Hash) (*entity.TransactionEvents, error) {
	events, err := r.contract.TransactionEvents(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", txHash.Hex(), err)
	}
	return events, nil
}
