package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"red-envelope/internal/config"
	"red-envelope/internal/domain/entity"
	"red-envelope/internal/domain/repository"
	"red-envelope/internal/infrastructure/chain"
	"red-envelope/internal/infrastructure/metrics"
)

type envelopeRepository struct {
	config   *config.Config
	contract chain.EnvelopeContract
	cache    Cache
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewEnvelopeRepository(cfg *config.Config, contract chain.EnvelopeContract, cache Cache, m *metrics.Metrics, logger *zap.Logger) repository.EnvelopeRepository {
	return &envelopeRepository{
		config:   cfg,
		contract: contract,
		cache:    cache,
		metrics:  m,
		logger:   logger,
	}
}

func envelopeKey(id uint64) string {
	return envelopeKeyPrefix + strconv.FormatUint(id, 10)
}

func viewerKey(id uint64, viewer common.Address) string {
	return viewerKeyPrefix + strconv.FormatUint(id, 10) + ":" + viewer.Hex()
}

func (r *envelopeRepository) TotalEnvelopes(ctx context.Context) (uint64, error) {
	total, err := r.contract.TotalEnvelopes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get total envelopes: %w", err)
	}
	return total, nil
}

func (r *envelopeRepository) GetEnvelope(ctx context.Context, id uint64) (*entity.Envelope, error) {
	var cached entity.Envelope
	hit, err := r.cache.GetJSON(ctx, envelopeKey(id), &cached)
	if err != nil {
		r.logger.Debug("Envelope cache read failed", zap.Uint64("id", id), zap.Error(err))
	}
	r.metrics.CacheLookup("envelope", hit)
	if hit {
		return &cached, nil
	}

	return r.RefreshEnvelope(ctx, id)
}

func (r *envelopeRepository) RefreshEnvelope(ctx context.Context, id uint64) (*entity.Envelope, error) {
	env, err := r.contract.EnvelopeInfo(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope %d: %w", id, err)
	}

	if err := r.cache.SetJSON(ctx, envelopeKey(id), env, r.config.Cache.EnvelopeTTL); err != nil {
		r.logger.Warn("Failed to cache envelope", zap.Uint64("id", id), zap.Error(err))
	}

	return env, nil
}

func (r *envelopeRepository) GetViewerFlags(ctx context.Context, id uint64, viewer common.Address) (*entity.ViewerFlags, error) {
	key := viewerKey(id, viewer)

	var cached entity.ViewerFlags
	hit, err := r.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		r.logger.Debug("Viewer cache read failed", zap.String("key", key), zap.Error(err))
	}
	r.metrics.CacheLookup("viewer", hit)
	if hit {
		return &cached, nil
	}

	hasClaimed, err := r.contract.HasClaimed(ctx, id, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to check claim of %s on %d: %w", viewer.Hex(), id, err)
	}
	canClaim, reason, err := r.contract.CanClaim(ctx, id, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to check eligibility of %s on %d: %w", viewer.Hex(), id, err)
	}

	flags := &entity.ViewerFlags{
		Viewer:     viewer.Hex(),
		HasClaimed: hasClaimed,
		CanClaim:   canClaim,
		Reason:     reason,
	}

	if err := r.cache.SetJSON(ctx, key, flags, r.config.Cache.ViewerTTL); err != nil {
		r.logger.Warn("Failed to cache viewer flags", zap.String("key", key), zap.Error(err))
	}

	return flags, nil
}

func (r *envelopeRepository) GetClaims(ctx context.Context, id uint64) ([]entity.Claim, error) {
	claimers, err := r.contract.Claimers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get claimers of %d: %w", id, err)
	}

	claims := make([]entity.Claim, 0, len(claimers))
	for _, claimer := range claimers {
		amount, err := r.contract.ClaimAmount(ctx, id, claimer)
		if err != nil {
			return nil, fmt.Errorf("failed to get claim amount of %s on %d: %w", claimer.Hex(), id, err)
		}
		claims = append(claims, entity.Claim{
			Claimer:   claimer.Hex(),
			AmountWei: amount.String(),
			AmountEth: entity.FormatEther(amount),
		})
	}

	return claims, nil
}
