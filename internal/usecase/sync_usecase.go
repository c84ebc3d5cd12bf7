package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"red-envelope/internal/config"
	"red-envelope/internal/domain/entity"
	"red-envelope/internal/domain/repository"
	"red-envelope/internal/infrastructure/metrics"
)

// SyncResult summarizes one indexer pass.
type SyncResult struct {
	Total   uint64 `json:"total"`
	Synced  int    `json:"synced"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

type SyncUsecase interface {
	// Sync refreshes the newest envelopes plus every envelope that can still
	// change, and writes them to the index.
	Sync(ctx context.Context) (*SyncResult, error)
}

type syncUsecase struct {
	envelopes repository.EnvelopeRepository
	index     repository.EnvelopeIndexRepository
	config    *config.Config
	clock     Clock
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewSyncUsecase(
	envelopes repository.EnvelopeRepository,
	index repository.EnvelopeIndexRepository,
	cfg *config.Config,
	clock Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) SyncUsecase {
	return &syncUsecase{
		envelopes: envelopes,
		index:     index,
		config:    cfg,
		clock:     clock,
		metrics:   m,
		logger:    logger,
	}
}

func (u *syncUsecase) Sync(ctx context.Context) (result *SyncResult, err error) {
	defer func() {
		synced := 0
		if result != nil {
			synced = result.Synced
		}
		u.metrics.IndexerRun(synced, err)
	}()

	total, err := u.envelopes.TotalEnvelopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("read envelope count: %w", err)
	}

	open, err := u.index.OpenIDs(ctx, u.clock())
	if err != nil {
		return nil, fmt.Errorf("read open envelopes: %w", err)
	}

	ids := syncTargets(total, u.config.Indexer.Window, open)
	result = &SyncResult{Total: total}

	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		env, err := u.envelopes.RefreshEnvelope(ctx, id)
		if errors.Is(err, entity.ErrEnvelopeNotFound) {
			result.Skipped++
			continue
		}
		if err != nil {
			u.logger.Warn("Failed to refresh envelope", zap.Uint64("id", id), zap.Error(err))
			result.Failed++
			continue
		}

		if err := u.index.Upsert(ctx, env); err != nil {
			u.logger.Warn("Failed to index envelope", zap.Uint64("id", id), zap.Error(err))
			result.Failed++
			continue
		}
		result.Synced++
	}

	u.logger.Debug("Envelope sync finished",
		zap.Uint64("total", result.Total),
		zap.Int("synced", result.Synced),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// syncTargets merges the newest window ids below total with the open ids,
// dropping duplicates and ids the contract has not issued. Ids start at 0.
// A window of zero or less covers every id.
func syncTargets(total uint64, window int, open []uint64) []uint64 {
	seen := make(map[uint64]struct{})

	var first uint64
	if window > 0 && total > uint64(window) {
		first = total - uint64(window)
	}
	for id := first; id < total; id++ {
		seen[id] = struct{}{}
	}
	for _, id := range open {
		if id < total {
			seen[id] = struct{}{}
		}
	}

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
