package indexer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"red-envelope/internal/config"
	"red-envelope/internal/usecase"
)

var Module = fx.Module("indexer",
	fx.Provide(NewIndexer),
	fx.Invoke(func(lc fx.Lifecycle, idx *Indexer) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				idx.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return idx.Stop(ctx)
			},
		})
	}),
)

// Indexer keeps the envelope index fresh by running Sync on a ticker.
type Indexer struct {
	sync     usecase.SyncUsecase
	interval time.Duration
	enabled  bool
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIndexer(cfg *config.Config, syncer usecase.SyncUsecase, logger *zap.Logger) *Indexer {
	return &Indexer{
		sync:     syncer,
		interval: cfg.Indexer.Interval,
		enabled:  cfg.Indexer.Enabled,
		logger:   logger.Named("indexer"),
	}
}

// Start launches the loop. The first sync runs immediately.
func (i *Indexer) Start() {
	if !i.enabled {
		i.logger.Info("Indexer disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	i.cancel = cancel

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.run(ctx)
	}()

	i.logger.Info("Indexer started", zap.Duration("interval", i.interval))
}

// Stop cancels the loop and waits for an in-flight sync, bounded by ctx.
func (i *Indexer) Stop(ctx context.Context) error {
	if i.cancel == nil {
		return nil
	}
	i.cancel()

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		i.logger.Info("Indexer stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Indexer) run(ctx context.Context) {
	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	i.syncOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.syncOnce(ctx)
		}
	}
}

func (i *Indexer) syncOnce(ctx context.Context) {
	started := time.Now()
	result, err := i.sync.Sync(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		i.logger.Error("Envelope sync failed", zap.Error(err))
		return
	}

	i.logger.Info("Envelope sync completed",
		zap.Uint64("total", result.Total),
		zap.Int("synced", result.Synced),
		zap.Int("failed", result.Failed),
		zap.Duration("took", time.Since(started)),
	)
}
