package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"red-envelope/internal/config"
	deliveryhttp "red-envelope/internal/delivery/http"
	"red-envelope/internal/indexer"
	"red-envelope/internal/infrastructure/chain"
	"red-envelope/internal/infrastructure/database"
	"red-envelope/internal/infrastructure/logger"
	"red-envelope/internal/infrastructure/metrics"
	"red-envelope/internal/infrastructure/redis"
	"red-envelope/internal/infrastructure/repository"
	"red-envelope/internal/server"
	"red-envelope/internal/usecase"
)

// Options is the full module graph shared by the console binary and the
// Windows service.
func Options() fx.Option {
	return fx.Options(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		metrics.Module,
		database.Module,
		redis.Module,
		chain.Module,
		repository.Module,

		// Business Logic
		usecase.Module,
		indexer.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	)
}

// Application wraps the fx.App for service management. The app is built up
// front so Run and Shutdown never race on it.
type Application struct {
	app    *fx.App
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error // written by Run before done is closed
}

func NewApplication() *Application {
	return newApplication(Options())
}

func newApplication(opts fx.Option) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		app: fx.New(
			fx.Provide(func() context.Context { return ctx }),
			opts,
		),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Run starts the application and blocks until a signal or Shutdown, then
// stops it. Call it once.
func (a *Application) Run() {
	defer close(a.done)

	if err := a.app.Err(); err != nil {
		a.fail("Failed to build application", err)
		return
	}

	startCtx, cancel := context.WithTimeout(context.Background(), a.app.StartTimeout())
	defer cancel()
	if err := a.app.Start(startCtx); err != nil {
		a.fail("Failed to start application", err)
		return
	}

	select {
	case sig := <-a.app.Done():
		bootstrapLogger().Info("Received signal", zap.Stringer("signal", sig))
	case <-a.ctx.Done():
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancelStop()
	if err := a.app.Stop(stopCtx); err != nil {
		a.fail("Failed to stop application", err)
	}
}

func (a *Application) fail(msg string, err error) {
	a.err = err
	bootstrapLogger().Error(msg, zap.Error(err))
}

// Shutdown asks Run to stop the application. It does not wait; use Wait or Done.
func (a *Application) Shutdown() {
	a.cancel()
}

// Done is closed once Run has returned.
func (a *Application) Done() <-chan struct{} {
	return a.done
}

// Err reports why Run returned early or failed to stop. Valid after Done is closed.
func (a *Application) Err() error {
	<-a.done
	return a.err
}

// Wait blocks until the application exits
func (a *Application) Wait() {
	<-a.done
}

// bootstrapLogger is used before the configured logger exists or after it is closed.
func bootstrapLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
