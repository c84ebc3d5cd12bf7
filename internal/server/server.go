package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"red-envelope/internal/config"
	"red-envelope/internal/delivery/http/router"
)

var Module = fx.Module("server",
	fx.Invoke(NewServer),
)

// httpServer owns the listener so a port that cannot be bound fails startup
// instead of surfacing later from a background goroutine.
type httpServer struct {
	app    *fiber.App
	addr   string
	logger *zap.Logger

	ln   net.Listener
	done chan error
}

func newHTTPServer(app *fiber.App, addr string, logger *zap.Logger) *httpServer {
	return &httpServer{app: app, addr: addr, logger: logger}
}

func (s *httpServer) start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.done = make(chan error, 1)

	go func() {
		err := s.app.Listener(ln)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
		s.done <- err
	}()
	return nil
}

// Addr is the bound address, useful when the configured port is 0.
func (s *httpServer) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *httpServer) stop(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return err
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func NewServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	r *router.Router,
	logger *zap.Logger,
) {
	srv := newHTTPServer(r.Setup(), fmt.Sprintf(":%d", cfg.App.Port), logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := srv.start(ctx); err != nil {
				return err
			}
			logger.Info("HTTP server listening",
				zap.Stringer("address", srv.Addr()),
				zap.String("env", cfg.App.Env),
				zap.String("version", config.Version),
				zap.String("contract", cfg.Chain.ContractAddress),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server")
			return srv.stop(ctx)
		},
	})
}
