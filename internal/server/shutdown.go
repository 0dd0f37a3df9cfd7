package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"orders-dashboard/internal/config"
)

const hookTimeout = 10 * time.Second

// ShutdownHook releases a resource once the HTTP server has drained.
type ShutdownHook struct {
	Name string
	Fn   func(ctx context.Context) error
}

type GracefulServer struct {
	server *http.Server
	logger *slog.Logger
	cfg    config.ServerConfig
	hooks  []ShutdownHook
	mu     sync.Mutex
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, cfg config.ServerConfig) *GracefulServer {
	return &GracefulServer{
		server: server,
		logger: logger,
		cfg:    cfg,
	}
}

// RegisterShutdownHook adds fn to run during shutdown. Hooks run after the
// HTTP server stops, in reverse registration order.
func (gs *GracefulServer) RegisterShutdownHook(name string, fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, ShutdownHook{Name: name, Fn: fn})
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (gs *GracefulServer) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		gs.logger.Info("starting server",
			"addr", gs.server.Addr,
			"read_timeout", gs.cfg.ReadTimeout,
			"write_timeout", gs.cfg.WriteTimeout,
		)
		serverErrors <- gs.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		gs.logger.Info("shutdown signal received", "cause", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), gs.cfg.ShutdownTimeout)
		defer cancel()

		return gs.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the HTTP server and then runs every hook, returning all
// failures joined together.
func (gs *GracefulServer) Shutdown(ctx context.Context) error {
	gs.logger.Info("starting graceful shutdown", "timeout", gs.cfg.ShutdownTimeout)

	var errs []error
	if err := gs.server.Shutdown(ctx); err != nil {
		gs.logger.Error("HTTP server shutdown failed", "error", err)
		errs = append(errs, fmt.Errorf("HTTP server shutdown failed: %w", err))
	} else {
		gs.logger.Info("HTTP server stopped gracefully")
	}

	gs.mu.Lock()
	hooks := make([]ShutdownHook, len(gs.hooks))
	copy(hooks, gs.hooks)
	gs.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		if err := gs.runHook(ctx, hook); err != nil {
			gs.logger.Error("shutdown hook failed", "hook", hook.Name, "error", err)
			errs = append(errs, fmt.Errorf("shutdown hook %s failed: %w", hook.Name, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	gs.logger.Info("graceful shutdown completed")
	return nil
}

func (gs *GracefulServer) runHook(ctx context.Context, hook ShutdownHook) error {
	hookCtx, cancel := context.WithTimeout(ctx, hookTimeout)
	defer cancel()

	gs.logger.Debug("executing shutdown hook", "hook", hook.Name)
	return hook.Fn(hookCtx)
}
