// Package gateway serves cronbot's status and metrics over HTTP.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/flemzord/cronbot/internal/core"
	"github.com/flemzord/cronbot/internal/status"
)

// Compile-time interface guards.
var (
	_ core.Starter = (*Gateway)(nil)
	_ core.Stopper = (*Gateway)(nil)
)

// Gateway is the optional HTTP listener exposing /healthz and /metrics.
type Gateway struct {
	config  Config
	store   *status.Store
	metrics http.Handler
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	server *http.Server
	addr   net.Addr
}

// New builds a Gateway. metrics may be nil, in which case /metrics is not
// mounted.
func New(cfg Config, store *status.Store, metrics http.Handler, logger *slog.Logger) (*Gateway, error) {
	cfg.defaults()
	if _, err := net.ResolveTCPAddr("tcp", cfg.Bind); err != nil {
		return nil, fmt.Errorf("gateway: invalid bind address %q: %w", cfg.Bind, err)
	}
	if store == nil {
		return nil, errors.New("gateway: status store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:  cfg,
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Start listens on the configured address and serves in the background.
func (g *Gateway) Start() error {
	server := &http.Server{
		Handler:      g.Handler(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}

	g.mu.Lock()
	g.server = server
	g.addr = ln.Addr()
	g.mu.Unlock()

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addr
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	server := g.server
	g.server = nil
	g.mu.Unlock()

	if server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return server.Shutdown(shutdownCtx)
}
