// Package daemon wires the genomed components together and runs the API
// server until a shutdown signal arrives.
package daemon

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"genomed/internal/genomed/files"
	"genomed/internal/genomed/mcp"
	"genomed/internal/genomed/server"
	"genomed/pkg/config"
	"genomed/pkg/logger"
)

// Run loads configuration, builds the component graph, and serves until
// SIGINT/SIGTERM. The MCP service, if running, is stopped during shutdown.
func Run() error {
	cfg, cfgPath, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if level, lvlErr := logger.ParseLevel(cfg.Logging.Level); lvlErr == nil {
		logger.SetLevel(level)
	}

	log := logger.WithField("component", "daemon")
	log.Info("starting genomed", "config", cfgPath, "address", cfg.ListenAddress())

	filesSvc := files.NewService(cfg.Files)
	manager := mcp.NewManager(func() mcp.Service {
		return mcp.NewServer(cfg.MCP)
	})

	api := server.New(cfg, filesSvc, manager)

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddress(),
		Handler: api.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case serveErr := <-errCh:
		log.Error("API server failed", "error", serveErr)
		return serveErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if st := manager.Status(); st.State != mcp.StateStopped {
		if _, stopErr := manager.Stop(ctx); stopErr != nil {
			log.Warn("failed to stop MCP server during shutdown", "error", stopErr)
		}
	}

	if shutdownErr := httpSrv.Shutdown(ctx); shutdownErr != nil {
		log.Warn("API server shutdown incomplete", "error", shutdownErr)
		return shutdownErr
	}

	log.Info("genomed stopped")
	return nil
}
