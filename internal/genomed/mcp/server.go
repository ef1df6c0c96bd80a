package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"genomed/pkg/config"
	"genomed/pkg/logger"
)

// Service is the handle the Manager owns while the MCP server is up. The
// protocol the server speaks is outside this package; only binding and
// teardown matter here.
type Service interface {
	Start() error
	Shutdown(ctx context.Context) error
	Ports() (httpPort, wsPort int)
}

// Server binds the MCP service's HTTP and WebSocket ports. A port conflict
// surfaces as a Start error, which is exactly what the Manager needs to fall
// back to stopped.
type Server struct {
	httpPort int
	wsPort   int

	httpSrv *http.Server
	wsSrv   *http.Server
	httpLn  net.Listener
	wsLn    net.Listener

	logger *logger.Logger
}

func NewServer(cfg config.MCPConfig) *Server {
	return &Server{
		httpPort: cfg.HTTPPort,
		wsPort:   cfg.WSPort,
		logger:   logger.WithField("component", "mcp-server"),
	}
}

// Start binds both ports and begins serving. If the second bind fails the
// first listener is closed so no port leaks.
func (s *Server) Start() error {
	httpLn, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.httpPort))
	if err != nil {
		return fmt.Errorf("failed to bind MCP HTTP port %d: %w", s.httpPort, err)
	}

	wsLn, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.wsPort))
	if err != nil {
		_ = httpLn.Close()
		return fmt.Errorf("failed to bind MCP WebSocket port %d: %w", s.wsPort, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","httpPort":%d,"wsPort":%d}`, s.httpPort, s.wsPort)
	})

	s.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.wsSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.httpLn = httpLn
	s.wsLn = wsLn

	go func() {
		if serveErr := s.httpSrv.Serve(httpLn); serveErr != nil &&
			serveErr != http.ErrServerClosed && !errors.Is(serveErr, net.ErrClosed) {
			s.logger.Warn("MCP HTTP serve loop ended", "error", serveErr)
		}
	}()
	go func() {
		if serveErr := s.wsSrv.Serve(wsLn); serveErr != nil &&
			serveErr != http.ErrServerClosed && !errors.Is(serveErr, net.ErrClosed) {
			s.logger.Warn("MCP WebSocket serve loop ended", "error", serveErr)
		}
	}()

	s.logger.Info("MCP server started", "httpPort", s.httpPort, "wsPort", s.wsPort)
	return nil
}

// Shutdown tears down both listeners. Both are attempted even if the first
// fails; the first error wins. The listeners are closed directly as well:
// http.Server.Shutdown only closes listeners its serve loops have registered,
// and a shutdown racing a fresh Start can arrive before registration, which
// would leave both ports bound.
func (s *Server) Shutdown(ctx context.Context) error {
	var first error

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			first = err
		}
	}
	if s.wsSrv != nil {
		if err := s.wsSrv.Shutdown(ctx); err != nil && first == nil {
			first = err
		}
	}

	// already closed when the serve loop got there first; Close errors on a
	// closed listener are expected
	if s.httpLn != nil {
		_ = s.httpLn.Close()
	}
	if s.wsLn != nil {
		_ = s.wsLn.Close()
	}

	if first != nil {
		return fmt.Errorf("MCP server shutdown: %w", first)
	}

	s.logger.Info("MCP server stopped")
	return nil
}

func (s *Server) Ports() (int, int) {
	return s.httpPort, s.wsPort
}
