package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"genomed/pkg/errors"
	"genomed/pkg/logger"
)

// teardownTimeout bounds how long a forced teardown of an aborted start may take.
const teardownTimeout = 5 * time.Second

// Status is a read-only snapshot of the lifecycle state. Ports are present
// only while the service is running.
type Status struct {
	State     State `json:"status"`
	IsRunning bool  `json:"isRunning"`
	HTTPPort  int   `json:"httpPort,omitempty"`
	WSPort    int   `json:"wsPort,omitempty"`
}

// StartResult reports the outcome of a successful Start.
type StartResult struct {
	Message        string `json:"message"`
	HTTPPort       int    `json:"httpPort"`
	WSPort         int    `json:"wsPort"`
	AlreadyRunning bool   `json:"-"`
}

// Manager owns the single MCP service instance and serializes lifecycle
// transitions. The state value itself is the mutual-exclusion guard: an
// operation that would overlap an in-flight transition is rejected outright,
// never queued. Construction and teardown run outside the lock so Status
// stays responsive during them.
type Manager struct {
	mu      sync.Mutex
	state   State
	gen     uint64 // bumped on every transition into starting
	service Service
	factory func() Service

	logger *logger.Logger
}

// NewManager creates a stopped Manager. The factory builds a fresh service
// handle per start attempt.
func NewManager(factory func() Service) *Manager {
	return &Manager{
		state:   StateStopped,
		factory: factory,
		logger:  logger.WithField("component", "mcp-manager"),
	}
}

// Start brings the service up.
//
//	stopped  -> starting -> running   (or back to stopped on failure)
//	starting -> rejected, no state change
//	running  -> idempotent success reporting the bound ports
//	stopping -> rejected, no state change
func (m *Manager) Start(ctx context.Context) (StartResult, error) {
	m.mu.Lock()
	switch m.state {
	case StateRunning:
		httpPort, wsPort := m.service.Ports()
		m.mu.Unlock()
		m.logger.Debug("start requested while already running")
		return StartResult{
			Message:        "MCP server already running",
			HTTPPort:       httpPort,
			WSPort:         wsPort,
			AlreadyRunning: true,
		}, nil
	case StateStarting:
		m.mu.Unlock()
		return StartResult{}, errors.ErrAlreadyStarting
	case StateStopping:
		m.mu.Unlock()
		return StartResult{}, errors.ErrStopInFlight
	}

	m.state = StateStarting
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	m.logger.Info("starting MCP server")

	service := m.factory()
	err := service.Start()

	m.mu.Lock()
	if err != nil {
		if m.state == StateStarting && m.gen == gen {
			m.state = StateStopped
		}
		m.mu.Unlock()
		m.logger.Error("MCP server failed to start", "error", err)
		return StartResult{}, fmt.Errorf("failed to start MCP server: %w", err)
	}

	if m.state != StateStarting || m.gen != gen {
		// a concurrent stop won the race; discard the fresh handle
		m.mu.Unlock()
		m.logger.Warn("start aborted by concurrent stop, tearing down")
		sctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		if terr := service.Shutdown(sctx); terr != nil {
			m.logger.Warn("teardown of aborted start failed", "error", terr)
		}
		return StartResult{}, fmt.Errorf("start aborted: service was stopped during startup")
	}

	m.service = service
	m.state = StateRunning
	httpPort, wsPort := service.Ports()
	m.mu.Unlock()

	m.logger.Info("MCP server running", "httpPort", httpPort, "wsPort", wsPort)

	return StartResult{
		Message:  "MCP server started",
		HTTPPort: httpPort,
		WSPort:   wsPort,
	}, nil
}

// Stop takes the service down.
//
//	stopped            -> idempotent success
//	stopping           -> rejected, no state change
//	starting | running -> stopping -> stopped; the handle is always cleared,
//	                      even when teardown itself fails
func (m *Manager) Stop(ctx context.Context) (string, error) {
	m.mu.Lock()
	switch m.state {
	case StateStopped:
		m.mu.Unlock()
		m.logger.Debug("stop requested while already stopped")
		return "MCP server already stopped", nil
	case StateStopping:
		m.mu.Unlock()
		return "", errors.ErrAlreadyStopping
	}

	// starting or running; during a start the handle may not exist yet
	service := m.service
	m.state = StateStopping
	m.mu.Unlock()

	m.logger.Info("stopping MCP server")

	var teardownErr error
	if service != nil {
		teardownErr = service.Shutdown(ctx)
	}

	m.mu.Lock()
	m.service = nil
	m.state = StateStopped
	m.mu.Unlock()

	if teardownErr != nil {
		// the handle is gone regardless, the manager must not stick in stopping
		m.logger.Warn("MCP server teardown failed, state forced to stopped", "error", teardownErr)
		return "MCP server stopped (teardown reported an error)", nil
	}

	m.logger.Info("MCP server stopped")
	return "MCP server stopped", nil
}

// Status reports the current state without mutating anything.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		State:     m.state,
		IsRunning: m.state == StateRunning,
	}
	if m.state == StateRunning && m.service != nil {
		st.HTTPPort, st.WSPort = m.service.Ports()
	}
	return st
}
