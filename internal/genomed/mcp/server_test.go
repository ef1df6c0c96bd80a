package mcp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomed/internal/genomed/mcp"
	"genomed/pkg/config"
)

func testPorts() config.MCPConfig {
	// fixed high ports, unlikely to collide with anything on a test host
	return config.MCPConfig{HTTPPort: 38472, WSPort: 38473}
}

func TestServer_StartBindsAndShutdownReleases(t *testing.T) {
	srv := mcp.NewServer(testPorts())
	require.NoError(t, srv.Start())

	httpPort, wsPort := srv.Ports()
	assert.Equal(t, 38472, httpPort)
	assert.Equal(t, 38473, wsPort)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// ports must be free again
	again := mcp.NewServer(testPorts())
	require.NoError(t, again.Start())
	require.NoError(t, again.Shutdown(ctx))
}

func TestServer_ImmediateShutdownReleasesPorts(t *testing.T) {
	// no delay between Start and Shutdown: teardown can run before the serve
	// loops have registered their listeners, and the ports must still be
	// released for the next Start
	cfg := config.MCPConfig{HTTPPort: 38474, WSPort: 38475}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 20; i++ {
		srv := mcp.NewServer(cfg)
		require.NoError(t, srv.Start())
		require.NoError(t, srv.Shutdown(ctx))
	}

	again := mcp.NewServer(cfg)
	require.NoError(t, again.Start())
	require.NoError(t, again.Shutdown(ctx))
}

func TestServer_PortConflictFailsStart(t *testing.T) {
	first := mcp.NewServer(testPorts())
	require.NoError(t, first.Start())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = first.Shutdown(ctx)
	}()

	second := mcp.NewServer(testPorts())
	err := second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bind")
}
