package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig

	if cfg.Server.Address != "127.0.0.1" {
		t.Errorf("Expected Server Address '127.0.0.1', got '%s'", cfg.Server.Address)
	}
	if cfg.Server.Port != 8751 {
		t.Errorf("Expected Server Port 8751, got %d", cfg.Server.Port)
	}

	if cfg.Stream.DefaultChunkSize != 1024*1024 {
		t.Errorf("Expected DefaultChunkSize 1MiB, got %d", cfg.Stream.DefaultChunkSize)
	}

	if cfg.MCP.HTTPPort != 3000 {
		t.Errorf("Expected MCP HTTPPort 3000, got %d", cfg.MCP.HTTPPort)
	}
	if cfg.MCP.WSPort != 3001 {
		t.Errorf("Expected MCP WSPort 3001, got %d", cfg.MCP.WSPort)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestLoadConfig_WithEnvironmentVariables(t *testing.T) {
	t.Setenv("GENOMED_CONFIG_PATH", filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	t.Setenv("GENOMED_SERVER_PORT", "9999")
	t.Setenv("GENOMED_STREAM_CHUNK_SIZE", "4096")
	t.Setenv("GENOMED_MCP_HTTP_PORT", "3100")
	t.Setenv("GENOMED_MCP_WS_PORT", "3101")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, _, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected env override port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Stream.DefaultChunkSize != 4096 {
		t.Errorf("Expected env override chunk size 4096, got %d", cfg.Stream.DefaultChunkSize)
	}
	if cfg.MCP.HTTPPort != 3100 {
		t.Errorf("Expected env override MCP HTTP port 3100, got %d", cfg.MCP.HTTPPort)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected env override log level DEBUG, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	content := `
server:
  address: "0.0.0.0"
  port: 7777
stream:
  defaultChunkSize: 65536
mcp:
  httpPort: 4000
  wsPort: 4001
logging:
  level: "WARN"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Address != "0.0.0.0" {
		t.Errorf("Expected file address 0.0.0.0, got %s", cfg.Server.Address)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Expected file port 7777, got %d", cfg.Server.Port)
	}
	if cfg.Stream.DefaultChunkSize != 65536 {
		t.Errorf("Expected file chunk size 65536, got %d", cfg.Stream.DefaultChunkSize)
	}
	if cfg.MCP.HTTPPort != 4000 || cfg.MCP.WSPort != 4001 {
		t.Errorf("Expected file MCP ports 4000/4001, got %d/%d", cfg.MCP.HTTPPort, cfg.MCP.WSPort)
	}

	// untouched sections keep their defaults
	if cfg.Files.MaxWholeReadSize != DefaultConfig.Files.MaxWholeReadSize {
		t.Errorf("Expected default MaxWholeReadSize to survive partial file, got %d", cfg.Files.MaxWholeReadSize)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero server port", func(c *Config) { c.Server.Port = 0 }},
		{"negative chunk size", func(c *Config) { c.Stream.DefaultChunkSize = -1 }},
		{"zero event buffer", func(c *Config) { c.Stream.EventBuffer = 0 }},
		{"mcp port collision", func(c *Config) { c.MCP.WSPort = c.MCP.HTTPPort }},
		{"mcp port out of range", func(c *Config) { c.MCP.HTTPPort = 70000 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestToYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig
	cfg.Server.Port = 1234

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("Expected no error saving, got %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Expected no error loading, got %v", err)
	}
	if loaded.Server.Port != 1234 {
		t.Errorf("Expected round-tripped port 1234, got %d", loaded.Server.Port)
	}
}
