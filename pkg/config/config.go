package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete daemon configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Stream  StreamConfig  `yaml:"stream" json:"stream"`
	Files   FilesConfig   `yaml:"files" json:"files"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
	MCP     MCPConfig     `yaml:"mcp" json:"mcp"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds the local API server configuration
type ServerConfig struct {
	Address         string        `yaml:"address" json:"address"`
	Port            int           `yaml:"port" json:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// StreamConfig holds file streaming configuration
type StreamConfig struct {
	// DefaultChunkSize is the read size used when a request does not specify one.
	DefaultChunkSize int `yaml:"defaultChunkSize" json:"defaultChunkSize"`
	// EventBuffer is the capacity of a session's event channel.
	EventBuffer int `yaml:"eventBuffer" json:"eventBuffer"`
}

// FilesConfig holds whole-file read and metadata configuration
type FilesConfig struct {
	// MaxWholeReadSize caps read-file-whole requests; streaming has no cap.
	MaxWholeReadSize int64         `yaml:"maxWholeReadSize" json:"maxWholeReadSize"`
	InfoCacheTTL     time.Duration `yaml:"infoCacheTtl" json:"infoCacheTtl"`
	InfoCacheCleanup time.Duration `yaml:"infoCacheCleanup" json:"infoCacheCleanup"`
}

// WatchConfig holds file watcher configuration
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// MCPConfig holds the ports the managed MCP service binds when started
type MCPConfig struct {
	HTTPPort int `yaml:"httpPort" json:"httpPort"`
	WSPort   int `yaml:"wsPort" json:"wsPort"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Output string `yaml:"output" json:"output"`
}

// DefaultConfig Default configuration values
var DefaultConfig = Config{
	Server: ServerConfig{
		Address:         "127.0.0.1",
		Port:            8751,
		ShutdownTimeout: 10 * time.Second,
	},
	Stream: StreamConfig{
		DefaultChunkSize: 1024 * 1024, // 1MiB
		EventBuffer:      16,
	},
	Files: FilesConfig{
		MaxWholeReadSize: 256 * 1024 * 1024, // 256MB
		InfoCacheTTL:     5 * time.Second,
		InfoCacheCleanup: time.Minute,
	},
	Watch: WatchConfig{
		Debounce: time.Second,
	},
	MCP: MCPConfig{
		HTTPPort: 3000,
		WSPort:   3001,
	},
	Logging: LoggingConfig{
		Level:  "INFO",
		Output: "stdout",
	},
}

// LoadConfig loads configuration from multiple sources in order of precedence:
// 1. Environment variables (highest precedence)
// 2. Configuration file
// 3. Default values (lowest precedence)
func LoadConfig() (*Config, string, error) {
	config := DefaultConfig

	path, err := loadFromFile(&config)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config file: %w", err)
	}

	loadFromEnv(&config)

	if e := config.Validate(); e != nil {
		return nil, "", fmt.Errorf("configuration validation failed: %w", e)
	}

	return &config, path, nil
}

// loadFromFile loads configuration from the first YAML file that exists
func loadFromFile(config *Config) (string, error) {
	configPaths := []string{
		os.Getenv("GENOMED_CONFIG_PATH"), // Custom path from environment
		"./config.yaml",                  // Current directory
		"/etc/genomed/config.yaml",       // System-wide
	}

	for _, path := range configPaths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return "", fmt.Errorf("failed to parse config file %s: %w", path, err)
		}

		return path, nil
	}

	return "built-in defaults (no config file found)", nil
}

// loadFromEnv overrides configuration from environment variables
func loadFromEnv(config *Config) {
	if val := os.Getenv("GENOMED_SERVER_ADDRESS"); val != "" {
		config.Server.Address = val
	}
	if val := os.Getenv("GENOMED_SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.Server.Port = port
		}
	}
	if val := os.Getenv("GENOMED_SHUTDOWN_TIMEOUT"); val != "" {
		if timeout, err := time.ParseDuration(val); err == nil {
			config.Server.ShutdownTimeout = timeout
		}
	}

	if val := os.Getenv("GENOMED_STREAM_CHUNK_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.Stream.DefaultChunkSize = size
		}
	}
	if val := os.Getenv("GENOMED_STREAM_EVENT_BUFFER"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Stream.EventBuffer = n
		}
	}

	if val := os.Getenv("GENOMED_MAX_WHOLE_READ"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.Files.MaxWholeReadSize = size
		}
	}
	if val := os.Getenv("GENOMED_INFO_CACHE_TTL"); val != "" {
		if ttl, err := time.ParseDuration(val); err == nil {
			config.Files.InfoCacheTTL = ttl
		}
	}

	if val := os.Getenv("GENOMED_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.Watch.Debounce = d
		}
	}

	if val := os.Getenv("GENOMED_MCP_HTTP_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.MCP.HTTPPort = port
		}
	}
	if val := os.Getenv("GENOMED_MCP_WS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.MCP.WSPort = port
		}
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		config.Logging.Level = val
	}
	if val := os.Getenv("LOG_OUTPUT"); val != "" {
		config.Logging.Output = val
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Stream.DefaultChunkSize < 1 {
		return fmt.Errorf("invalid default chunk size: %d", c.Stream.DefaultChunkSize)
	}

	if c.Stream.EventBuffer < 1 {
		return fmt.Errorf("invalid event buffer capacity: %d", c.Stream.EventBuffer)
	}

	if c.Files.MaxWholeReadSize < 1 {
		return fmt.Errorf("invalid max whole-read size: %d", c.Files.MaxWholeReadSize)
	}

	if c.MCP.HTTPPort < 1 || c.MCP.HTTPPort > 65535 {
		return fmt.Errorf("invalid MCP HTTP port: %d", c.MCP.HTTPPort)
	}
	if c.MCP.WSPort < 1 || c.MCP.WSPort > 65535 {
		return fmt.Errorf("invalid MCP WebSocket port: %d", c.MCP.WSPort)
	}
	if c.MCP.HTTPPort == c.MCP.WSPort {
		return fmt.Errorf("MCP HTTP and WebSocket ports must differ: %d", c.MCP.HTTPPort)
	}

	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) SaveToFile(path string) error {
	data, err := c.ToYAML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFromFile loads a specific configuration file
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}
