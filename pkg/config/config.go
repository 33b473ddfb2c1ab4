package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Resources ResourceConfig `yaml:"resources"`
	Client    ClientConfig   `yaml:"client"`
	Retry     RetryConfig    `yaml:"retry"`
	Logging   LogConfig      `yaml:"logging"`
}

// ServerConfig contains settings for the listening socket and the worker pool
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	MaxWorkers     int           `yaml:"max_workers"`
	QueueSize      int           `yaml:"queue_size"`       // pending accepted connections; 0 means 2 x max_workers
	ReadBufferSize int           `yaml:"read_buffer_size"` // in bytes
	ReadTimeout    time.Duration `yaml:"read_timeout"`     // window for the request bytes to arrive; 0 uses the handler default
	WriteTimeout   time.Duration `yaml:"write_timeout"`    // 0 disables the deadline
	Name           string        `yaml:"name"`             // value of the Server header

	// ShutdownTimeout is how long in-flight connections may run after shutdown
	// starts before their deadlines are forced
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ResourceConfig describes where HTML documents are looked up
type ResourceConfig struct {
	Root     string `yaml:"root"`
	Index    string `yaml:"index"`    // name "/" is routed to
	Fallback string `yaml:"fallback"` // file served when nothing matches
}

// ClientConfig contains settings for the probe client
type ClientConfig struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig contains settings for retry behavior
type RetryConfig struct {
	Enabled         bool     `yaml:"enabled"`
	MaxRetries      int      `yaml:"max_retries"`
	InitialDelay    int      `yaml:"initial_delay"` // in milliseconds
	MaxDelay        int      `yaml:"max_delay"`     // in milliseconds
	BackoffFactor   float64  `yaml:"backoff_factor"`
	JitterFactor    float64  `yaml:"jitter_factor"`
	RetryableErrors []string `yaml:"retryable_errors"`
}

// LogConfig contains settings for logging
type LogConfig struct {
	LogToFile   bool   `yaml:"log_to_file"`
	LogFilePath string `yaml:"log_file_path"`
	MaxSize     int    `yaml:"max_size"`    // maximum size in megabytes
	MaxBackups  int    `yaml:"max_backups"` // maximum number of old log files to retain
	MaxAge      int    `yaml:"max_age"`     // maximum number of days to retain old log files
	Compress    bool   `yaml:"compress"`    // compress determines if the rotated log files should be compressed
}

// LoadDefault returns a configuration with default values
func LoadDefault() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           80,
			MaxWorkers:     100,
			QueueSize:      0,
			ReadBufferSize: 8192,
			ReadTimeout:    200 * time.Millisecond,
			WriteTimeout:   0,
			Name:           "Farham's Toy WebServer",

			ShutdownTimeout: 5 * time.Second,
		},
		Resources: ResourceConfig{
			Root:     "webpages",
			Index:    "index",
			Fallback: "pagenotfound.html",
		},
		Client: ClientConfig{
			Addr:    "localhost:80",
			Timeout: 10 * time.Second,
		},
		Retry: RetryConfig{
			Enabled:       true,
			MaxRetries:    3,
			InitialDelay:  200,
			MaxDelay:      2000,
			BackoffFactor: 2.0,
			JitterFactor:  0.1,
			RetryableErrors: []string{
				"connection refused",
				"connection reset",
				"timeout",
			},
		},
		Logging: LogConfig{
			LogToFile:   false,
			LogFilePath: "web-server.log",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      28,
			Compress:    true,
		},
	}
}

// Default returns the default configuration with environment overrides applied
func Default() *Config {
	cfg := LoadDefault()
	applyEnv(cfg)
	return cfg
}

// Load reads configuration from a file on top of the default values. Keys present
// in the file replace the defaults, zero values included; absent keys keep them.
func Load(configPath string) (*Config, error) {
	cfg := LoadDefault()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault attempts to load configuration from a file
// If the file doesn't exist or can't be parsed, it returns default configuration
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", configPath, err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg = Default()
	}
	return cfg
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive, got %d", c.Server.MaxWorkers)
	}
	if c.Server.QueueSize < 0 {
		return fmt.Errorf("queue_size must not be negative, got %d", c.Server.QueueSize)
	}
	if c.Server.ReadBufferSize <= 0 {
		return fmt.Errorf("read_buffer_size must be positive, got %d", c.Server.ReadBufferSize)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Resources.Root == "" {
		return fmt.Errorf("resource root must be set")
	}
	if c.Resources.Fallback == "" {
		return fmt.Errorf("fallback resource must be set")
	}
	return nil
}

// ServerAddress returns the address the server listens on
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Backlog returns the pending-connection backlog of the listening socket
func (c *Config) Backlog() int {
	return 2 * c.Server.MaxWorkers
}

// PendingQueueSize returns how many accepted connections may wait for a free worker
func (c *Config) PendingQueueSize() int {
	if c.Server.QueueSize > 0 {
		return c.Server.QueueSize
	}
	return c.Backlog()
}

// applyEnv overrides settings from WEBSERVER_* environment variables
func applyEnv(cfg *Config) {
	if envPort := os.Getenv("WEBSERVER_PORT"); envPort != "" {
		if port, err := strconv.Atoi(envPort); err == nil {
			cfg.Server.Port = port
		}
	}
	if envRoot := os.Getenv("WEBSERVER_ROOT"); envRoot != "" {
		cfg.Resources.Root = envRoot
	}
}
