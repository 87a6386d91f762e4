package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the client. Values come from three
// sources, lowest precedence first: built-in defaults, the optional YAML
// config file, then environment variables.
type Config struct {
	// Remote service
	APIBaseURL  string        `env:"EXPERTCHAT_API_URL" yaml:"api_url"`
	HTTPTimeout time.Duration `env:"EXPERTCHAT_HTTP_TIMEOUT" yaml:"http_timeout"`

	// Local state
	TokenFile string `env:"EXPERTCHAT_TOKEN_FILE" yaml:"token_file"`

	// Observability / Logging
	LogLevel       string `env:"EXPERTCHAT_LOG_LEVEL" yaml:"log_level"`
	LogFormat      string `env:"EXPERTCHAT_LOG_FORMAT" yaml:"log_format"`
	TracingEnabled bool   `env:"EXPERTCHAT_TRACING" yaml:"tracing_enabled"`
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" yaml:"otlp_endpoint"`
	ServiceName    string `env:"EXPERTCHAT_SERVICE_NAME" yaml:"service_name"`
	Environment    string `env:"EXPERTCHAT_ENVIRONMENT" yaml:"environment"`
}

func defaults() *Config {
	return &Config{
		APIBaseURL:  "http://localhost:8000/api/v1",
		HTTPTimeout: 30 * time.Second,
		LogLevel:    "warn",
		LogFormat:   "console",
		ServiceName: "expertchat",
		Environment: "development",
	}
}

// DefaultConfigDir returns the per-user directory holding the config file and
// the persisted token pair.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "expertchat"), nil
}

// Load builds the configuration from defaults, the config file (if present),
// and the environment, then validates it.
func Load() (*Config, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

// LoadFrom is Load with an explicit config file path, used by tests and the
// --config flag.
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.TokenFile == "" {
		dir := filepath.Dir(path)
		cfg.TokenFile = filepath.Join(dir, "tokens.json")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs minimal sanity checks on the loaded configuration.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.APIBaseURL)
	if base == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q is not a valid URL", c.APIBaseURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	return nil
}
