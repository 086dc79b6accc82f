package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the project-local configuration file name.
const DefaultConfigFile = ".agentlisp.yaml"

// Config holds the project-level settings. It is loaded from .agentlisp.yaml
// when present; every field has a usable zero/default value so the file is
// optional.
type Config struct {
	// Store selects the session backend: "file", "memory" or "redis".
	Store string `mapstructure:"store"`

	// SessionDir overrides the file store directory (default .agentlisp/sessions).
	SessionDir string `mapstructure:"session_dir"`

	Redis RedisConfig `mapstructure:"redis"`

	// LogLevel is one of debug, info, warn, error. Unset keeps the CLI
	// silent apart from the flow UI.
	LogLevel string `mapstructure:"log_level"`

	// Plain disables markdown rendering and the banner.
	Plain bool `mapstructure:"plain"`
}

// RedisConfig configures the redis session backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// TTL is a duration string like "24h"; empty means sessions never expire.
	TTL string `mapstructure:"ttl"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Store: "file",
	}
}

// LoadConfig reads a YAML config file. A missing file is not an error and
// yields the defaults. Unknown keys are tolerated; mapstructure only binds
// the keys it knows.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	if cfg.Store == "" {
		cfg.Store = "file"
	}
	return cfg, nil
}

// RedisTTL parses the configured TTL, returning zero when unset.
func (c Config) RedisTTL() (time.Duration, error) {
	if c.Redis.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Redis.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid redis.ttl %q: %w", c.Redis.TTL, err)
	}
	return d, nil
}
