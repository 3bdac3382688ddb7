// Package config loads the service settings from a .env file, an optional
// YAML file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel            = "claude-sonnet-4-20250514"
	DefaultMaxTokens        = 4000
	DefaultTimeout          = 120 * time.Second
	DefaultAddr             = ":8000"
	DefaultMasterPromptPath = "./prompts/master_prompt.txt"
	DefaultShutdownTimeout  = 10 * time.Second
)

// ErrMissingAPIKey is returned by RequireAPIKey.
var ErrMissingAPIKey = errors.New("CLAUDE_API_KEY is not set")

// Config holds every setting of the service.
type Config struct {
	Anthropic   AnthropicConfig   `yaml:"anthropic"`
	Server      ServerConfig      `yaml:"server"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Log         LogConfig         `yaml:"log"`

	// MasterPromptPath points at a prompt file overriding the embedded one.
	// A missing file at the default path falls back to the embedded prompt.
	MasterPromptPath string `yaml:"master_prompt_path"`

	// RateLimit bounds model calls per second. Zero disables the limit.
	RateLimit float64 `yaml:"rate_limit"`
}

type AnthropicConfig struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	// MaxRetries retries transient transport failures. Zero disables retries.
	MaxRetries int `yaml:"max_retries"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DiagnosticsConfig selects where unrecoverable replies are persisted. Both
// sinks are off when empty.
type DiagnosticsConfig struct {
	Dir      string        `yaml:"dir"`
	RedisURL string        `yaml:"redis_url"`
	RedisTTL time.Duration `yaml:"redis_ttl"`
}

// LogConfig is applied on top of AGENTSWARM_LOG_LEVEL/AGENTSWARM_LOG_FORMAT
// when set.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     DefaultModel,
			MaxTokens: DefaultMaxTokens,
			Timeout:   DefaultTimeout,
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		MasterPromptPath: DefaultMasterPromptPath,
	}
}

// Load reads envFiles (".env" when none are given) without overriding
// variables already set, then the YAML file named by AGENTSWARM_CONFIG, then
// the environment. Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := Default()
	if path := os.Getenv("AGENTSWARM_CONFIG"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Anthropic.APIKey, "CLAUDE_API_KEY")
	setString(&c.Anthropic.BaseURL, "ANTHROPIC_API_BASE_URL")
	setString(&c.Anthropic.Model, "AGENTSWARM_MODEL")
	setString(&c.MasterPromptPath, "MASTER_PROMPT_PATH")
	setString(&c.Server.Addr, "AGENTSWARM_ADDR")
	setString(&c.Diagnostics.Dir, "AGENTSWARM_DIAGNOSTICS_DIR")
	setString(&c.Diagnostics.RedisURL, "AGENTSWARM_REDIS_URL")

	if v := os.Getenv("AGENTSWARM_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGENTSWARM_MAX_TOKENS %q: %w", v, err)
		}
		c.Anthropic.MaxTokens = n
	}
	if v := os.Getenv("AGENTSWARM_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGENTSWARM_MAX_RETRIES %q: %w", v, err)
		}
		c.Anthropic.MaxRetries = n
	}
	if v := os.Getenv("AGENTSWARM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid AGENTSWARM_TIMEOUT %q: %w", v, err)
		}
		c.Anthropic.Timeout = d
	}
	if v := os.Getenv("AGENTSWARM_RATE_LIMIT"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid AGENTSWARM_RATE_LIMIT %q: %w", v, err)
		}
		c.RateLimit = r
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks ranges. The API key is checked separately, since offline
// commands run without one.
func (c *Config) Validate() error {
	if c.Anthropic.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.Anthropic.MaxTokens)
	}
	if c.Anthropic.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Anthropic.Timeout)
	}
	if c.Anthropic.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.Anthropic.MaxRetries)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %g", c.RateLimit)
	}
	if c.Server.Addr == "" {
		return errors.New("server address must not be empty")
	}
	return nil
}

// RequireAPIKey fails when no model API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.Anthropic.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
