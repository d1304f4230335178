// Package config handles configuration loading and management for the swarm.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the swarm.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Server    ServerConfig    `mapstructure:"server"`
	History   HistoryConfig   `mapstructure:"history"`
	Roles     RolesConfig     `mapstructure:"roles"`
	Debug     DebugConfig     `mapstructure:"debug"`
}

// AnthropicConfig holds model invocation settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key; ${VAR} references are expanded.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier sent on every invocation.
	Model string `mapstructure:"model"`
	// MaxTokens caps the response length per activation.
	MaxTokens int `mapstructure:"max_tokens"`
	// UseBedrock routes invocations through AWS Bedrock instead of the
	// Anthropic API.
	UseBedrock bool `mapstructure:"use_bedrock"`
	// AWSRegion is the Bedrock region.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the AWS credentials profile for Bedrock.
	AWSProfile string `mapstructure:"aws_profile"`
}

// LimitsConfig holds the run bounds. The repetitive-handoff values are
// empirically tuned defaults, not guaranteed optimal.
type LimitsConfig struct {
	MaxHandoffs         int           `mapstructure:"max_handoffs"`
	MaxIterations       int           `mapstructure:"max_iterations"`
	ExecutionTimeout    time.Duration `mapstructure:"execution_timeout"`
	NodeTimeout         time.Duration `mapstructure:"node_timeout"`
	RepetitiveWindow    int           `mapstructure:"repetitive_window"`
	RepetitiveMinUnique int           `mapstructure:"repetitive_min_unique"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	// RingSize bounds the in-memory history.
	RingSize int `mapstructure:"ring_size"`
	// Persist enables the SQLite history store.
	Persist bool `mapstructure:"persist"`
	// DBPath overrides the default database location.
	DBPath string `mapstructure:"db_path"`
}

// RolesConfig holds role prompt override settings.
type RolesConfig struct {
	// File is a roles.yaml path overriding the built-in prompts.
	File string `mapstructure:"file"`
}

// DebugConfig holds debug logging settings.
type DebugConfig struct {
	// LogPath enables file-based debug logging when set.
	LogPath string `mapstructure:"log_path"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.swarm.yaml in current directory or parent)
// 3. User config (~/.config/swarm/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.use_bedrock", "CLAUDE_CODE_USE_BEDROCK")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("limits.max_handoffs", cfg.Limits.MaxHandoffs)
	v.Set("limits.max_iterations", cfg.Limits.MaxIterations)
	v.Set("limits.execution_timeout", cfg.Limits.ExecutionTimeout.String())
	v.Set("limits.node_timeout", cfg.Limits.NodeTimeout.String())
	v.Set("limits.repetitive_window", cfg.Limits.RepetitiveWindow)
	v.Set("limits.repetitive_min_unique", cfg.Limits.RepetitiveMinUnique)
	v.Set("server.host", cfg.Server.Host)
	v.Set("server.port", cfg.Server.Port)
	v.Set("history.ring_size", cfg.History.RingSize)
	v.Set("history.persist", cfg.History.Persist)
	v.Set("history.db_path", cfg.History.DBPath)
	v.Set("roles.file", cfg.Roles.File)
	v.Set("debug.log_path", cfg.Debug.LogPath)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "us-east-1")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("limits.max_handoffs", 10)
	v.SetDefault("limits.max_iterations", 10)
	v.SetDefault("limits.execution_timeout", "180s")
	v.SetDefault("limits.node_timeout", "90s")
	v.SetDefault("limits.repetitive_window", 5)
	v.SetDefault("limits.repetitive_min_unique", 3)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8000)

	v.SetDefault("history.ring_size", 100)
	v.SetDefault("history.persist", false)
	v.SetDefault("history.db_path", "")

	v.SetDefault("roles.file", "")
	v.SetDefault("debug.log_path", "")
}

// getUserConfigDir returns the XDG config directory for the swarm.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "swarm")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "swarm")
	}
	return filepath.Join(home, ".config", "swarm")
}

// findProjectConfig searches for .swarm.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".swarm.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-5",
			MaxTokens: 4096,
			AWSRegion: "us-east-1",
		},
		Limits: LimitsConfig{
			MaxHandoffs:         10,
			MaxIterations:       10,
			ExecutionTimeout:    180 * time.Second,
			NodeTimeout:         90 * time.Second,
			RepetitiveWindow:    5,
			RepetitiveMinUnique: 3,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8000,
		},
		History: HistoryConfig{
			RingSize: 100,
		},
	}
}
