package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codecollab/swarm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify swarm configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/swarm/config.yaml
Project-specific overrides can be placed in .swarm.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s (%s)\n",
		config.MaskAPIKey(cfg.Anthropic.APIKey), config.GetAPIKeySource(cfg))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.max_tokens: %d\n", cfg.Anthropic.MaxTokens)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", cfg.Anthropic.AWSRegion)
	fmt.Printf("anthropic.aws_profile: %s\n", cfg.Anthropic.AWSProfile)
	fmt.Printf("limits.max_handoffs: %d\n", cfg.Limits.MaxHandoffs)
	fmt.Printf("limits.max_iterations: %d\n", cfg.Limits.MaxIterations)
	fmt.Printf("limits.execution_timeout: %s\n", cfg.Limits.ExecutionTimeout)
	fmt.Printf("limits.node_timeout: %s\n", cfg.Limits.NodeTimeout)
	fmt.Printf("limits.repetitive_window: %d\n", cfg.Limits.RepetitiveWindow)
	fmt.Printf("limits.repetitive_min_unique: %d\n", cfg.Limits.RepetitiveMinUnique)
	fmt.Printf("server.host: %s\n", cfg.Server.Host)
	fmt.Printf("server.port: %d\n", cfg.Server.Port)
	fmt.Printf("history.ring_size: %d\n", cfg.History.RingSize)
	fmt.Printf("history.persist: %t\n", cfg.History.Persist)
	fmt.Printf("history.db_path: %s\n", cfg.History.DBPath)
	fmt.Printf("roles.file: %s\n", cfg.Roles.File)
	fmt.Printf("debug.log_path: %s\n", cfg.Debug.LogPath)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.max_tokens":
		return strconv.Itoa(cfg.Anthropic.MaxTokens), nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return cfg.Anthropic.AWSProfile, nil
	case "limits.max_handoffs":
		return strconv.Itoa(cfg.Limits.MaxHandoffs), nil
	case "limits.max_iterations":
		return strconv.Itoa(cfg.Limits.MaxIterations), nil
	case "limits.execution_timeout":
		return cfg.Limits.ExecutionTimeout.String(), nil
	case "limits.node_timeout":
		return cfg.Limits.NodeTimeout.String(), nil
	case "limits.repetitive_window":
		return strconv.Itoa(cfg.Limits.RepetitiveWindow), nil
	case "limits.repetitive_min_unique":
		return strconv.Itoa(cfg.Limits.RepetitiveMinUnique), nil
	case "server.host":
		return cfg.Server.Host, nil
	case "server.port":
		return strconv.Itoa(cfg.Server.Port), nil
	case "history.ring_size":
		return strconv.Itoa(cfg.History.RingSize), nil
	case "history.persist":
		return strconv.FormatBool(cfg.History.Persist), nil
	case "history.db_path":
		return cfg.History.DBPath, nil
	case "roles.file":
		return cfg.Roles.File, nil
	case "debug.log_path":
		return cfg.Debug.LogPath, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_tokens: %w", err)
		}
		cfg.Anthropic.MaxTokens = n
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_bedrock: %w", err)
		}
		cfg.Anthropic.UseBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "anthropic.aws_profile":
		cfg.Anthropic.AWSProfile = value
	case "limits.max_handoffs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_handoffs: %w", err)
		}
		cfg.Limits.MaxHandoffs = n
	case "limits.max_iterations":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_iterations: %w", err)
		}
		cfg.Limits.MaxIterations = n
	case "limits.execution_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for execution_timeout: %w", err)
		}
		cfg.Limits.ExecutionTimeout = d
	case "limits.node_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for node_timeout: %w", err)
		}
		cfg.Limits.NodeTimeout = d
	case "limits.repetitive_window":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for repetitive_window: %w", err)
		}
		cfg.Limits.RepetitiveWindow = n
	case "limits.repetitive_min_unique":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for repetitive_min_unique: %w", err)
		}
		cfg.Limits.RepetitiveMinUnique = n
	case "server.host":
		cfg.Server.Host = value
	case "server.port":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for server.port: %w", err)
		}
		cfg.Server.Port = n
	case "history.ring_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for ring_size: %w", err)
		}
		cfg.History.RingSize = n
	case "history.persist":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for history.persist: %w", err)
		}
		cfg.History.Persist = b
	case "history.db_path":
		cfg.History.DBPath = value
	case "roles.file":
		cfg.Roles.File = value
	case "debug.log_path":
		cfg.Debug.LogPath = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
