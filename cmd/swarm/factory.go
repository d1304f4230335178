package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/codecollab/swarm/internal/config"
	"github.com/codecollab/swarm/internal/llm"
	"github.com/codecollab/swarm/internal/swarm"
	"github.com/codecollab/swarm/pkg/models"
)

// buildSwarm assembles a Swarm from the loaded configuration.
// The returned cleanup closes the debug logger.
func buildSwarm(cfg *config.Config, emitter *swarm.EventEmitter) (*swarm.Swarm, func(), error) {
	apiKey := ""
	if !cfg.Anthropic.UseBedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%w\n\nSet ANTHROPIC_API_KEY or run: swarm config anthropic.api_key <key>", err)
		}
		apiKey = key
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create API client: %w", err)
	}

	invoker := llm.NewAnthropicInvoker(client)
	invoker.SetMaxTokens(int64(cfg.Anthropic.MaxTokens))

	roles := swarm.DefaultRoles()
	if cfg.Roles.File != "" {
		roles, err = swarm.LoadRoleOverrides(cfg.Roles.File)
		if err != nil {
			return nil, nil, fmt.Errorf("load role overrides: %w", err)
		}
	}

	logger := swarm.NopLogger()
	if cfg.Debug.LogPath != "" {
		logger, err = swarm.NewDebugLogger(cfg.Debug.LogPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open debug log: %w", err)
		}
	}

	opts := []swarm.Option{
		swarm.WithRoles(roles),
		swarm.WithLimits(limitsFromConfig(cfg)),
		swarm.WithLogger(logger),
	}
	if emitter != nil {
		opts = append(opts, swarm.WithEmitter(emitter))
	}

	cleanup := func() { logger.Close() }
	return swarm.New(invoker, opts...), cleanup, nil
}

func limitsFromConfig(cfg *config.Config) swarm.Limits {
	return swarm.Limits{
		MaxHandoffs:         cfg.Limits.MaxHandoffs,
		MaxIterations:       cfg.Limits.MaxIterations,
		ExecutionTimeout:    cfg.Limits.ExecutionTimeout,
		NodeTimeout:         cfg.Limits.NodeTimeout,
		RepetitiveWindow:    cfg.Limits.RepetitiveWindow,
		RepetitiveMinUnique: cfg.Limits.RepetitiveMinUnique,
	}
}

// roleLabel maps a role to its display label.
func roleLabel(role models.RoleName) string {
	switch role {
	case models.RoleRequirements:
		return "Requirements Agent"
	case models.RoleContext:
		return "Context Agent"
	case models.RoleBuilder:
		return "Builder Agent"
	case models.RoleQuality:
		return "Quality Agent"
	case models.RoleEscalation:
		return "Escalation Agent"
	default:
		return string(role)
	}
}
