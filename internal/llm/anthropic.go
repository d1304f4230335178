package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/codecollab/swarm/pkg/models"
)

// HandoffToolName is the tool a role calls to pass control to another role.
const HandoffToolName = "handoff_to_agent"

// AnthropicInvoker performs one Messages API call per role activation.
// A handoff_to_agent tool call in the response becomes the activation's
// HandoffDirective; a plain text response ends the run.
type AnthropicInvoker struct {
	client    *Client
	maxTokens int64
}

// Compile-time verification that AnthropicInvoker implements Invoker.
var _ Invoker = (*AnthropicInvoker)(nil)

// NewAnthropicInvoker creates an invoker backed by the given client.
func NewAnthropicInvoker(client *Client) *AnthropicInvoker {
	return &AnthropicInvoker{
		client:    client,
		maxTokens: 4096,
	}
}

// SetMaxTokens overrides the per-activation response cap.
// Non-positive values are ignored.
func (a *AnthropicInvoker) SetMaxTokens(n int64) {
	if n > 0 {
		a.maxTokens = n
	}
}

// Invoke runs one role activation against the Messages API.
func (a *AnthropicInvoker) Invoke(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	resp, err := a.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.client.Model(),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(req))),
		},
		Tools: handoffToolDefinitions(),
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", req.Role, err)
	}

	a.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	result := &Result{
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			LatencyMS:    time.Since(start).Milliseconds(),
		},
	}

	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			result.Text += variant.Text
		case anthropic.ToolUseBlock:
			if variant.Name != HandoffToolName || result.Handoff != nil {
				continue
			}
			directive, err := parseHandoffInput(variant.Input)
			if err != nil {
				// Malformed directive input is treated as no handoff;
				// the run simply terminates after this activation.
				continue
			}
			result.Handoff = directive
		}
	}

	return result, nil
}

// buildUserPrompt combines the task description with the injected context
// accumulated from prior roles.
func buildUserPrompt(req *Request) string {
	if len(req.InjectedContext) == 0 {
		return req.Task
	}

	ctxJSON, err := json.MarshalIndent(req.InjectedContext, "", "  ")
	if err != nil {
		return req.Task
	}
	return fmt.Sprintf("%s\n\n## Shared Context\n%s", req.Task, ctxJSON)
}

// parseHandoffInput decodes a handoff_to_agent tool input.
func parseHandoffInput(input json.RawMessage) (*HandoffDirective, error) {
	var params struct {
		AgentName string         `json:"agent_name"`
		Message   string         `json:"message"`
		Context   map[string]any `json:"context"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("decode handoff input: %w", err)
	}
	if params.AgentName == "" {
		return nil, fmt.Errorf("handoff input missing agent_name")
	}

	return &HandoffDirective{
		Target:  models.RoleName(params.AgentName),
		Message: params.Message,
		Context: params.Context,
	}, nil
}

// handoffToolDefinitions returns the tool schema offered to every role.
func handoffToolDefinitions() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        HandoffToolName,
				Description: anthropic.String("Hand off control and context to the named agent. Call this when your part of the task is done; do not call it to end the run."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"agent_name": map[string]interface{}{
							"type":        "string",
							"description": "Name of the agent to hand off to (requirements, context, builder, quality, escalation)",
						},
						"message": map[string]interface{}{
							"type":        "string",
							"description": "Short message for the receiving agent",
						},
						"context": map[string]interface{}{
							"type":        "object",
							"description": "Structured context payload for the receiving agent",
						},
					},
					Required: []string{"agent_name"},
				},
			},
		},
	}
}
