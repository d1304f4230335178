// Package swarm coordinates the fixed pipeline of role-specialized agents.
//
// The swarm package provides functionality for:
//   - Handoff sequencing: a bounded state machine that drives agent
//     activations and validates every handoff directive before applying it
//   - Shared context propagation: an append-only per-run store of what each
//     role contributed and handed off
//   - Result assembly: extraction of the decision, deliverable, quality
//     score and complexity from free-form output, and payment calculation
//
// A run is strictly sequential: one activation at a time, each depending on
// the prior role's handoff payload. Concurrency exists only across
// independent runs, each owning its own context store and agent sequence.
//
// Example usage:
//
//	client, _ := llm.NewClient(llm.ClientConfig{})
//	sw := swarm.New(llm.NewAnthropicInvoker(client))
//	result, err := sw.Process(ctx, "Write a function to reverse a string")
package swarm
