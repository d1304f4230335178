// Package extract recovers structured facts from free-form agent output.
// Every extractor is a pure, total function: upstream text is untrusted
// model output, so missing or malformed structure resolves to a documented
// default instead of an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/codecollab/swarm/pkg/models"
)

// DefaultQualityScore is returned when no score can be found anywhere.
const DefaultQualityScore = 85

// Regular expressions for scanning agent responses.
var (
	// codeBlockPattern matches fenced code regions, capturing the body.
	codeBlockPattern = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n(.*?)```")
	// scorePattern matches "Score: 92" or "score 92/100".
	scorePattern = regexp.MustCompile(`(?i)score:?\s*(\d+)(?:/100)?`)
	// complexityPattern matches complexity tags in natural or structured
	// form: `complexity: simple` or `"complexity": "simple"`.
	complexityPattern = regexp.MustCompile(`(?i)complexity["']?\s*:\s*["']?(simple|medium|complex)`)
)

// Markers that identify a fenced block as a test module rather than the
// main implementation.
var testMarkers = []string{
	"def test_",
	"import pytest",
	"import unittest",
	"func Test",
}

// Markers that identify a fenced block as containing an actual definition.
var definitionMarkers = []string{
	"def ",
	"class ",
	"func ",
	"type ",
}

// Decision scans the terminal response for an explicit decision marker.
// The pipeline is biased toward autonomous completion: escalation requires
// an unambiguous signal, anything else resolves to COMPLETE.
func Decision(terminal string) models.Decision {
	if strings.Contains(terminal, "DECISION: ESCALATE") {
		return models.DecisionEscalate
	}
	if strings.Contains(terminal, "DECISION: COMPLETE") {
		return models.DecisionComplete
	}

	upper := strings.ToUpper(terminal)
	if strings.Contains(upper, "ESCALATE") && !strings.Contains(upper, "DO NOT ESCALATE") {
		return models.DecisionEscalate
	}
	return models.DecisionComplete
}

// Code extracts the main implementation from fenced code regions in the
// terminal response, falling back to the builder's own output. Among
// multiple blocks it prefers the first one that contains a definition and
// is not a test module; failing that, the first block found. The second
// return value is false when neither text contains any fenced region.
func Code(terminal, fallback string) (string, bool) {
	if code, ok := codeFromText(terminal); ok {
		return code, true
	}
	return codeFromText(fallback)
}

// codeFromText applies the block-selection heuristic to a single text.
func codeFromText(text string) (string, bool) {
	matches := codeBlockPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}

	for _, m := range matches {
		block := m[1]
		if isTestBlock(block) {
			continue
		}
		if hasDefinition(block) {
			return strings.TrimSpace(block), true
		}
	}

	// No block qualified; use the first region found.
	return strings.TrimSpace(matches[0][1]), true
}

func isTestBlock(block string) bool {
	for _, marker := range testMarkers {
		if strings.Contains(block, marker) {
			return true
		}
	}
	return false
}

func hasDefinition(block string) bool {
	for _, marker := range definitionMarkers {
		if strings.Contains(block, marker) {
			return true
		}
	}
	return false
}

// QualityScore searches the quality role's response for a "Score: N"
// pattern, then the role's handoff payload for a quality_score field,
// and finally falls back to DefaultQualityScore. Parsed values are
// clamped to 0-100.
func QualityScore(text string, payload map[string]any) int {
	if m := scorePattern.FindStringSubmatch(text); len(m) >= 2 {
		if val, err := strconv.Atoi(m[1]); err == nil {
			return clampScore(val)
		}
	}

	if payload != nil {
		if raw, ok := payload["quality_score"]; ok {
			if val, ok := payloadInt(raw); ok {
				return clampScore(val)
			}
		}
	}

	return DefaultQualityScore
}

// payloadInt coerces the loosely typed payload values that survive a
// JSON round trip.
func payloadInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		val, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return val, true
	default:
		return 0, false
	}
}

// Complexity searches for an explicit complexity tag in natural or
// structured form. The first match wins; absence resolves to unknown.
func Complexity(text string) models.Complexity {
	if m := complexityPattern.FindStringSubmatch(text); len(m) >= 2 {
		return models.Complexity(strings.ToLower(m[1]))
	}
	return models.ComplexityUnknown
}

// CountCodeLines returns the number of newline-delimited segments in the
// extracted code, or 0 when no code was extracted.
func CountCodeLines(code string) int {
	if code == "" {
		return 0
	}
	return len(strings.Split(code, "\n"))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
