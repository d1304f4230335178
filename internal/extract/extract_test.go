package extract

import (
	"testing"

	"github.com/codecollab/swarm/pkg/models"
)

func TestDecision(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Decision
	}{
		{"explicit escalate", "DECISION: ESCALATE\nThis needs a human.", models.DecisionEscalate},
		{"explicit complete", "DECISION: COMPLETE\nAll done.", models.DecisionComplete},
		{"no marker defaults to complete", "Everything looks fine.", models.DecisionComplete},
		{"bare escalate token", "I think we should ESCALATE this one.", models.DecisionEscalate},
		{"negated escalate", "Quality is fine. DO NOT ESCALATE.", models.DecisionComplete},
		{"lowercase escalate token", "we may need to escalate", models.DecisionEscalate},
		{"empty text", "", models.DecisionComplete},
		{"explicit complete wins over later escalate mention", "DECISION: COMPLETE\nNo need to escalate.", models.DecisionComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decision(tt.text); got != tt.want {
				t.Errorf("Decision(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestCode_PrefersImplementationOverTests(t *testing.T) {
	terminal := "Tests first:\n```python\nimport unittest\n\ndef test_add():\n    assert add(1, 2) == 3\n```\n" +
		"Implementation:\n```python\ndef add(a, b):\n    return a + b\n```\n"

	code, ok := Code(terminal, "")
	if !ok {
		t.Fatal("Code() found nothing")
	}
	if code != "def add(a, b):\n    return a + b" {
		t.Errorf("Code() = %q, want the implementation block", code)
	}
}

func TestCode_SingleBlock(t *testing.T) {
	terminal := "```python\ndef greet():\n    return \"hi\"\n```"
	code, ok := Code(terminal, "")
	if !ok || code != "def greet():\n    return \"hi\"" {
		t.Errorf("Code() = (%q, %v)", code, ok)
	}
}

func TestCode_FallsBackToBuilderOutput(t *testing.T) {
	terminal := "Quality is fine, code was already shared."
	fallback := "Here it is:\n```go\nfunc Add(a, b int) int {\n\treturn a + b\n}\n```"

	code, ok := Code(terminal, fallback)
	if !ok {
		t.Fatal("Code() should find the builder's block")
	}
	if code != "func Add(a, b int) int {\n\treturn a + b\n}" {
		t.Errorf("Code() = %q", code)
	}
}

func TestCode_NoDefinitionUsesFirstBlock(t *testing.T) {
	terminal := "```\nx = 1\n```\n```\ny = 2\n```"
	code, ok := Code(terminal, "")
	if !ok || code != "x = 1" {
		t.Errorf("Code() = (%q, %v), want first block", code, ok)
	}
}

func TestCode_Absent(t *testing.T) {
	if code, ok := Code("no code here", "none here either"); ok {
		t.Errorf("Code() = (%q, true), want absent", code)
	}
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		payload map[string]any
		want    int
	}{
		{"score with slash", "PASS, Score: 92/100, looks good", nil, 92},
		{"score without slash", "score 88", nil, 88},
		{"case insensitive", "SCORE: 77", nil, 77},
		{"clamped above 100", "Score: 250", nil, 100},
		{"payload int fallback", "no score in text", map[string]any{"quality_score": 73}, 73},
		{"payload float fallback", "nothing", map[string]any{"quality_score": float64(81)}, 81},
		{"payload string fallback", "nothing", map[string]any{"quality_score": "66"}, 66},
		{"default when absent", "looks good to me", nil, DefaultQualityScore},
		{"default on junk payload", "nothing", map[string]any{"quality_score": []int{1}}, DefaultQualityScore},
		{"text wins over payload", "Score: 90", map[string]any{"quality_score": 50}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualityScore(tt.text, tt.payload); got != tt.want {
				t.Errorf("QualityScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Complexity
	}{
		{"natural form", "Overall complexity: simple, few edge cases", models.ComplexitySimple},
		{"json form", `{"task_type": "function", "complexity": "medium"}`, models.ComplexityMedium},
		{"uppercase", "COMPLEXITY: COMPLEX", models.ComplexityComplex},
		{"first match wins", "complexity: simple ... complexity: complex", models.ComplexitySimple},
		{"absent defaults to unknown", "no tag here", models.ComplexityUnknown},
		{"unrecognized tag defaults to unknown", "complexity: enormous", models.ComplexityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Complexity(tt.text); got != tt.want {
				t.Errorf("Complexity(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountCodeLines(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"empty", "", 0},
		{"one line", "x = 1", 1},
		{"three lines", "a\nb\nc", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountCodeLines(tt.code); got != tt.want {
				t.Errorf("CountCodeLines(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
