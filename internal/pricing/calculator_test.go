package pricing

import (
	"math"
	"strings"
	"testing"

	"github.com/codecollab/swarm/pkg/models"
)

func TestCalculate_SimpleGoodVeryFast(t *testing.T) {
	// 0.03 * 1.15 * 1.10 = 0.03795, + 0.0001 token cost = 0.03895 -> 0.04
	p := Calculate(Inputs{
		Complexity:      models.ComplexitySimple,
		QualityScore:    90,
		ExecutionTimeMS: 20000,
		TokensUsed:      1000,
	})

	if p.Amount != 0.04 {
		t.Errorf("Amount = %v, want 0.04", p.Amount)
	}
	if p.Breakdown.QualityTier != models.QualityGood {
		t.Errorf("QualityTier = %q, want good", p.Breakdown.QualityTier)
	}
	if p.Breakdown.TimeTier != models.TimeVeryFast {
		t.Errorf("TimeTier = %q, want very_fast", p.Breakdown.TimeTier)
	}
	if p.Breakdown.TokenCost != 0.0001 {
		t.Errorf("TokenCost = %v, want 0.0001", p.Breakdown.TokenCost)
	}
}

func TestCalculate_ComplexNeedsWorkSlow(t *testing.T) {
	// 0.20 * 0.80 * 0.95 = 0.152 -> 0.15
	p := Calculate(Inputs{
		Complexity:      models.ComplexityComplex,
		QualityScore:    60,
		ExecutionTimeMS: 150000,
		TokensUsed:      0,
	})

	if p.Amount != 0.15 {
		t.Errorf("Amount = %v, want 0.15", p.Amount)
	}
	if p.Breakdown.TimeTier != models.TimeSlow {
		t.Errorf("TimeTier = %q, want slow", p.Breakdown.TimeTier)
	}
	if p.Breakdown.TokenCost != 0 {
		t.Errorf("TokenCost = %v, want 0", p.Breakdown.TokenCost)
	}
}

func TestCalculate_MinimumAndRounding(t *testing.T) {
	complexities := []models.Complexity{
		models.ComplexitySimple, models.ComplexityMedium,
		models.ComplexityComplex, models.ComplexityUnknown,
	}
	scores := []int{0, 50, 70, 85, 95, 100}
	times := []int64{0, 10000, 45000, 90000, 300000}

	for _, c := range complexities {
		for _, q := range scores {
			for _, ms := range times {
				p := Calculate(Inputs{Complexity: c, QualityScore: q, ExecutionTimeMS: ms})
				if p.Amount < MinimumPayment {
					t.Errorf("Calculate(%s, %d, %d) = %v, below minimum", c, q, ms, p.Amount)
				}
				cents := p.Amount * 100
				if math.Abs(cents-math.Round(cents)) > 1e-9 {
					t.Errorf("Calculate(%s, %d, %d) = %v, not rounded to cents", c, q, ms, p.Amount)
				}
			}
		}
	}
}

func TestCalculate_QualityMonotonic(t *testing.T) {
	// Representative score for each tier, descending.
	scores := []int{97, 88, 75, 40}

	var prev float64 = math.Inf(1)
	for _, score := range scores {
		p := Calculate(Inputs{
			Complexity:      models.ComplexityMedium,
			QualityScore:    score,
			ExecutionTimeMS: 90000,
			TokensUsed:      500,
		})
		if p.Amount > prev {
			t.Errorf("payment for score %d (%v) exceeds higher tier (%v)", score, p.Amount, prev)
		}
		prev = p.Amount
	}
}

func TestCalculate_TimeMonotonic(t *testing.T) {
	// Representative duration for each tier, slowest last.
	times := []int64{10000, 45000, 90000, 200000}

	var prev float64 = math.Inf(1)
	for _, ms := range times {
		p := Calculate(Inputs{
			Complexity:      models.ComplexityComplex,
			QualityScore:    90,
			ExecutionTimeMS: ms,
		})
		if p.Amount > prev {
			t.Errorf("payment for %dms (%v) exceeds faster tier (%v)", ms, p.Amount, prev)
		}
		prev = p.Amount
	}
}

func TestCalculate_UnrecognizedComplexityFallsBack(t *testing.T) {
	p := Calculate(Inputs{Complexity: models.Complexity("gigantic"), QualityScore: 85})
	if p.Breakdown.Complexity != models.ComplexityUnknown {
		t.Errorf("Complexity = %q, want unknown", p.Breakdown.Complexity)
	}
	if p.Breakdown.BasePrice != BasePricing[models.ComplexityUnknown] {
		t.Errorf("BasePrice = %v, want %v", p.Breakdown.BasePrice, BasePricing[models.ComplexityUnknown])
	}
}

func TestCalculate_CaseInsensitiveComplexity(t *testing.T) {
	p := Calculate(Inputs{Complexity: models.Complexity("Simple"), QualityScore: 85})
	if p.Breakdown.Complexity != models.ComplexitySimple {
		t.Errorf("Complexity = %q, want simple", p.Breakdown.Complexity)
	}
}

func TestCalculate_ClampsInvalidInputs(t *testing.T) {
	p := Calculate(Inputs{
		Complexity:      models.ComplexitySimple,
		QualityScore:    150,
		ExecutionTimeMS: -5,
		TokensUsed:      -100,
	})
	if p.Breakdown.QualityScore != 100 {
		t.Errorf("QualityScore = %d, want clamped 100", p.Breakdown.QualityScore)
	}
	if p.Breakdown.ExecutionTimeSec != 0 {
		t.Errorf("ExecutionTimeSec = %v, want 0", p.Breakdown.ExecutionTimeSec)
	}
	if p.Breakdown.TokensUsed != 0 {
		t.Errorf("TokensUsed = %d, want 0", p.Breakdown.TokensUsed)
	}
	if p.Breakdown.TokenCost != 0 {
		t.Errorf("TokenCost = %v, want 0", p.Breakdown.TokenCost)
	}
}

func TestQualityTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  models.QualityTier
	}{
		{100, models.QualityExcellent},
		{95, models.QualityExcellent},
		{94, models.QualityGood},
		{85, models.QualityGood},
		{84, models.QualityAcceptable},
		{70, models.QualityAcceptable},
		{69, models.QualityNeedsWork},
		{0, models.QualityNeedsWork},
	}
	for _, tt := range tests {
		if got := QualityTierFor(tt.score); got != tt.want {
			t.Errorf("QualityTierFor(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestTimeTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		sec  float64
		want models.TimeTier
	}{
		{0, models.TimeVeryFast},
		{29.9, models.TimeVeryFast},
		{30, models.TimeFast},
		{59.9, models.TimeFast},
		{60, models.TimeNormal},
		{120, models.TimeNormal},
		{120.1, models.TimeSlow},
	}
	for _, tt := range tests {
		if got := TimeTierFor(tt.sec); got != tt.want {
			t.Errorf("TimeTierFor(%v) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	p := Calculate(Inputs{
		Complexity:      models.ComplexitySimple,
		QualityScore:    90,
		ExecutionTimeMS: 20000,
		TokensUsed:      1000,
	})
	got := FormatSummary(p)
	for _, want := range []string{"Payment: $0.04", "Base (simple)", "Quality bonus (good)", "Token cost (1000 tokens)"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatSummary missing %q in:\n%s", want, got)
		}
	}
}
