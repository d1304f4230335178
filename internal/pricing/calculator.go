// Package pricing converts run outcomes into deterministic micropayments.
// The calculator is a pure function of its inputs: invalid values are
// clamped or defaulted, never rejected, so pricing can never fail a run.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/codecollab/swarm/pkg/models"
)

// BasePricing maps task complexity to base price in USD.
var BasePricing = map[models.Complexity]float64{
	models.ComplexitySimple:  0.03,
	models.ComplexityMedium:  0.08,
	models.ComplexityComplex: 0.20,
	models.ComplexityUnknown: 0.05,
}

// QualityMultipliers maps quality tier to its price multiplier.
var QualityMultipliers = map[models.QualityTier]float64{
	models.QualityExcellent:  1.30,
	models.QualityGood:       1.15,
	models.QualityAcceptable: 1.00,
	models.QualityNeedsWork:  0.80,
}

// TimeMultipliers maps time tier to its price multiplier.
var TimeMultipliers = map[models.TimeTier]float64{
	models.TimeVeryFast: 1.10,
	models.TimeFast:     1.05,
	models.TimeNormal:   1.00,
	models.TimeSlow:     0.95,
}

// TokenCostPer1K is the token surcharge in USD per 1K tokens.
const TokenCostPer1K = 0.0001

// MinimumPayment is the floor applied after rounding.
const MinimumPayment = 0.01

// Inputs holds the raw inputs for a payment calculation.
type Inputs struct {
	// Complexity is the extracted complexity tag. Unrecognized values
	// fall back to unknown.
	Complexity models.Complexity
	// QualityScore is the 0-100 quality score. Out-of-range values are clamped.
	QualityScore int
	// ExecutionTimeMS is the run duration in milliseconds.
	ExecutionTimeMS int64
	// TokensUsed is the total token usage. Negative values count as zero.
	TokensUsed int64
	// CodeLines is carried into the breakdown but never priced.
	CodeLines int
}

// Calculate computes the payment for a run outcome.
// Formula: round(base × quality × time + token_cost, 2), floored at $0.01.
func Calculate(in Inputs) *models.Payment {
	complexity := normalizeComplexity(in.Complexity)
	basePrice := BasePricing[complexity]

	score := clampScore(in.QualityScore)
	qualityTier := QualityTierFor(score)
	qualityMult := QualityMultipliers[qualityTier]

	execSec := 0.0
	if in.ExecutionTimeMS > 0 {
		execSec = float64(in.ExecutionTimeMS) / 1000.0
	}
	timeTier := TimeTierFor(execSec)
	timeMult := TimeMultipliers[timeTier]

	tokenCost := 0.0
	if in.TokensUsed > 0 {
		tokenCost = float64(in.TokensUsed) / 1000.0 * TokenCostPer1K
	}

	adjusted := basePrice * qualityMult * timeMult
	amount := roundTo(adjusted+tokenCost, 2)
	if amount < MinimumPayment {
		amount = MinimumPayment
	}

	return &models.Payment{
		Amount:   amount,
		Currency: "USD",
		Breakdown: models.PaymentBreakdown{
			BasePrice:         basePrice,
			Complexity:        complexity,
			QualityScore:      score,
			QualityTier:       qualityTier,
			QualityMultiplier: qualityMult,
			ExecutionTimeSec:  roundTo(execSec, 2),
			TimeTier:          timeTier,
			TimeMultiplier:    timeMult,
			TokenCost:         roundTo(tokenCost, 4),
			TokensUsed:        maxInt64(in.TokensUsed, 0),
			CodeLines:         in.CodeLines,
		},
	}
}

// QualityTierFor maps a 0-100 score to its quality tier.
func QualityTierFor(score int) models.QualityTier {
	switch {
	case score >= 95:
		return models.QualityExcellent
	case score >= 85:
		return models.QualityGood
	case score >= 70:
		return models.QualityAcceptable
	default:
		return models.QualityNeedsWork
	}
}

// TimeTierFor maps an execution time in seconds to its time tier.
func TimeTierFor(sec float64) models.TimeTier {
	switch {
	case sec < 30:
		return models.TimeVeryFast
	case sec < 60:
		return models.TimeFast
	case sec <= 120:
		return models.TimeNormal
	default:
		return models.TimeSlow
	}
}

// FormatSummary renders a payment as a short multi-line display string.
func FormatSummary(p *models.Payment) string {
	b := p.Breakdown

	var sb strings.Builder
	fmt.Fprintf(&sb, "Payment: $%.2f\n", p.Amount)
	fmt.Fprintf(&sb, "  Base (%s): $%.2f\n", b.Complexity, b.BasePrice)
	fmt.Fprintf(&sb, "  Quality bonus (%s): x%.2f\n", b.QualityTier, b.QualityMultiplier)
	fmt.Fprintf(&sb, "  Speed bonus (%s): x%.2f\n", b.TimeTier, b.TimeMultiplier)
	if b.TokenCost > 0 {
		fmt.Fprintf(&sb, "  Token cost (%d tokens): +$%.4f\n", b.TokensUsed, b.TokenCost)
	}
	return sb.String()
}

// normalizeComplexity lowercases the tag and falls back to unknown
// for unrecognized values.
func normalizeComplexity(c models.Complexity) models.Complexity {
	normalized := models.Complexity(strings.ToLower(string(c)))
	if _, ok := BasePricing[normalized]; !ok {
		return models.ComplexityUnknown
	}
	return normalized
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

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
