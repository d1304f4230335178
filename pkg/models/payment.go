package models

// QualityTier is the discrete bucket derived from a quality score.
type QualityTier string

const (
	// QualityExcellent covers scores 95-100.
	QualityExcellent QualityTier = "excellent"
	// QualityGood covers scores 85-94.
	QualityGood QualityTier = "good"
	// QualityAcceptable covers scores 70-84.
	QualityAcceptable QualityTier = "acceptable"
	// QualityNeedsWork covers scores below 70.
	QualityNeedsWork QualityTier = "needs_work"
)

// TimeTier is the discrete bucket derived from execution time.
type TimeTier string

const (
	// TimeVeryFast covers runs under 30 seconds.
	TimeVeryFast TimeTier = "very_fast"
	// TimeFast covers runs between 30 and 60 seconds.
	TimeFast TimeTier = "fast"
	// TimeNormal covers runs between 60 and 120 seconds.
	TimeNormal TimeTier = "normal"
	// TimeSlow covers runs over 120 seconds.
	TimeSlow TimeTier = "slow"
)

// PaymentBreakdown is the full audit trail behind a payment amount.
// Every intermediate value is carried so the amount can be re-derived.
type PaymentBreakdown struct {
	// BasePrice is the complexity-table price before multipliers.
	BasePrice float64 `json:"base_price"`
	// Complexity is the normalized complexity tag used for the lookup.
	Complexity Complexity `json:"complexity"`
	// QualityScore is the raw 0-100 input score.
	QualityScore int `json:"quality_score"`
	// QualityTier is the bucket the score fell into.
	QualityTier QualityTier `json:"quality_tier"`
	// QualityMultiplier is the multiplier applied for the quality tier.
	QualityMultiplier float64 `json:"quality_multiplier"`
	// ExecutionTimeSec is the run duration in seconds, rounded to 2 places.
	ExecutionTimeSec float64 `json:"execution_time_sec"`
	// TimeTier is the bucket the duration fell into.
	TimeTier TimeTier `json:"time_tier"`
	// TimeMultiplier is the multiplier applied for the time tier.
	TimeMultiplier float64 `json:"time_multiplier"`
	// TokenCost is the token surcharge in USD, rounded to 4 places.
	TokenCost float64 `json:"token_cost"`
	// TokensUsed is the raw token count input.
	TokensUsed int64 `json:"tokens_used"`
	// CodeLines is informational only and never priced.
	CodeLines int `json:"code_lines"`
}

// Payment is the computed price for a completed run.
// Derived purely from run outcome fields; immutable after creation.
type Payment struct {
	// Amount is the final payment in Currency, floored at 0.01.
	Amount float64 `json:"amount"`
	// Currency is the ISO currency tag, always "USD".
	Currency string `json:"currency"`
	// Breakdown is the audit trail for the amount.
	Breakdown PaymentBreakdown `json:"breakdown"`
}
