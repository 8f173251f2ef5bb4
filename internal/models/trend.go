package models

// TrendType classifies the overall shape of a metric series
type TrendType string

const (
	TrendIncreasing TrendType = "increasing"
	TrendDecreasing TrendType = "decreasing"
	TrendStable     TrendType = "stable"
	TrendVolatile   TrendType = "volatile"
)

// TrendDirection indicates whether the movement helps or hurts the athlete
type TrendDirection string

const (
	DirectionPositive TrendDirection = "positive"
	DirectionNegative TrendDirection = "negative"
	DirectionNeutral  TrendDirection = "neutral"
)

// TrendResult is the classification of one metric series.
// Confidence is the clamped R² of the underlying line fit.
type TrendResult struct {
	Trend      TrendType      `json:"trend"`
	Direction  TrendDirection `json:"direction"`
	Confidence float64        `json:"confidence"`
	Slope      float64        `json:"slope"`
	Volatility float64        `json:"volatility"`
}
