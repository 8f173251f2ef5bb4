package models

// BenchmarkTable holds the fixed percentile breakpoints for one exercise
// or metric within a cohort. Static reference data, read-only.
type BenchmarkTable struct {
	Exercise string  `json:"exercise"`
	Unit     string  `json:"unit"`
	P10      float64 `json:"p10"`
	P25      float64 `json:"p25"`
	P50      float64 `json:"p50"`
	P75      float64 `json:"p75"`
	P90      float64 `json:"p90"`
	P95      float64 `json:"p95"`
	P99      float64 `json:"p99"`
	Cohort   Cohort  `json:"cohort"`
}

// Cohort describes the population a benchmark table was drawn from
type Cohort struct {
	Sex        string `json:"sex,omitempty"`
	AgeRange   string `json:"age_range,omitempty"`
	Experience string `json:"experience,omitempty"`
	SampleSize int    `json:"sample_size,omitempty"`
}

// Breakpoints returns the table's known (percentile, value) pairs in
// ascending percentile order
func (t BenchmarkTable) Breakpoints() ([]float64, []float64) {
	percentiles := []float64{10, 25, 50, 75, 90, 95, 99}
	values := []float64{t.P10, t.P25, t.P50, t.P75, t.P90, t.P95, t.P99}
	return percentiles, values
}

// ExerciseRank is one exercise's standing against its benchmark table
type ExerciseRank struct {
	Exercise   string  `json:"exercise"`
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"` // 0-100
	MajorLift  bool    `json:"major_lift"`
}

// ImprovementOpportunity proposes a realistic next percentile target
type ImprovementOpportunity struct {
	Exercise          string  `json:"exercise"`
	CurrentPercentile float64 `json:"current_percentile"`
	TargetPercentile  float64 `json:"target_percentile"`
	CurrentValue      float64 `json:"current_value"`
	TargetValue       float64 `json:"target_value"`
	RequiredDelta     float64 `json:"required_delta"`
	EstimatedWeeks    int     `json:"estimated_weeks,omitempty"`
}

// CompetitiveAnalysis is the cross-exercise benchmark summary
type CompetitiveAnalysis struct {
	OverallPercentile float64                  `json:"overall_percentile"`
	Ranks             []ExerciseRank           `json:"ranks"`
	Opportunities     []ImprovementOpportunity `json:"opportunities"`
}
