package models

import "time"

// FactorName identifies one readiness input factor
type FactorName string

const (
	FactorSleep    FactorName = "sleep"
	FactorEnergy   FactorName = "energy"
	FactorSoreness FactorName = "soreness"
	FactorStress   FactorName = "stress"
	FactorHRV      FactorName = "hrv"
)

// FactorTrend describes the short-term movement of one readiness factor
type FactorTrend string

const (
	FactorImproving FactorTrend = "improving"
	FactorStable    FactorTrend = "stable"
	FactorDeclining FactorTrend = "declining"
)

// ReadinessLevel buckets the overall readiness score
type ReadinessLevel string

const (
	ReadinessPoor      ReadinessLevel = "poor"
	ReadinessFair      ReadinessLevel = "fair"
	ReadinessGood      ReadinessLevel = "good"
	ReadinessExcellent ReadinessLevel = "excellent"
)

// ReadinessFactor is one weighted wellness component of the overall score
type ReadinessFactor struct {
	Name   FactorName  `json:"name"`
	Value  float64     `json:"value"`
	Weight float64     `json:"weight"`
	Score  float64     `json:"score"` // 0-100
	Trend  FactorTrend `json:"trend"`
}

// ReadinessAnalysis is the composite recovery assessment for one day
type ReadinessAnalysis struct {
	Date            time.Time         `json:"date"`
	OverallScore    float64           `json:"overall_score"` // 0-100
	Level           ReadinessLevel    `json:"level"`
	Factors         []ReadinessFactor `json:"factors"`
	Baseline        float64           `json:"baseline"`
	Deviation       float64           `json:"deviation"`
	Confidence      float64           `json:"confidence"` // 0-1
	Recommendations []string          `json:"recommendations"`
	Stale           bool              `json:"stale,omitempty"`
}
