package models

import "time"

// AnomalyKind identifies the category of detected irregularity
type AnomalyKind string

const (
	AnomalyPerformanceDrop AnomalyKind = "performance_drop"
	AnomalyVolumeSpike     AnomalyKind = "volume_spike"
	AnomalyRPE             AnomalyKind = "rpe_anomaly"
	AnomalyFrequencyChange AnomalyKind = "frequency_change"
)

// Severity grades how far an anomaly exceeds its detection threshold
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AnomalyEvent is one flagged irregularity in a training or wellness series
type AnomalyEvent struct {
	ID         string      `json:"id"`
	Kind       AnomalyKind `json:"kind"`
	Severity   Severity    `json:"severity"`
	Confidence float64     `json:"confidence"` // 0-1, capped at 0.9
	DetectedAt time.Time   `json:"detected_at"`
	Expected   float64     `json:"expected"`
	Actual     float64     `json:"actual"`
	Deviation  float64     `json:"deviation"`
	Message    string      `json:"message"`
}
