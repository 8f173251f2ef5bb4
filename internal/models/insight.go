package models

import "time"

// InsightCategory classifies the tone of a coaching insight
type InsightCategory string

const (
	CategoryWarning     InsightCategory = "warning"
	CategorySuggestion  InsightCategory = "suggestion"
	CategoryCelebration InsightCategory = "celebration"
	CategoryInformation InsightCategory = "information"
)

// InsightPriority orders coaching insights for presentation
type InsightPriority string

const (
	PriorityLow      InsightPriority = "low"
	PriorityMedium   InsightPriority = "medium"
	PriorityHigh     InsightPriority = "high"
	PriorityCritical InsightPriority = "critical"
)

// Action is a concrete step a coaching insight suggests
type Action struct {
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
}

// CoachingInsight is one ranked, human-readable recommendation with its
// supporting evidence. Generated per analysis request, never persisted;
// dismissal state lives with the consumer.
type CoachingInsight struct {
	ID         string          `json:"id"`
	Category   InsightCategory `json:"category"`
	Priority   InsightPriority `json:"priority"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Evidence   []string        `json:"evidence,omitempty"`
	Actions    []Action        `json:"actions,omitempty"`
	Confidence float64         `json:"confidence"` // 0-1
	CreatedAt  time.Time       `json:"created_at"`
}

// ModificationKind names one adjustable workout parameter
type ModificationKind string

const (
	ModifyIntensity ModificationKind = "intensity"
	ModifyVolume    ModificationKind = "volume"
	ModifyRest      ModificationKind = "rest"
	ModifyMobility  ModificationKind = "mobility"
	ModifyDeload    ModificationKind = "deload"
)

// WorkoutModification is one structured parameter adjustment derived from
// the readiness assessment
type WorkoutModification struct {
	Kind       ModificationKind `json:"kind"`
	DeltaPct   float64          `json:"delta_pct,omitempty"` // signed percentage change
	ExtraRest  time.Duration    `json:"extra_rest,omitempty"`
	Reason     string           `json:"reason"`
	AppliesTo  string           `json:"applies_to,omitempty"`
	Confidence float64          `json:"confidence"` // 0-1
}

// InsightBundle is the fan-in result of one full analysis request
type InsightBundle struct {
	UserID        string                `json:"user_id"`
	GeneratedAt   time.Time             `json:"generated_at"`
	Readiness     *ReadinessAnalysis    `json:"readiness,omitempty"`
	Trends        []TrendResult         `json:"trends,omitempty"`
	Anomalies     []AnomalyEvent        `json:"anomalies,omitempty"`
	Models        []PredictionModel     `json:"models,omitempty"`
	Insights      []CoachingInsight     `json:"insights"`
	Modifications []WorkoutModification `json:"modifications,omitempty"`
	Stale         bool                  `json:"stale,omitempty"`
}
