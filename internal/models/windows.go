package models

// Chronotype is an athlete's circadian tendency
type Chronotype string

const (
	ChronotypeMorning Chronotype = "morning"
	ChronotypeEvening Chronotype = "evening"
	ChronotypeNeutral Chronotype = "neutral"
)

// HourScore rates one hour of the day for training suitability
type HourScore struct {
	Hour  int     `json:"hour"`  // 0-23
	Score float64 `json:"score"` // 0-100
}

// TrainingWindow is a contiguous block of well-scored hours
type TrainingWindow struct {
	StartHour int     `json:"start_hour"`
	EndHour   int     `json:"end_hour"`
	Score     float64 `json:"score"`
}

// OptimalTrainingWindows is the chronotype profile plus the ranked
// hour-by-hour suitability curve
type OptimalTrainingWindows struct {
	Chronotype      Chronotype          `json:"chronotype"`
	Confidence      float64             `json:"confidence"` // 0-1
	HourScores      []HourScore         `json:"hour_scores"`
	Primary         *TrainingWindow     `json:"primary,omitempty"`
	Secondary       *TrainingWindow     `json:"secondary,omitempty"`
	DayOfWeekScores map[string]float64  `json:"day_of_week_scores,omitempty"`
}
