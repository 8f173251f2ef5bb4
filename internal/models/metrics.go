package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MetricType identifies one tracked wellness or performance signal
type MetricType string

const (
	MetricSleep    MetricType = "sleep"
	MetricEnergy   MetricType = "energy"
	MetricSoreness MetricType = "soreness"
	MetricStress   MetricType = "stress"
	MetricHRV      MetricType = "hrv"
	MetricOneRM    MetricType = "one_rm"
	MetricVolume   MetricType = "volume"
	MetricRPE      MetricType = "rpe"
)

// MetricPoint is a single dated reading of one signal
type MetricPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MetricSeries is a time-ordered sequence of readings for one signal.
// The caller owns the slice for the duration of one analysis call.
type MetricSeries struct {
	Metric MetricType    `json:"metric"`
	Points []MetricPoint `json:"points"`
}

// Values returns the raw values in series order
func (s MetricSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Len returns the number of points in the series
func (s MetricSeries) Len() int {
	return len(s.Points)
}

// SortByDate orders the points oldest first
func (s MetricSeries) SortByDate() {
	sort.Slice(s.Points, func(i, j int) bool {
		return s.Points[i].Date.Before(s.Points[j].Date)
	})
}

// LastN returns the most recent n points (or all of them when fewer exist)
func (s MetricSeries) LastN(n int) []MetricPoint {
	if n >= len(s.Points) {
		return s.Points
	}
	return s.Points[len(s.Points)-n:]
}

// OlderThan returns the points dated strictly before the cutoff
func (s MetricSeries) OlderThan(cutoff time.Time) []MetricPoint {
	var out []MetricPoint
	for _, p := range s.Points {
		if p.Date.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// WellnessSnapshot holds one day's raw wellness check-in values.
// Sleep is hours, the 1-10 scales are subjective ratings, HRV is
// milliseconds and optional.
type WellnessSnapshot struct {
	Date     time.Time `json:"date"`
	Sleep    *float64  `json:"sleep,omitempty"`
	Energy   *float64  `json:"energy,omitempty"`
	Soreness *float64  `json:"soreness,omitempty"`
	Stress   *float64  `json:"stress,omitempty"`
	HRV      *float64  `json:"hrv,omitempty"`
}

// ExerciseRecord represents one logged performance entry for an exercise
type ExerciseRecord struct {
	Date     time.Time       `json:"date"`
	Exercise string          `json:"exercise"`
	Weight   decimal.Decimal `json:"weight"`
	Reps     int             `json:"reps"`
	Sets     int             `json:"sets"`
	RPE      float64         `json:"rpe"`
	OneRM    decimal.Decimal `json:"one_rm"`
	Volume   decimal.Decimal `json:"volume"`
}

// OneRMSeries extracts a dated one-rep-max series from performance records
func OneRMSeries(records []ExerciseRecord) MetricSeries {
	series := MetricSeries{Metric: MetricOneRM, Points: make([]MetricPoint, 0, len(records))}
	for _, r := range records {
		oneRM, _ := r.OneRM.Float64()
		series.Points = append(series.Points, MetricPoint{Date: r.Date, Value: oneRM})
	}
	series.SortByDate()
	return series
}

// VolumeSeries extracts a dated training-volume series from performance records
func VolumeSeries(records []ExerciseRecord) MetricSeries {
	series := MetricSeries{Metric: MetricVolume, Points: make([]MetricPoint, 0, len(records))}
	for _, r := range records {
		volume, _ := r.Volume.Float64()
		series.Points = append(series.Points, MetricPoint{Date: r.Date, Value: volume})
	}
	series.SortByDate()
	return series
}
