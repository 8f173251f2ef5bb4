package services

import (
	"fmt"
	"math"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
	"github.com/vitalsync/fitlytics-go/internal/stats"
)

// AnomalyDetector flags performance drops, volume spikes, RPE streaks and
// training-frequency shifts
type AnomalyDetector struct {
	cfg    config.AnomalyConfig
	logger *logrus.Logger
}

// NewAnomalyDetector creates an anomaly detector
func NewAnomalyDetector(cfg config.AnomalyConfig, logger *logrus.Logger) *AnomalyDetector {
	return &AnomalyDetector{cfg: cfg, logger: logger}
}

// DetectAll runs every detector over the athlete's recent history
func (ad *AnomalyDetector) DetectAll(performance, volume models.MetricSeries, records []models.ExerciseRecord) []models.AnomalyEvent {
	var events []models.AnomalyEvent

	if e := ad.DetectPerformanceDrop(performance); e != nil {
		events = append(events, *e)
	}
	if e := ad.DetectVolumeSpike(volume); e != nil {
		events = append(events, *e)
	}
	events = append(events, ad.DetectRPEStreaks(records)...)
	events = append(events, ad.DetectFrequencyChanges(records)...)

	if ad.logger != nil && len(events) > 0 {
		ad.logger.WithField("count", len(events)).Info("Detected training anomalies")
	}
	return events
}

// DetectPerformanceDrop compares the latest value against the moving
// average of the sessions before it. The window shrinks with sparse data
// down to a single prior session.
func (ad *AnomalyDetector) DetectPerformanceDrop(series models.MetricSeries) *models.AnomalyEvent {
	values := series.Values()
	n := len(values)
	if n < 2 {
		return nil
	}

	window := 3
	if n-1 < window {
		window = n - 1
	}

	sma := trend.NewSmaWithPeriod[float64](window)
	averages := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values[:n-1])))
	if len(averages) == 0 {
		return nil
	}
	windowAvg := averages[len(averages)-1]
	if windowAvg <= 0 {
		return nil
	}

	current := values[n-1]
	drop := (windowAvg - current) / windowAvg
	if drop < ad.cfg.DropThresholdPct {
		return nil
	}

	severity := models.SeverityMedium
	if drop >= ad.cfg.DropHighPct {
		severity = models.SeverityHigh
	}

	return &models.AnomalyEvent{
		ID:         uuid.New().String(),
		Kind:       models.AnomalyPerformanceDrop,
		Severity:   severity,
		Confidence: ad.exceedanceConfidence(drop, ad.cfg.DropThresholdPct),
		DetectedAt: series.Points[n-1].Date,
		Expected:   windowAvg,
		Actual:     current,
		Deviation:  drop,
		Message:    fmt.Sprintf("Performance dropped %.0f%% below your recent %d-session average", drop*100, window),
	}
}

// DetectVolumeSpike flags the latest session when its volume sits far
// above the series mean in z-score terms
func (ad *AnomalyDetector) DetectVolumeSpike(series models.MetricSeries) *models.AnomalyEvent {
	values := series.Values()
	n := len(values)
	if n < 4 {
		return nil
	}

	mean := stats.Mean(values)
	stdDev := stats.StdDev(values)
	if stdDev == 0 {
		return nil
	}

	current := values[n-1]
	z := (current - mean) / stdDev
	if math.Abs(z) <= ad.cfg.SpikeZScore || current <= mean {
		return nil
	}

	severity := models.SeverityMedium
	if z > ad.cfg.SpikeHighZScore {
		severity = models.SeverityHigh
	}

	return &models.AnomalyEvent{
		ID:         uuid.New().String(),
		Kind:       models.AnomalyVolumeSpike,
		Severity:   severity,
		Confidence: ad.exceedanceConfidence(math.Abs(z), ad.cfg.SpikeZScore),
		DetectedAt: series.Points[n-1].Date,
		Expected:   mean,
		Actual:     current,
		Deviation:  z,
		Message:    fmt.Sprintf("Training volume spiked %.1f standard deviations above your norm", z),
	}
}

// DetectRPEStreaks flags runs of consecutive sessions at or above the RPE
// threshold. Sustained near-maximal effort without a back-off session is
// an overreach marker.
func (ad *AnomalyDetector) DetectRPEStreaks(records []models.ExerciseRecord) []models.AnomalyEvent {
	var events []models.AnomalyEvent

	streakStart := -1
	for i := 0; i <= len(records); i++ {
		inStreak := i < len(records) && records[i].RPE >= ad.cfg.RPEThreshold
		if inStreak {
			if streakStart == -1 {
				streakStart = i
			}
			continue
		}
		if streakStart == -1 {
			continue
		}

		length := i - streakStart
		if length >= ad.cfg.RPEStreakLength {
			events = append(events, ad.rpeStreakEvent(records[streakStart:i], length))
		}
		streakStart = -1
	}

	return events
}

func (ad *AnomalyDetector) rpeStreakEvent(streak []models.ExerciseRecord, length int) models.AnomalyEvent {
	var sum float64
	for _, r := range streak {
		sum += r.RPE
	}
	avgRPE := sum / float64(length)

	severity := models.SeverityMedium
	if length >= ad.cfg.RPEStreakHighLength {
		severity = models.SeverityHigh
	}

	return models.AnomalyEvent{
		ID:         uuid.New().String(),
		Kind:       models.AnomalyRPE,
		Severity:   severity,
		Confidence: ad.exceedanceConfidence(float64(length), float64(ad.cfg.RPEStreakLength)),
		DetectedAt: streak[length-1].Date,
		Expected:   ad.cfg.RPEThreshold,
		Actual:     avgRPE,
		Deviation:  avgRPE - ad.cfg.RPEThreshold,
		Message:    fmt.Sprintf("%d consecutive sessions at RPE %.1f or higher", length, ad.cfg.RPEThreshold),
	}
}

// DetectFrequencyChanges buckets sessions into calendar weeks and flags
// weeks that deviate sharply from the running average of the weeks before
// them
func (ad *AnomalyDetector) DetectFrequencyChanges(records []models.ExerciseRecord) []models.AnomalyEvent {
	weeks := sessionsPerWeek(records)
	if len(weeks) < 3 {
		return nil
	}

	var events []models.AnomalyEvent
	var runningSum float64

	for i, w := range weeks {
		if i == 0 {
			runningSum = float64(w.count)
			continue
		}

		runningAvg := runningSum / float64(i)
		runningSum += float64(w.count)
		if runningAvg == 0 {
			continue
		}

		deviation := math.Abs(float64(w.count)-runningAvg) / runningAvg
		if deviation <= ad.cfg.FrequencyDeviation {
			continue
		}

		severity := models.SeverityMedium
		if deviation > ad.cfg.FrequencyHighDev {
			severity = models.SeverityHigh
		}

		direction := "up"
		if float64(w.count) < runningAvg {
			direction = "down"
		}

		events = append(events, models.AnomalyEvent{
			ID:         uuid.New().String(),
			Kind:       models.AnomalyFrequencyChange,
			Severity:   severity,
			Confidence: ad.exceedanceConfidence(deviation, ad.cfg.FrequencyDeviation),
			DetectedAt: w.start.AddDate(0, 0, 6),
			Expected:   runningAvg,
			Actual:     float64(w.count),
			Deviation:  deviation,
			Message:    fmt.Sprintf("Training frequency shifted %s %.0f%% versus your running average", direction, deviation*100),
		})
	}

	return events
}

// exceedanceConfidence grows with how far a signal sits past its
// threshold, capped below certainty
func (ad *AnomalyDetector) exceedanceConfidence(value, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}
	excess := (value - threshold) / threshold
	confidence := 0.5 + excess
	if confidence > ad.cfg.MaxConfidence {
		confidence = ad.cfg.MaxConfidence
	}
	return stats.Clamp01(confidence)
}

type weekBucket struct {
	start time.Time
	count int
}

// sessionsPerWeek counts sessions per ISO-style Monday-anchored week,
// including empty weeks between the first and last session
func sessionsPerWeek(records []models.ExerciseRecord) []weekBucket {
	if len(records) == 0 {
		return nil
	}

	counts := make(map[time.Time]int)
	var first, last time.Time
	for _, r := range records {
		ws := weekStart(r.Date)
		counts[ws]++
		if first.IsZero() || ws.Before(first) {
			first = ws
		}
		if ws.After(last) {
			last = ws
		}
	}

	var weeks []weekBucket
	for ws := first; !ws.After(last); ws = ws.AddDate(0, 0, 7) {
		weeks = append(weeks, weekBucket{start: ws, count: counts[ws]})
	}
	return weeks
}

func weekStart(t time.Time) time.Time {
	t = t.Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}
