package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
)

func newTestAnomalyDetector() *AnomalyDetector {
	return NewAnomalyDetector(config.Default().Anomaly, testLogger())
}

func rpeRecords(rpes ...float64) []models.ExerciseRecord {
	records := make([]models.ExerciseRecord, len(rpes))
	for i, rpe := range rpes {
		records[i] = models.ExerciseRecord{
			Date:     testDay.AddDate(0, 0, i-len(rpes)),
			Exercise: "bench press",
			Weight:   decimal.NewFromInt(100),
			Reps:     5,
			Sets:     3,
			RPE:      rpe,
		}
	}
	return records
}

func TestDetectPerformanceDrop(t *testing.T) {
	ad := newTestAnomalyDetector()

	tests := []struct {
		name         string
		values       []float64
		wantEvent    bool
		wantSeverity models.Severity
	}{
		{
			name:         "15 percent drop below window average",
			values:       []float64{100, 100, 100, 85},
			wantEvent:    true,
			wantSeverity: models.SeverityMedium,
		},
		{
			name:         "25 percent drop is high severity",
			values:       []float64{100, 100, 100, 75},
			wantEvent:    true,
			wantSeverity: models.SeverityHigh,
		},
		{
			name:      "small dip stays quiet",
			values:    []float64{100, 100, 100, 95},
			wantEvent: false,
		},
		{
			name:      "improvement never flags",
			values:    []float64{100, 100, 100, 110},
			wantEvent: false,
		},
		{
			name:      "single point has no window",
			values:    []float64{100},
			wantEvent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := ad.DetectPerformanceDrop(dailySeries(models.MetricOneRM, tt.values...))
			if !tt.wantEvent {
				assert.Nil(t, event)
				return
			}
			require.NotNil(t, event)
			assert.Equal(t, models.AnomalyPerformanceDrop, event.Kind)
			assert.Equal(t, tt.wantSeverity, event.Severity)
			assert.InDelta(t, 100, event.Expected, 1e-9)
			assert.LessOrEqual(t, event.Confidence, 0.9)
		})
	}
}

func TestDetectPerformanceDropShrinksWindow(t *testing.T) {
	ad := newTestAnomalyDetector()

	// Two points: window shrinks to the single prior session
	event := ad.DetectPerformanceDrop(dailySeries(models.MetricOneRM, 100, 80))
	require.NotNil(t, event)
	assert.InDelta(t, 0.20, event.Deviation, 1e-9)
}

func TestDetectVolumeSpike(t *testing.T) {
	ad := newTestAnomalyDetector()

	steady := []float64{5000, 5100, 4900, 5050, 4950, 5000, 5100, 4900, 5000, 5050, 4950, 5000}

	t.Run("steady volume stays quiet", func(t *testing.T) {
		assert.Nil(t, ad.DetectVolumeSpike(dailySeries(models.MetricVolume, steady...)))
	})

	t.Run("large spike flags", func(t *testing.T) {
		spiked := append(append([]float64{}, steady...), 9000)
		event := ad.DetectVolumeSpike(dailySeries(models.MetricVolume, spiked...))
		require.NotNil(t, event)
		assert.Equal(t, models.AnomalyVolumeSpike, event.Kind)
		assert.Equal(t, models.SeverityHigh, event.Severity)
		assert.Greater(t, event.Deviation, 2.5)
	})

	t.Run("too few points stays quiet", func(t *testing.T) {
		assert.Nil(t, ad.DetectVolumeSpike(dailySeries(models.MetricVolume, 5000, 5000, 9000)))
	})
}

func TestDetectRPEStreaks(t *testing.T) {
	ad := newTestAnomalyDetector()

	t.Run("four high sessions then a back-off is one medium event", func(t *testing.T) {
		events := ad.DetectRPEStreaks(rpeRecords(9, 9, 9, 9, 6))
		require.Len(t, events, 1)
		assert.Equal(t, models.AnomalyRPE, events[0].Kind)
		assert.Equal(t, models.SeverityMedium, events[0].Severity)
		assert.InDelta(t, 9, events[0].Actual, 1e-9)
	})

	t.Run("five or more high sessions is high severity", func(t *testing.T) {
		events := ad.DetectRPEStreaks(rpeRecords(9, 8.5, 9, 9.5, 9))
		require.Len(t, events, 1)
		assert.Equal(t, models.SeverityHigh, events[0].Severity)
	})

	t.Run("two high sessions is not a streak", func(t *testing.T) {
		assert.Empty(t, ad.DetectRPEStreaks(rpeRecords(9, 9, 6, 9, 6)))
	})

	t.Run("separate streaks emit separate events", func(t *testing.T) {
		events := ad.DetectRPEStreaks(rpeRecords(9, 9, 9, 5, 9, 9, 9, 5))
		assert.Len(t, events, 2)
	})
}

func TestDetectFrequencyChanges(t *testing.T) {
	ad := newTestAnomalyDetector()

	weekOf := func(weeksAgo, sessions int) []models.ExerciseRecord {
		var records []models.ExerciseRecord
		monday := weekStart(testDay).AddDate(0, 0, -7*weeksAgo)
		for i := 0; i < sessions; i++ {
			records = append(records, models.ExerciseRecord{
				Date:     monday.AddDate(0, 0, i),
				Exercise: "squat",
				RPE:      7,
			})
		}
		return records
	}

	t.Run("steady frequency stays quiet", func(t *testing.T) {
		var records []models.ExerciseRecord
		for w := 4; w >= 1; w-- {
			records = append(records, weekOf(w, 4)...)
		}
		assert.Empty(t, ad.DetectFrequencyChanges(records))
	})

	t.Run("a dropped week flags", func(t *testing.T) {
		var records []models.ExerciseRecord
		for w := 4; w >= 2; w-- {
			records = append(records, weekOf(w, 4)...)
		}
		records = append(records, weekOf(1, 1)...)

		events := ad.DetectFrequencyChanges(records)
		require.Len(t, events, 1)
		assert.Equal(t, models.AnomalyFrequencyChange, events[0].Kind)
		assert.Equal(t, models.SeverityMedium, events[0].Severity)
		assert.InDelta(t, 4, events[0].Expected, 1e-9)
		assert.InDelta(t, 1, events[0].Actual, 1e-9)
	})

	t.Run("a doubled week is high severity", func(t *testing.T) {
		var records []models.ExerciseRecord
		for w := 4; w >= 2; w-- {
			records = append(records, weekOf(w, 4)...)
		}
		records = append(records, weekOf(1, 8)...)

		events := ad.DetectFrequencyChanges(records)
		require.Len(t, events, 1)
		assert.Equal(t, models.SeverityHigh, events[0].Severity)
		assert.InDelta(t, 1.0, events[0].Deviation, 1e-9)
	})
}

func TestDetectAllCombines(t *testing.T) {
	ad := newTestAnomalyDetector()

	records := rpeRecords(9, 9, 9, 9, 6)
	performance := dailySeries(models.MetricOneRM, 100, 100, 100, 75)
	volume := dailySeries(models.MetricVolume, 5000, 5000, 5000)

	events := ad.DetectAll(performance, volume, records)

	kinds := make(map[models.AnomalyKind]bool)
	for _, e := range events {
		kinds[e.Kind] = true
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.DetectedAt.IsZero())
	}
	assert.True(t, kinds[models.AnomalyPerformanceDrop])
	assert.True(t, kinds[models.AnomalyRPE])
}

func TestWeekStart(t *testing.T) {
	// 2025-06-01 is a Sunday; its week starts Monday 2025-05-26
	sunday := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC), weekStart(sunday))

	monday := time.Date(2025, 5, 26, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC), weekStart(monday))
}
