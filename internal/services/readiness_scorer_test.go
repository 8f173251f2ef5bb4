package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
)

func newTestReadinessScorer() *ReadinessScorer {
	cfg := config.Default()
	return NewReadinessScorer(cfg.Readiness, NewTrendAnalyzer(cfg.Trend, testLogger()), testLogger())
}

func TestReadinessScorerPoorDay(t *testing.T) {
	rs := newTestReadinessScorer()

	// Bad night, low energy, beat up and stressed
	analysis := rs.Score(ReadinessInput{
		Sleep:    dailySeries(models.MetricSleep, 7, 6.5, 6, 5, 4.5, 4),
		Energy:   dailySeries(models.MetricEnergy, 6, 5, 5, 4, 4, 3),
		Soreness: dailySeries(models.MetricSoreness, 4, 5, 6, 7, 7, 8),
		Stress:   dailySeries(models.MetricStress, 4, 5, 5, 6, 7, 7),
		Now:      testDay,
	})

	assert.Less(t, analysis.OverallScore, 50.0)
	assert.Equal(t, models.ReadinessPoor, analysis.Level)

	require.NotEmpty(t, analysis.Recommendations)
	assert.Contains(t, strings.ToLower(analysis.Recommendations[0]), "rest")
	assert.LessOrEqual(t, len(analysis.Recommendations), 4)
}

func TestReadinessScorerExcellentDay(t *testing.T) {
	rs := newTestReadinessScorer()

	analysis := rs.Score(ReadinessInput{
		Sleep:    dailySeries(models.MetricSleep, 8.5, 9, 8.5, 9, 9, 9),
		Energy:   dailySeries(models.MetricEnergy, 8, 8, 9, 9, 9, 9),
		Soreness: dailySeries(models.MetricSoreness, 2, 2, 1, 1, 1, 1),
		Stress:   dailySeries(models.MetricStress, 2, 2, 2, 1, 1, 1),
		Now:      testDay,
	})

	assert.GreaterOrEqual(t, analysis.OverallScore, 85.0)
	assert.Equal(t, models.ReadinessExcellent, analysis.Level)
}

func TestReadinessScorerInvertedScoring(t *testing.T) {
	rs := newTestReadinessScorer()

	analysis := rs.Score(ReadinessInput{
		Soreness: dailySeries(models.MetricSoreness, 3, 3, 8),
		Stress:   dailySeries(models.MetricStress, 2, 2, 2),
		Now:      testDay,
	})

	byName := make(map[models.FactorName]models.ReadinessFactor)
	for _, f := range analysis.Factors {
		byName[f.Name] = f
	}

	// Soreness 8 scores (10-8)*10 = 20; stress 2 scores 80
	assert.InDelta(t, 20, byName[models.FactorSoreness].Score, 1e-9)
	assert.InDelta(t, 80, byName[models.FactorStress].Score, 1e-9)
}

func TestReadinessScorerWeightRenormalization(t *testing.T) {
	rs := newTestReadinessScorer()

	// Only sleep and energy present, both perfect: overall must still be
	// 100, not 100 scaled down by the missing factors' weights
	analysis := rs.Score(ReadinessInput{
		Sleep:  dailySeries(models.MetricSleep, 10, 10, 10),
		Energy: dailySeries(models.MetricEnergy, 10, 10, 10),
		Now:    testDay,
	})

	assert.InDelta(t, 100, analysis.OverallScore, 1e-9)

	var weightSum float64
	for _, f := range analysis.Factors {
		weightSum += f.Weight
	}
	assert.InDelta(t, 1.0, weightSum, 1e-9)
}

func TestReadinessScorerScoreBounds(t *testing.T) {
	rs := newTestReadinessScorer()

	// Out-of-range raw values must not escape the 0-100 score range
	analysis := rs.Score(ReadinessInput{
		Sleep:  dailySeries(models.MetricSleep, 12, 13, 14),
		Stress: dailySeries(models.MetricStress, 12, 12, 12),
		Now:    testDay,
	})

	assert.GreaterOrEqual(t, analysis.OverallScore, 0.0)
	assert.LessOrEqual(t, analysis.OverallScore, 100.0)
	for _, f := range analysis.Factors {
		assert.GreaterOrEqual(t, f.Score, 0.0)
		assert.LessOrEqual(t, f.Score, 100.0)
	}
}

func TestReadinessScorerNoData(t *testing.T) {
	rs := newTestReadinessScorer()

	analysis := rs.Score(ReadinessInput{Now: testDay})

	assert.Equal(t, 60.0, analysis.OverallScore, "cold-start default")
	assert.Equal(t, models.ReadinessFair, analysis.Level)
	assert.Equal(t, 0.0, analysis.Confidence)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestReadinessScorerBaseline(t *testing.T) {
	rs := newTestReadinessScorer()

	// 30 days of steady history: the first 16 days fall outside the
	// 14-day exclusion window and qualify for the baseline
	longSleep := make([]float64, 30)
	for i := range longSleep {
		longSleep[i] = 8
	}

	analysis := rs.Score(ReadinessInput{
		Sleep: dailySeries(models.MetricSleep, longSleep...),
		Now:   testDay,
	})

	assert.InDelta(t, 80, analysis.Baseline, 1e-9)
	assert.InDelta(t, 0, analysis.Deviation, 1e-9)
}

func TestReadinessScorerBaselineDefaultsWhenSparse(t *testing.T) {
	rs := newTestReadinessScorer()

	// Only recent data: nothing older than the exclusion window, so the
	// baseline falls back to the default
	analysis := rs.Score(ReadinessInput{
		Sleep: dailySeries(models.MetricSleep, 8, 8, 8, 8, 8),
		Now:   testDay,
	})

	assert.Equal(t, 60.0, analysis.Baseline)
	assert.InDelta(t, 20, analysis.Deviation, 1e-9)
}

func TestReadinessScorerConfidenceComponents(t *testing.T) {
	rs := newTestReadinessScorer()

	full := rs.Score(ReadinessInput{
		Sleep:    dailySeries(models.MetricSleep, 8, 8, 8, 8, 8, 8, 8),
		Energy:   dailySeries(models.MetricEnergy, 7, 7, 7, 7, 7, 7, 7),
		Soreness: dailySeries(models.MetricSoreness, 3, 3, 3, 3, 3, 3, 3),
		Stress:   dailySeries(models.MetricStress, 3, 3, 3, 3, 3, 3, 3),
		HRV:      dailySeries(models.MetricHRV, 60, 62, 61, 60, 63, 62, 61),
		Now:      testDay,
	})
	sparse := rs.Score(ReadinessInput{
		Sleep: dailySeries(models.MetricSleep, 8, 8, 8),
		Now:   testDay,
	})

	assert.Greater(t, full.Confidence, sparse.Confidence,
		"more factors and deeper history raise confidence")
	assert.LessOrEqual(t, full.Confidence, 1.0)
}

func TestReadinessScorerStaleData(t *testing.T) {
	rs := newTestReadinessScorer()

	// Latest reading is ten days old: the recency component zeroes out
	old := models.MetricSeries{Metric: models.MetricSleep, Points: []models.MetricPoint{
		{Date: testDay.AddDate(0, 0, -12), Value: 8},
		{Date: testDay.AddDate(0, 0, -11), Value: 8},
		{Date: testDay.AddDate(0, 0, -10), Value: 8},
	}}
	fresh := dailySeries(models.MetricSleep, 8, 8, 8)

	staleAnalysis := rs.Score(ReadinessInput{Sleep: old, Now: testDay})
	freshAnalysis := rs.Score(ReadinessInput{Sleep: fresh, Now: testDay})

	assert.Less(t, staleAnalysis.Confidence, freshAnalysis.Confidence)
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  models.ReadinessLevel
	}{
		{95, models.ReadinessExcellent},
		{85, models.ReadinessExcellent},
		{84.9, models.ReadinessGood},
		{70, models.ReadinessGood},
		{69, models.ReadinessFair},
		{50, models.ReadinessFair},
		{49.9, models.ReadinessPoor},
		{0, models.ReadinessPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levelForScore(tt.score), "score %.1f", tt.score)
	}
}
