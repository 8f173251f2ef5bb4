package services

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
	"github.com/vitalsync/fitlytics-go/internal/stats"
)

// HRV readings are normalized against this range (ms) since, unlike the
// 1-10 subjective scales, heart rate variability has no fixed bounds.
const (
	hrvFloorMs   = 20.0
	hrvCeilingMs = 100.0
)

// ReadinessInput carries the per-factor wellness history for one athlete.
// HRV is optional; its weight is redistributed across the factors that are
// present.
type ReadinessInput struct {
	Sleep    models.MetricSeries
	Energy   models.MetricSeries
	Soreness models.MetricSeries
	Stress   models.MetricSeries
	HRV      models.MetricSeries
	Now      time.Time
}

// ReadinessScorer converts daily wellness metrics into weighted factor
// scores and one overall readiness score with a personal baseline
type ReadinessScorer struct {
	cfg    config.ReadinessConfig
	trends *TrendAnalyzer
	logger *logrus.Logger
}

// NewReadinessScorer creates a readiness scorer
func NewReadinessScorer(cfg config.ReadinessConfig, trends *TrendAnalyzer, logger *logrus.Logger) *ReadinessScorer {
	return &ReadinessScorer{cfg: cfg, trends: trends, logger: logger}
}

type factorSpec struct {
	name     models.FactorName
	weight   float64
	inverted bool
}

func (rs *ReadinessScorer) factorSpecs() []factorSpec {
	return []factorSpec{
		{models.FactorSleep, rs.cfg.SleepWeight, false},
		{models.FactorEnergy, rs.cfg.EnergyWeight, false},
		{models.FactorSoreness, rs.cfg.SorenessWeight, true},
		{models.FactorStress, rs.cfg.StressWeight, true},
		{models.FactorHRV, rs.cfg.HRVWeight, false},
	}
}

// Score produces the full readiness assessment for the most recent day of
// data. It never fails: sparse inputs degrade to defaults per the
// cold-start policy.
func (rs *ReadinessScorer) Score(input ReadinessInput) models.ReadinessAnalysis {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	series := map[models.FactorName]models.MetricSeries{
		models.FactorSleep:    input.Sleep,
		models.FactorEnergy:   input.Energy,
		models.FactorSoreness: input.Soreness,
		models.FactorStress:   input.Stress,
		models.FactorHRV:      input.HRV,
	}

	var factors []models.ReadinessFactor
	var weightSum, weightedScore float64
	var trendConfidences []float64
	var latestDate time.Time
	maxHistory := 0

	for _, spec := range rs.factorSpecs() {
		s := series[spec.name]
		if s.Len() == 0 {
			continue
		}

		latest := s.Points[s.Len()-1]
		if latest.Date.After(latestDate) {
			latestDate = latest.Date
		}
		if s.Len() > maxHistory {
			maxHistory = s.Len()
		}

		score := rs.normalize(spec.name, latest.Value, spec.inverted)

		window := models.MetricSeries{Metric: s.Metric, Points: s.LastN(rs.cfg.TrendWindow)}
		trend := rs.trends.FactorTrend(window, spec.inverted)
		trendConfidences = append(trendConfidences, rs.trends.Analyze(window).Confidence)

		factors = append(factors, models.ReadinessFactor{
			Name:   spec.name,
			Value:  latest.Value,
			Weight: spec.weight,
			Score:  score,
			Trend:  trend,
		})
		weightSum += spec.weight
		weightedScore += spec.weight * score
	}

	analysis := models.ReadinessAnalysis{Date: now}

	if weightSum == 0 {
		// No wellness data at all: conservative default profile
		analysis.OverallScore = rs.cfg.BaselineDefault
		analysis.Level = levelForScore(rs.cfg.BaselineDefault)
		analysis.Baseline = rs.cfg.BaselineDefault
		analysis.Recommendations = []string{"Log your daily wellness check-in to unlock readiness tracking"}
		return analysis
	}

	// Renormalize so the weights of present factors sum to 1
	overall := weightedScore / weightSum
	for i := range factors {
		factors[i].Weight = factors[i].Weight / weightSum
	}

	baseline := rs.personalBaseline(series, now)
	deviation := overall - baseline

	analysis.OverallScore = clampScore(overall)
	analysis.Level = levelForScore(analysis.OverallScore)
	analysis.Factors = factors
	analysis.Baseline = baseline
	analysis.Deviation = deviation
	analysis.Confidence = rs.confidence(now, latestDate, len(factors), trendConfidences, maxHistory)
	analysis.Recommendations = rs.recommendations(analysis)

	if rs.logger != nil {
		rs.logger.WithFields(logrus.Fields{
			"overall_score": analysis.OverallScore,
			"level":         analysis.Level,
			"baseline":      analysis.Baseline,
			"deviation":     analysis.Deviation,
			"factors":       len(factors),
		}).Debug("Scored readiness")
	}

	return analysis
}

// normalize maps a raw factor reading onto the 0-100 scale. Soreness and
// stress are inverted: a high raw rating is a bad day.
func (rs *ReadinessScorer) normalize(name models.FactorName, raw float64, inverted bool) float64 {
	if name == models.FactorHRV {
		return clampScore((raw - hrvFloorMs) / (hrvCeilingMs - hrvFloorMs) * 100)
	}
	if inverted {
		return clampScore((10 - raw) * 10)
	}
	return clampScore(raw * 10)
}

// personalBaseline computes the athlete's long-run typical readiness from
// data strictly older than the exclusion window, so the current rough (or
// great) week does not drag its own reference point around.
func (rs *ReadinessScorer) personalBaseline(series map[models.FactorName]models.MetricSeries, now time.Time) float64 {
	cutoff := now.AddDate(0, 0, -rs.cfg.BaselineExclusionDays)

	var weightSum, weighted float64
	qualifying := 0

	for _, spec := range rs.factorSpecs() {
		s := series[spec.name]
		older := s.OlderThan(cutoff)
		if len(older) == 0 {
			continue
		}
		if len(older) > rs.cfg.BaselineWindow {
			older = older[len(older)-rs.cfg.BaselineWindow:]
		}
		if len(older) > qualifying {
			qualifying = len(older)
		}

		scores := make([]float64, len(older))
		for i, p := range older {
			scores[i] = rs.normalize(spec.name, p.Value, spec.inverted)
		}
		weighted += spec.weight * stats.Baseline(scores, stats.BaselineMedian)
		weightSum += spec.weight
	}

	if qualifying < rs.cfg.BaselineMinPoints || weightSum == 0 {
		return rs.cfg.BaselineDefault
	}
	return clampScore(weighted / weightSum)
}

// confidence blends recency, factor completeness, short-term trend fit and
// history depth, each clamped before weighting
func (rs *ReadinessScorer) confidence(now, latestDate time.Time, present int, trendConfidences []float64, history int) float64 {
	recency := 0.0
	if !latestDate.IsZero() {
		ageDays := now.Sub(latestDate).Hours() / 24
		recency = stats.Clamp01(1 - ageDays/3)
	}

	completeness := stats.Clamp01(float64(present) / 5)
	trendConf := stats.Clamp01(stats.Mean(trendConfidences))
	depth := stats.Clamp01(float64(history) / float64(rs.cfg.BaselineWindow))

	return stats.Clamp01(0.3*recency + 0.3*completeness + 0.2*trendConf + 0.2*depth)
}

// recommendations is a deterministic rule list; insertion order is the
// priority order and output is capped by config
func (rs *ReadinessScorer) recommendations(analysis models.ReadinessAnalysis) []string {
	var recs []string

	switch {
	case analysis.OverallScore < 50:
		recs = append(recs, "Readiness is low today. Prioritize rest or keep any session light and short.")
	case analysis.OverallScore < 70:
		recs = append(recs, "Moderate readiness. Train as planned but stop short of grinding reps.")
	case analysis.OverallScore >= 85:
		recs = append(recs, "You're primed. A good day to push intensity or attempt a PR.")
	}

	for _, f := range analysis.Factors {
		if f.Score >= 60 {
			continue
		}
		switch f.Name {
		case models.FactorSleep:
			recs = append(recs, "Sleep is dragging your recovery down. Aim for an earlier night and a consistent bedtime.")
		case models.FactorEnergy:
			recs = append(recs, "Energy is low. Check fueling and consider moving hard training to later in the week.")
		case models.FactorSoreness:
			recs = append(recs, "Elevated soreness. Add mobility work and reduce volume on the affected muscle groups.")
		case models.FactorStress:
			recs = append(recs, "Stress is high. Short easy sessions and breathing work beat heavy lifting today.")
		case models.FactorHRV:
			recs = append(recs, "HRV is suppressed versus your normal range. Treat today as a recovery day.")
		}
	}

	for _, f := range analysis.Factors {
		if f.Trend == models.FactorDeclining {
			recs = append(recs, fmt.Sprintf("Your %s trend has been declining this week. Keep an eye on it before loading up.", f.Name))
			break
		}
	}

	if math.Abs(analysis.Deviation) > rs.cfg.DeviationAlert {
		if analysis.Deviation < 0 {
			recs = append(recs, "Today is well below your personal baseline. Back off and reassess tomorrow.")
		} else {
			recs = append(recs, "Today is well above your usual baseline. Make the most of it.")
		}
	}

	if len(recs) > rs.cfg.MaxRecommendations {
		recs = recs[:rs.cfg.MaxRecommendations]
	}
	return recs
}

func levelForScore(score float64) models.ReadinessLevel {
	switch {
	case score >= 85:
		return models.ReadinessExcellent
	case score >= 70:
		return models.ReadinessGood
	case score >= 50:
		return models.ReadinessFair
	default:
		return models.ReadinessPoor
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
