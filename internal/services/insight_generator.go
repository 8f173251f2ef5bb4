package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vitalsync/fitlytics-go/internal/models"
	"github.com/vitalsync/fitlytics-go/internal/stats"
)

const maxInsights = 5

var priorityWeights = map[models.InsightPriority]float64{
	models.PriorityCritical: 40,
	models.PriorityHigh:     30,
	models.PriorityMedium:   20,
	models.PriorityLow:      10,
}

var categoryWeights = map[models.InsightCategory]float64{
	models.CategoryWarning:     15,
	models.CategorySuggestion:  10,
	models.CategoryCelebration: 8,
	models.CategoryInformation: 5,
}

// InsightInput is the fan-in of the upstream analyzers
type InsightInput struct {
	Readiness *models.ReadinessAnalysis
	Trends    map[models.MetricType]models.TrendResult
	Anomalies []models.AnomalyEvent
	Models    []models.PredictionModel
	Sleep     models.MetricSeries
	Energy    models.MetricSeries
	Stress    models.MetricSeries
	Soreness  models.MetricSeries
}

// InsightGenerator synthesizes analyzer outputs into ranked coaching
// insights with evidence and suggested actions
type InsightGenerator struct {
	logger *logrus.Logger
	now    func() time.Time
}

// NewInsightGenerator creates an insight generator
func NewInsightGenerator(logger *logrus.Logger) *InsightGenerator {
	return &InsightGenerator{logger: logger, now: time.Now}
}

// Generate fans out to the insight families, ranks every candidate by
// priority weight + category weight + confidence×20 and returns the top
// five
func (ig *InsightGenerator) Generate(input InsightInput) []models.CoachingInsight {
	var candidates []models.CoachingInsight
	candidates = append(candidates, ig.readinessInsights(input)...)
	candidates = append(candidates, ig.patternInsights(input)...)
	candidates = append(candidates, ig.recoveryInsights(input)...)
	candidates = append(candidates, ig.progressInsights(input)...)
	candidates = append(candidates, ig.motivationalInsights(input)...)

	sort.SliceStable(candidates, func(i, j int) bool {
		return insightRank(candidates[i]) > insightRank(candidates[j])
	})

	if len(candidates) > maxInsights {
		candidates = candidates[:maxInsights]
	}

	if ig.logger != nil {
		ig.logger.WithField("count", len(candidates)).Debug("Generated coaching insights")
	}
	return candidates
}

func insightRank(insight models.CoachingInsight) float64 {
	return priorityWeights[insight.Priority] + categoryWeights[insight.Category] + insight.Confidence*20
}

func (ig *InsightGenerator) readinessInsights(input InsightInput) []models.CoachingInsight {
	r := input.Readiness
	if r == nil {
		return nil
	}

	var insights []models.CoachingInsight

	switch r.Level {
	case models.ReadinessPoor:
		insights = append(insights, ig.newInsight(
			models.CategoryWarning, models.PriorityHigh,
			"Readiness is low",
			fmt.Sprintf("Your readiness score is %.0f. Pushing hard today risks digging the hole deeper.", r.OverallScore),
			[]string{fmt.Sprintf("Overall readiness %.0f/100 (%s)", r.OverallScore, r.Level)},
			[]models.Action{{Label: "Swap today's session for active recovery"}},
			r.Confidence,
		))
	case models.ReadinessExcellent:
		insights = append(insights, ig.newInsight(
			models.CategoryCelebration, models.PriorityMedium,
			"You're firing on all cylinders",
			fmt.Sprintf("Readiness is %.0f, well into the excellent band. Big sessions land best on days like this.", r.OverallScore),
			[]string{fmt.Sprintf("Overall readiness %.0f/100", r.OverallScore)},
			[]models.Action{{Label: "Schedule your hardest session today"}},
			r.Confidence,
		))
	}

	if r.Deviation < -15 {
		insights = append(insights, ig.newInsight(
			models.CategoryWarning, models.PriorityMedium,
			"Well below your baseline",
			fmt.Sprintf("Today sits %.0f points under your personal baseline of %.0f.", -r.Deviation, r.Baseline),
			[]string{fmt.Sprintf("Baseline %.0f, today %.0f", r.Baseline, r.OverallScore)},
			nil,
			r.Confidence,
		))
	}

	return insights
}

// patternInsights surfaces cross-metric correlations worth acting on
func (ig *InsightGenerator) patternInsights(input InsightInput) []models.CoachingInsight {
	var insights []models.CoachingInsight

	if c := pairedCorrelation(input.Sleep, input.Energy); c.Strength != stats.CorrelationWeak && c.Correlation > 0 {
		insights = append(insights, ig.newInsight(
			models.CategoryInformation, models.PriorityLow,
			"Sleep is driving your energy",
			"Your energy ratings track your sleep closely. Protecting sleep is the cheapest performance gain available to you.",
			[]string{fmt.Sprintf("Sleep-energy correlation r=%.2f (%s)", c.Correlation, c.Strength)},
			[]models.Action{{Label: "Set a consistent bedtime this week"}},
			c.Significance,
		))
	}

	if c := pairedCorrelation(input.Stress, input.Soreness); c.Strength == stats.CorrelationStrong && c.Correlation > 0 {
		insights = append(insights, ig.newInsight(
			models.CategoryInformation, models.PriorityLow,
			"Stress and soreness move together",
			"High-stress days coincide with elevated soreness for you. Recovery work pays double on stressful weeks.",
			[]string{fmt.Sprintf("Stress-soreness correlation r=%.2f", c.Correlation)},
			nil,
			c.Significance,
		))
	}

	return insights
}

func (ig *InsightGenerator) recoveryInsights(input InsightInput) []models.CoachingInsight {
	var insights []models.CoachingInsight

	for _, event := range input.Anomalies {
		switch event.Kind {
		case models.AnomalyRPE:
			priority := models.PriorityMedium
			if event.Severity == models.SeverityHigh {
				priority = models.PriorityHigh
			}
			insights = append(insights, ig.newInsight(
				models.CategoryWarning, priority,
				"Sustained near-maximal effort",
				event.Message+". Plan a back-off session before fatigue decides for you.",
				[]string{event.Message},
				[]models.Action{{Label: "Insert a deload or technique day this week"}},
				event.Confidence,
			))
		case models.AnomalyVolumeSpike:
			insights = append(insights, ig.newInsight(
				models.CategoryWarning, models.PriorityMedium,
				"Sharp volume jump",
				"Last session's volume jumped well past your norm. Spikes like this precede most overuse complaints.",
				[]string{event.Message},
				[]models.Action{{Label: "Hold volume steady for the next week"}},
				event.Confidence,
			))
		case models.AnomalyPerformanceDrop:
			insights = append(insights, ig.newInsight(
				models.CategoryWarning, models.PriorityMedium,
				"Performance dipped",
				event.Message+". One bad day is noise; check sleep and fueling before changing the plan.",
				[]string{event.Message},
				nil,
				event.Confidence,
			))
		}
	}

	return insights
}

func (ig *InsightGenerator) progressInsights(input InsightInput) []models.CoachingInsight {
	var insights []models.CoachingInsight

	if trend, ok := input.Trends[models.MetricOneRM]; ok && trend.Trend == models.TrendIncreasing {
		insights = append(insights, ig.newInsight(
			models.CategoryCelebration, models.PriorityMedium,
			"Strength is trending up",
			fmt.Sprintf("Your estimated 1RM has been climbing at %.1f units per session. The current plan is working.", trend.Slope),
			[]string{fmt.Sprintf("1RM trend slope %.2f, confidence %.0f%%", trend.Slope, trend.Confidence*100)},
			nil,
			trend.Confidence,
		))
	}

	for _, model := range input.Models {
		if model.RSquared < 0.5 {
			continue
		}
		if forecast, ok := model.Predictions[models.HorizonThreeMonth]; ok {
			insights = append(insights, ig.newInsight(
				models.CategoryInformation, models.PriorityLow,
				"Three-month projection",
				fmt.Sprintf("On your current %s trajectory you project to %.1f in three months.", model.Kind, forecast.Value),
				[]string{fmt.Sprintf("%s fit R²=%.2f", model.Kind, model.RSquared)},
				nil,
				forecast.Confidence,
			))
			break
		}
	}

	return insights
}

func (ig *InsightGenerator) motivationalInsights(input InsightInput) []models.CoachingInsight {
	r := input.Readiness
	if r == nil {
		return nil
	}

	improving := 0
	for _, f := range r.Factors {
		if f.Trend == models.FactorImproving {
			improving++
		}
	}
	if improving < 2 {
		return nil
	}

	return []models.CoachingInsight{ig.newInsight(
		models.CategorySuggestion, models.PriorityLow,
		"Recovery habits are paying off",
		fmt.Sprintf("%d of your wellness factors improved this week. Consistency is compounding.", improving),
		[]string{fmt.Sprintf("%d/%d factors improving", improving, len(r.Factors))},
		nil,
		r.Confidence,
	)}
}

func (ig *InsightGenerator) newInsight(category models.InsightCategory, priority models.InsightPriority, title, message string, evidence []string, actions []models.Action, confidence float64) models.CoachingInsight {
	return models.CoachingInsight{
		ID:         uuid.New().String(),
		Category:   category,
		Priority:   priority,
		Title:      title,
		Message:    message,
		Evidence:   evidence,
		Actions:    actions,
		Confidence: stats.Clamp01(confidence),
		CreatedAt:  ig.now(),
	}
}

// pairedCorrelation aligns two series by date before correlating, since
// check-ins are not guaranteed to cover the same days
func pairedCorrelation(a, b models.MetricSeries) stats.Correlation {
	byDate := make(map[time.Time]float64, b.Len())
	for _, p := range b.Points {
		byDate[p.Date.Truncate(24*time.Hour)] = p.Value
	}

	var xs, ys []float64
	for _, p := range a.Points {
		if v, ok := byDate[p.Date.Truncate(24*time.Hour)]; ok {
			xs = append(xs, p.Value)
			ys = append(ys, v)
		}
	}
	return stats.Pearson(xs, ys)
}
