package services

import (
	"math"
	"sort"
	"strings"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
	"github.com/vitalsync/fitlytics-go/internal/stats"
)

// BenchmarkEngine maps personal values onto population percentile curves
// and derives competitive rankings. Tables are static reference data.
type BenchmarkEngine struct {
	cfg    config.BenchmarkConfig
	logger *logrus.Logger
}

// NewBenchmarkEngine creates a benchmark engine
func NewBenchmarkEngine(cfg config.BenchmarkConfig, logger *logrus.Logger) *BenchmarkEngine {
	return &BenchmarkEngine{cfg: cfg, logger: logger}
}

// PercentileRank places a value on the table's percentile curve
func (be *BenchmarkEngine) PercentileRank(value float64, table models.BenchmarkTable) float64 {
	percentiles, breakValues := table.Breakpoints()
	return stats.PercentileInterpolate(value, percentiles, breakValues)
}

// BenchmarkValue is one personal value paired with its reference table
// and the history used to estimate progress rate
type BenchmarkValue struct {
	Value   float64
	Table   models.BenchmarkTable
	History []models.ExerciseRecord
}

// Analyze ranks every exercise against its cohort and proposes the most
// impactful improvement targets
func (be *BenchmarkEngine) Analyze(values []BenchmarkValue) models.CompetitiveAnalysis {
	analysis := models.CompetitiveAnalysis{}
	var weightSum, weighted float64

	for _, bv := range values {
		percentile := be.PercentileRank(bv.Value, bv.Table)
		major := be.isMajorLift(bv.Table.Exercise)

		weight := 1.0
		if major {
			weight = be.cfg.MajorLiftWeight
		}
		weightSum += weight
		weighted += weight * percentile

		analysis.Ranks = append(analysis.Ranks, models.ExerciseRank{
			Exercise:   bv.Table.Exercise,
			Value:      bv.Value,
			Percentile: percentile,
			MajorLift:  major,
		})

		if opp := be.opportunity(bv, percentile); opp != nil {
			analysis.Opportunities = append(analysis.Opportunities, *opp)
		}
	}

	if weightSum > 0 {
		analysis.OverallPercentile = weighted / weightSum
	}

	// Weakest lifts first: that is where percentile gains come cheapest
	sort.SliceStable(analysis.Opportunities, func(i, j int) bool {
		return analysis.Opportunities[i].CurrentPercentile < analysis.Opportunities[j].CurrentPercentile
	})

	if be.logger != nil {
		be.logger.WithFields(logrus.Fields{
			"exercises":          len(analysis.Ranks),
			"overall_percentile": analysis.OverallPercentile,
		}).Debug("Computed competitive analysis")
	}
	return analysis
}

// opportunity proposes the next realistic percentile band and, when the
// athlete's observed progress rate allows, an estimated timeframe
func (be *BenchmarkEngine) opportunity(bv BenchmarkValue, percentile float64) *models.ImprovementOpportunity {
	target := targetPercentile(percentile)
	targetValue := be.valueAtPercentile(target, bv.Table)
	delta := targetValue - bv.Value
	if delta <= 0 {
		return nil
	}

	opp := &models.ImprovementOpportunity{
		Exercise:          bv.Table.Exercise,
		CurrentPercentile: percentile,
		TargetPercentile:  target,
		CurrentValue:      bv.Value,
		TargetValue:       targetValue,
		RequiredDelta:     delta,
	}

	if rate := be.progressRatePerWeek(bv.History); rate > 0 {
		weeks := int(math.Ceil(delta / rate))
		opp.EstimatedWeeks = weeks
	}
	return opp
}

// progressRatePerWeek estimates weekly 1RM gain from the athlete's
// history, smoothed with a short moving average so a single outlier
// session does not set the pace
func (be *BenchmarkEngine) progressRatePerWeek(history []models.ExerciseRecord) float64 {
	series := models.OneRMSeries(history)
	if series.Len() < 3 {
		return 0
	}

	window := 3
	if series.Len() < window {
		window = series.Len()
	}
	sma := trend.NewSmaWithPeriod[float64](window)
	smoothed := helper.ChanToSlice(sma.Compute(helper.SliceToChan(series.Values())))
	if len(smoothed) < 2 {
		return 0
	}

	// Index-based regression over smoothed points; convert the per-session
	// slope into a per-week gain from the observed session cadence
	xs := make([]float64, len(smoothed))
	for i := range xs {
		xs[i] = float64(i)
	}
	fit := stats.LinearRegression(xs, smoothed)
	if fit.Slope <= 0 {
		return 0
	}

	totalDays := series.Points[series.Len()-1].Date.Sub(series.Points[0].Date).Hours() / 24
	if totalDays <= 0 {
		return 0
	}
	sessionsPerWeek := float64(series.Len()-1) / (totalDays / 7)
	return fit.Slope * sessionsPerWeek
}

// valueAtPercentile inverts the table's percentile curve
func (be *BenchmarkEngine) valueAtPercentile(target float64, table models.BenchmarkTable) float64 {
	percentiles, breakValues := table.Breakpoints()

	if target <= percentiles[0] {
		return breakValues[0]
	}
	for i := 1; i < len(percentiles); i++ {
		if target <= percentiles[i] {
			span := percentiles[i] - percentiles[i-1]
			if span == 0 {
				return breakValues[i]
			}
			frac := (target - percentiles[i-1]) / span
			return breakValues[i-1] + frac*(breakValues[i]-breakValues[i-1])
		}
	}
	return breakValues[len(breakValues)-1]
}

func (be *BenchmarkEngine) isMajorLift(exercise string) bool {
	name := strings.ToLower(exercise)
	for _, lift := range be.cfg.MajorLifts {
		if name == strings.ToLower(lift) {
			return true
		}
	}
	return false
}

func targetPercentile(current float64) float64 {
	switch {
	case current <= 25:
		return 50
	case current <= 50:
		return 75
	case current <= 75:
		return 90
	default:
		return 95
	}
}
