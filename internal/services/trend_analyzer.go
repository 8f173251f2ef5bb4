package services

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
	"github.com/vitalsync/fitlytics-go/internal/stats"
)

// TrendAnalyzer classifies a metric series as increasing, decreasing,
// stable or volatile
type TrendAnalyzer struct {
	cfg    config.TrendConfig
	logger *logrus.Logger
}

// NewTrendAnalyzer creates a trend analyzer with the given thresholds
func NewTrendAnalyzer(cfg config.TrendConfig, logger *logrus.Logger) *TrendAnalyzer {
	return &TrendAnalyzer{cfg: cfg, logger: logger}
}

// Analyze fits a line through the series and classifies its shape.
// Volatility (stddev over |mean|) takes precedence over slope: a noisy
// series is volatile regardless of its drift. Series shorter than the
// configured minimum report the stable/neutral zero-confidence default.
func (ta *TrendAnalyzer) Analyze(series models.MetricSeries) models.TrendResult {
	values := series.Values()
	if len(values) < ta.cfg.MinPoints {
		return models.TrendResult{
			Trend:     models.TrendStable,
			Direction: models.DirectionNeutral,
		}
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	fit := stats.LinearRegression(xs, values)

	mean := stats.Mean(values)
	volatility := 0.0
	if mean != 0 {
		volatility = stats.StdDev(values) / math.Abs(mean)
	}

	result := models.TrendResult{
		Slope:      fit.Slope,
		Volatility: volatility,
		Confidence: stats.Clamp01(fit.RSquared),
	}

	switch {
	case volatility > ta.cfg.VolatilityThreshold:
		result.Trend = models.TrendVolatile
		result.Direction = models.DirectionNeutral
	case math.Abs(fit.Slope) < ta.cfg.SlopeThreshold:
		result.Trend = models.TrendStable
		result.Direction = models.DirectionNeutral
	case fit.Slope > 0:
		result.Trend = models.TrendIncreasing
		result.Direction = models.DirectionPositive
	default:
		result.Trend = models.TrendDecreasing
		result.Direction = models.DirectionNegative
	}

	if ta.logger != nil {
		ta.logger.WithFields(logrus.Fields{
			"metric":     series.Metric,
			"trend":      result.Trend,
			"slope":      result.Slope,
			"volatility": result.Volatility,
			"confidence": result.Confidence,
		}).Debug("Classified metric trend")
	}

	return result
}

// FactorTrend derives the improving/stable/declining label for a
// readiness factor. For inverted factors (soreness, stress) a falling raw
// value means the athlete is recovering, so the label flips.
func (ta *TrendAnalyzer) FactorTrend(series models.MetricSeries, inverted bool) models.FactorTrend {
	result := ta.Analyze(series)

	switch result.Trend {
	case models.TrendIncreasing:
		if inverted {
			return models.FactorDeclining
		}
		return models.FactorImproving
	case models.TrendDecreasing:
		if inverted {
			return models.FactorImproving
		}
		return models.FactorDeclining
	default:
		return models.FactorStable
	}
}
