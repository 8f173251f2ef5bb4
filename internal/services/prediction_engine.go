package services

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
	"github.com/vitalsync/fitlytics-go/internal/stats"
)

// horizonDays maps each forecast horizon to its distance in days
var horizonDays = map[models.Horizon]int{
	models.HorizonOneWeek:    7,
	models.HorizonOneMonth:   30,
	models.HorizonThreeMonth: 90,
	models.HorizonSixMonth:   180,
	models.HorizonOneYear:    365,
}

// horizonDecay discounts in-sample fit quality as the forecast reaches
// further out: extrapolation a year ahead is weak evidence even when the
// fit is excellent
var horizonDecay = map[models.Horizon]float64{
	models.HorizonOneWeek:    0.95,
	models.HorizonOneMonth:   0.80,
	models.HorizonThreeMonth: 0.60,
	models.HorizonSixMonth:   0.35,
	models.HorizonOneYear:    0.15,
}

// PredictionEngine fits several curve families to a metric's history and
// emits dated forecasts with decaying confidence
type PredictionEngine struct {
	cfg    config.PredictionConfig
	logger *logrus.Logger
}

// NewPredictionEngine creates a prediction engine
func NewPredictionEngine(cfg config.PredictionConfig, logger *logrus.Logger) *PredictionEngine {
	return &PredictionEngine{cfg: cfg, logger: logger}
}

// Fit fits every curve family independently and returns the successful
// fits sorted by descending R². Families that cannot fit the data
// (singular solve, non-positive values for the exponential) are skipped
// rather than failing the request.
func (pe *PredictionEngine) Fit(series models.MetricSeries) []models.PredictionModel {
	if series.Len() < pe.cfg.MinPointsLinear {
		return nil
	}

	first := series.Points[0].Date
	last := series.Points[series.Len()-1].Date
	xs := make([]float64, series.Len())
	ys := make([]float64, series.Len())
	for i, p := range series.Points {
		xs[i] = p.Date.Sub(first).Hours() / 24
		ys[i] = p.Value
	}

	var fitted []models.PredictionModel
	if m := pe.fitLinear(series.Metric, xs, ys, last); m != nil {
		fitted = append(fitted, *m)
	}
	if m := pe.fitPolynomial(series.Metric, xs, ys, last); m != nil {
		fitted = append(fitted, *m)
	}
	if m := pe.fitExponential(series.Metric, xs, ys, last); m != nil {
		fitted = append(fitted, *m)
	}
	if m := pe.fitLogistic(series.Metric, xs, ys, last); m != nil {
		fitted = append(fitted, *m)
	}

	sort.SliceStable(fitted, func(i, j int) bool {
		return fitted[i].RSquared > fitted[j].RSquared
	})

	if pe.logger != nil {
		pe.logger.WithFields(logrus.Fields{
			"metric": series.Metric,
			"models": len(fitted),
			"points": series.Len(),
		}).Debug("Fitted prediction models")
	}
	return fitted
}

func (pe *PredictionEngine) fitLinear(metric models.MetricType, xs, ys []float64, last time.Time) *models.PredictionModel {
	fit := stats.LinearRegression(xs, ys)
	predict := func(x float64) float64 { return fit.Intercept + fit.Slope*x }

	return pe.assemble(metric, models.ModelLinear,
		[]float64{fit.Intercept, fit.Slope}, fit.RSquared, predict, xs, last)
}

// fitPolynomial solves the degree-2 normal equations in closed form
func (pe *PredictionEngine) fitPolynomial(metric models.MetricType, xs, ys []float64, last time.Time) *models.PredictionModel {
	n := len(xs)
	if n < pe.cfg.MinPointsPolynomial {
		return nil
	}

	var sx, sx2, sx3, sx4, sy, sxy, sx2y float64
	for i := 0; i < n; i++ {
		x := xs[i]
		x2 := x * x
		sx += x
		sx2 += x2
		sx3 += x2 * x
		sx4 += x2 * x2
		sy += ys[i]
		sxy += x * ys[i]
		sx2y += x2 * ys[i]
	}

	// Normal equations for y = a + b·x + c·x², solved by Cramer's rule
	nf := float64(n)
	det := det3(nf, sx, sx2, sx, sx2, sx3, sx2, sx3, sx4)
	if math.Abs(det) < pe.cfg.SingularityEpsilon {
		return nil
	}

	a := det3(sy, sx, sx2, sxy, sx2, sx3, sx2y, sx3, sx4) / det
	b := det3(nf, sy, sx2, sx, sxy, sx3, sx2, sx2y, sx4) / det
	c := det3(nf, sx, sy, sx, sx2, sxy, sx2, sx3, sx2y) / det

	predict := func(x float64) float64 { return a + b*x + c*x*x }
	rSquared := rSquaredOf(xs, ys, predict)

	return pe.assemble(metric, models.ModelPolynomial, []float64{a, b, c}, rSquared, predict, xs, last)
}

// fitExponential fits y = a·e^(b·x) by log-linearization, which requires
// every observed value to be positive
func (pe *PredictionEngine) fitExponential(metric models.MetricType, xs, ys []float64, last time.Time) *models.PredictionModel {
	logs := make([]float64, len(ys))
	for i, y := range ys {
		if y <= 0 {
			return nil
		}
		logs[i] = math.Log(y)
	}

	fit := stats.LinearRegression(xs, logs)
	a := math.Exp(fit.Intercept)
	b := fit.Slope

	predict := func(x float64) float64 { return a * math.Exp(b*x) }
	rSquared := rSquaredOf(xs, ys, predict)

	return pe.assemble(metric, models.ModelExponential, []float64{a, b}, rSquared, predict, xs, last)
}

// fitLogistic estimates logistic parameters heuristically: the asymptote
// is pegged at 110% of the observed maximum with a fixed growth rate and
// a midpoint at the center of the observed range. This is a parameter
// guess, not a nonlinear least-squares solve; the output shape is the
// same, so a real solver can replace it without breaking callers.
func (pe *PredictionEngine) fitLogistic(metric models.MetricType, xs, ys []float64, last time.Time) *models.PredictionModel {
	if len(xs) < pe.cfg.MinPointsPolynomial {
		return nil
	}

	maxY := ys[0]
	for _, y := range ys {
		if y > maxY {
			maxY = y
		}
	}
	if maxY <= 0 {
		return nil
	}

	limit := 1.1 * maxY
	growth := 0.05
	midpoint := xs[len(xs)-1] / 2

	predict := func(x float64) float64 {
		return limit / (1 + math.Exp(-growth*(x-midpoint)))
	}
	rSquared := rSquaredOf(xs, ys, predict)

	return pe.assemble(metric, models.ModelLogistic, []float64{limit, growth, midpoint}, rSquared, predict, xs, last)
}

func (pe *PredictionEngine) assemble(metric models.MetricType, kind models.ModelKind, coeffs []float64, rSquared float64, predict func(float64) float64, xs []float64, last time.Time) *models.PredictionModel {
	rSquared = stats.Clamp01(rSquared)
	lastX := xs[len(xs)-1]

	predictions := make(map[models.Horizon]models.Forecast, len(models.Horizons))
	for _, h := range models.Horizons {
		days := horizonDays[h]
		predictions[h] = models.Forecast{
			Date:       last.AddDate(0, 0, days),
			Value:      predict(lastX + float64(days)),
			Confidence: stats.Clamp01(rSquared * horizonDecay[h]),
		}
	}

	return &models.PredictionModel{
		Metric:       metric,
		Kind:         kind,
		Coefficients: coeffs,
		RSquared:     rSquared,
		Predictions:  predictions,
	}
}

// rSquaredOf computes 1 − residualSS/totalSS on the original scale so
// fits from different families rank comparably, clamped at 0
func rSquaredOf(xs, ys []float64, predict func(float64) float64) float64 {
	meanY := stats.Mean(ys)
	var residualSS, totalSS float64
	for i := range xs {
		r := ys[i] - predict(xs[i])
		residualSS += r * r
		totalSS += (ys[i] - meanY) * (ys[i] - meanY)
	}
	if totalSS == 0 {
		return 0
	}
	rSquared := 1 - residualSS/totalSS
	if rSquared < 0 {
		return 0
	}
	return rSquared
}

// det3 computes a 3×3 determinant given row-major entries
func det3(a, b, c, d, e, f, g, h, i float64) float64 {
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}
