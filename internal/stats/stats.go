// Package stats provides the primitive numeric routines the analyzers are
// built on: least-squares regression, Pearson correlation, percentile
// interpolation, Tukey outlier fences and robust baselines. Everything
// here is a pure function over float64 slices.
package stats

import (
	"math"
	"sort"
)

// Regression is an ordinary-least-squares line fit
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64 // clamped to [0,1]
}

// CorrelationStrength buckets the magnitude of a Pearson coefficient
type CorrelationStrength string

const (
	CorrelationWeak     CorrelationStrength = "weak"
	CorrelationModerate CorrelationStrength = "moderate"
	CorrelationStrong   CorrelationStrength = "strong"
)

// Correlation pairs a Pearson coefficient with its qualitative strength
type Correlation struct {
	Correlation  float64 // [-1,1]
	Significance float64 // [0,1]
	Strength     CorrelationStrength
}

// BaselineMethod selects how a typical value is derived from a series
type BaselineMethod string

const (
	BaselineMean   BaselineMethod = "mean"
	BaselineMedian BaselineMethod = "median"
	BaselineMode   BaselineMethod = "mode"
)

// LinearRegression fits y = slope·x + intercept by ordinary least squares.
// A series with zero x-variance yields slope 0, and R² is clamped so a fit
// worse than the mean reports 0 rather than a negative value.
func LinearRegression(xs, ys []float64) Regression {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return Regression{}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return Regression{Intercept: sumY / nf}
	}

	slope := (nf*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / nf

	meanY := sumY / nf
	var residualSS, totalSS float64
	for i := 0; i < n; i++ {
		predicted := slope*xs[i] + intercept
		residualSS += (ys[i] - predicted) * (ys[i] - predicted)
		totalSS += (ys[i] - meanY) * (ys[i] - meanY)
	}

	rSquared := 0.0
	if totalSS > 0 {
		rSquared = 1 - residualSS/totalSS
		if rSquared < 0 {
			rSquared = 0
		}
	}

	return Regression{Slope: slope, Intercept: intercept, RSquared: rSquared}
}

// Pearson computes the correlation between two paired series. Fewer than
// three pairs carries no signal and reports r = 0.
func Pearson(xs, ys []float64) Correlation {
	n := len(xs)
	if n < 3 || n != len(ys) {
		return Correlation{Strength: CorrelationWeak}
	}

	meanX := Mean(xs)
	meanY := Mean(ys)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return Correlation{Strength: CorrelationWeak}
	}

	r := cov / math.Sqrt(varX*varY)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}

	abs := math.Abs(r)
	strength := CorrelationStrong
	if abs < 0.3 {
		strength = CorrelationWeak
	} else if abs < 0.7 {
		strength = CorrelationModerate
	}

	// Significance grows with both |r| and sample depth; saturates at 30
	// pairs, which is plenty for the per-user windows this engine sees.
	depth := float64(n) / 30.0
	if depth > 1 {
		depth = 1
	}
	significance := abs * depth

	return Correlation{Correlation: r, Significance: significance, Strength: strength}
}

// Mean returns the arithmetic mean, 0 for an empty series
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance, 0 for series shorter than 2
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Median returns the middle value of the series, 0 when empty
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Mode returns the most frequent value, breaking ties toward the smaller
// value. Continuous inputs rarely repeat, so callers prefer Median.
func Mode(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	best := values[0]
	bestCount := 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best = v
			bestCount = c
		}
	}
	return best
}

// Baseline derives a typical value for a series. Median is the default and
// preferred method since it shrugs off the occasional outlier session.
func Baseline(values []float64, method BaselineMethod) float64 {
	switch method {
	case BaselineMean:
		return Mean(values)
	case BaselineMode:
		return Mode(values)
	default:
		return Median(values)
	}
}

// Quantile returns the linearly-interpolated q-quantile (q in [0,1]) of
// the series
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// DetectOutliers flags indices outside Tukey's fences at Q1−1.5·IQR and
// Q3+1.5·IQR. Fewer than four points cannot establish quartiles and
// reports nothing.
func DetectOutliers(values []float64) []int {
	if len(values) < 4 {
		return nil
	}

	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var outliers []int
	for i, v := range values {
		if v < lower || v > upper {
			outliers = append(outliers, i)
		}
	}
	return outliers
}

// PercentileInterpolate maps a value onto a population percentile curve by
// piecewise-linear interpolation between the given breakpoints. Values
// beyond the last breakpoint extrapolate along the last segment, and the
// result is clamped to [0,100]. The breakpoint slices must be ascending
// and of equal length.
func PercentileInterpolate(value float64, percentiles, breakValues []float64) float64 {
	n := len(percentiles)
	if n == 0 || n != len(breakValues) {
		return 0
	}

	if value <= breakValues[0] {
		// Below the lowest breakpoint: scale proportionally toward 0
		if breakValues[0] <= 0 {
			return clampPercentile(percentiles[0])
		}
		return clampPercentile(percentiles[0] * value / breakValues[0])
	}

	for i := 1; i < n; i++ {
		if value <= breakValues[i] {
			span := breakValues[i] - breakValues[i-1]
			if span == 0 {
				return clampPercentile(percentiles[i])
			}
			frac := (value - breakValues[i-1]) / span
			return clampPercentile(percentiles[i-1] + frac*(percentiles[i]-percentiles[i-1]))
		}
	}

	// Beyond the highest breakpoint: extend the last segment, capped at 100
	lastSpan := breakValues[n-1] - breakValues[n-2]
	if lastSpan == 0 {
		return clampPercentile(percentiles[n-1])
	}
	slope := (percentiles[n-1] - percentiles[n-2]) / lastSpan
	return clampPercentile(percentiles[n-1] + slope*(value-breakValues[n-1]))
}

func clampPercentile(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Clamp01 restricts a confidence-style value to [0,1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
