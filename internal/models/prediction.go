package models

import "time"

// ModelKind identifies the curve family a prediction model was fit with
type ModelKind string

const (
	ModelLinear      ModelKind = "linear"
	ModelPolynomial  ModelKind = "polynomial"
	ModelExponential ModelKind = "exponential"
	ModelLogistic    ModelKind = "logistic"
)

// Horizon names a forecast distance from the last observation
type Horizon string

const (
	HorizonOneWeek    Horizon = "1w"
	HorizonOneMonth   Horizon = "1m"
	HorizonThreeMonth Horizon = "3m"
	HorizonSixMonth   Horizon = "6m"
	HorizonOneYear    Horizon = "1y"
)

// Horizons lists the forecast horizons in order of increasing distance
var Horizons = []Horizon{HorizonOneWeek, HorizonOneMonth, HorizonThreeMonth, HorizonSixMonth, HorizonOneYear}

// Forecast is a dated predicted value with its extrapolation confidence
type Forecast struct {
	Date       time.Time `json:"date"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"` // 0-1, decays with horizon
}

// PredictionModel is one fitted curve family over a metric's history.
// Coefficients are family-specific: [intercept slope] for linear,
// [a b c] for a+bx+cx² polynomial, [a b] for a·e^(bx) exponential and
// [L k x0] for logistic.
type PredictionModel struct {
	Metric       MetricType           `json:"metric"`
	Kind         ModelKind            `json:"kind"`
	Coefficients []float64            `json:"coefficients"`
	RSquared     float64              `json:"r_squared"` // 0-1
	Predictions  map[Horizon]Forecast `json:"predictions"`
}
