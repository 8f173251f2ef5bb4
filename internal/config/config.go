package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries every tunable the analytics engine uses. All of the
// numeric thresholds are empirical constants inherited from field tuning;
// they are exposed here rather than hard-coded so a deployment can adjust
// them without a rebuild.
type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Trend       TrendConfig     `mapstructure:"trend"`
	Readiness   ReadinessConfig `mapstructure:"readiness"`
	Anomaly     AnomalyConfig   `mapstructure:"anomaly"`
	Prediction  PredictionConfig `mapstructure:"prediction"`
	Benchmark   BenchmarkConfig `mapstructure:"benchmark"`
	Windows     WindowsConfig   `mapstructure:"windows"`
	Cache       CacheConfig     `mapstructure:"cache"`
}

// TrendConfig holds the series-classification thresholds
type TrendConfig struct {
	SlopeThreshold      float64 `mapstructure:"slope_threshold"`
	VolatilityThreshold float64 `mapstructure:"volatility_threshold"`
	MinPoints           int     `mapstructure:"min_points"`
}

// ReadinessConfig holds the factor weights and scoring bands
type ReadinessConfig struct {
	SleepWeight           float64 `mapstructure:"sleep_weight"`
	EnergyWeight          float64 `mapstructure:"energy_weight"`
	SorenessWeight        float64 `mapstructure:"soreness_weight"`
	StressWeight          float64 `mapstructure:"stress_weight"`
	HRVWeight             float64 `mapstructure:"hrv_weight"`
	BaselineExclusionDays int     `mapstructure:"baseline_exclusion_days"`
	BaselineWindow        int     `mapstructure:"baseline_window"`
	BaselineMinPoints     int     `mapstructure:"baseline_min_points"`
	BaselineDefault       float64 `mapstructure:"baseline_default"`
	TrendWindow           int     `mapstructure:"trend_window"`
	DeviationAlert        float64 `mapstructure:"deviation_alert"`
	MaxRecommendations    int     `mapstructure:"max_recommendations"`
}

// AnomalyConfig holds the detection thresholds
type AnomalyConfig struct {
	DropThresholdPct     float64 `mapstructure:"drop_threshold_pct"`
	DropHighPct          float64 `mapstructure:"drop_high_pct"`
	SpikeZScore          float64 `mapstructure:"spike_z_score"`
	SpikeHighZScore      float64 `mapstructure:"spike_high_z_score"`
	RPEThreshold         float64 `mapstructure:"rpe_threshold"`
	RPEStreakLength      int     `mapstructure:"rpe_streak_length"`
	RPEStreakHighLength  int     `mapstructure:"rpe_streak_high_length"`
	FrequencyDeviation   float64 `mapstructure:"frequency_deviation"`
	FrequencyHighDev     float64 `mapstructure:"frequency_high_deviation"`
	MaxConfidence        float64 `mapstructure:"max_confidence"`
}

// PredictionConfig holds the curve-fitting limits
type PredictionConfig struct {
	MinPointsLinear     int     `mapstructure:"min_points_linear"`
	MinPointsPolynomial int     `mapstructure:"min_points_polynomial"`
	SingularityEpsilon  float64 `mapstructure:"singularity_epsilon"`
}

// BenchmarkConfig holds the ranking weights
type BenchmarkConfig struct {
	MajorLiftWeight float64  `mapstructure:"major_lift_weight"`
	MajorLifts      []string `mapstructure:"major_lifts"`
}

// WindowsConfig holds the chronotype inference thresholds
type WindowsConfig struct {
	ChronotypeBias    float64 `mapstructure:"chronotype_bias"`
	MinWindowGapHours int     `mapstructure:"min_window_gap_hours"`
}

// CacheConfig holds the result-cache TTLs
type CacheConfig struct {
	StatusTTL  time.Duration `mapstructure:"status_ttl"`
	InsightTTL time.Duration `mapstructure:"insight_ttl"`
}

// Load reads configuration from ./configs/config.yaml (when present) and
// the environment, falling back to the built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.Readiness.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment. Tests and embedded callers use this.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		// Defaults are statically known to unmarshal
		panic(err)
	}
	return &config
}

func (r ReadinessConfig) validate() error {
	total := r.SleepWeight + r.EnergyWeight + r.SorenessWeight + r.StressWeight + r.HRVWeight
	if total < 0.999 || total > 1.001 {
		return fmt.Errorf("readiness factor weights must sum to 1.0, got %.3f", total)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	// Trend classification
	v.SetDefault("trend.slope_threshold", 0.1)
	v.SetDefault("trend.volatility_threshold", 0.3)
	v.SetDefault("trend.min_points", 3)

	// Readiness scoring
	v.SetDefault("readiness.sleep_weight", 0.35)
	v.SetDefault("readiness.energy_weight", 0.25)
	v.SetDefault("readiness.soreness_weight", 0.20)
	v.SetDefault("readiness.stress_weight", 0.15)
	v.SetDefault("readiness.hrv_weight", 0.05)
	v.SetDefault("readiness.baseline_exclusion_days", 14)
	v.SetDefault("readiness.baseline_window", 21)
	v.SetDefault("readiness.baseline_min_points", 5)
	v.SetDefault("readiness.baseline_default", 60.0)
	v.SetDefault("readiness.trend_window", 7)
	v.SetDefault("readiness.deviation_alert", 15.0)
	v.SetDefault("readiness.max_recommendations", 4)

	// Anomaly detection
	v.SetDefault("anomaly.drop_threshold_pct", 0.10)
	v.SetDefault("anomaly.drop_high_pct", 0.20)
	v.SetDefault("anomaly.spike_z_score", 2.5)
	v.SetDefault("anomaly.spike_high_z_score", 3.0)
	v.SetDefault("anomaly.rpe_threshold", 8.5)
	v.SetDefault("anomaly.rpe_streak_length", 3)
	v.SetDefault("anomaly.rpe_streak_high_length", 5)
	v.SetDefault("anomaly.frequency_deviation", 0.50)
	v.SetDefault("anomaly.frequency_high_deviation", 0.75)
	v.SetDefault("anomaly.max_confidence", 0.9)

	// Prediction
	v.SetDefault("prediction.min_points_linear", 3)
	v.SetDefault("prediction.min_points_polynomial", 4)
	v.SetDefault("prediction.singularity_epsilon", 1e-10)

	// Benchmarks
	v.SetDefault("benchmark.major_lift_weight", 2.0)
	v.SetDefault("benchmark.major_lifts", []string{"squat", "bench press", "deadlift", "overhead press"})

	// Training windows
	v.SetDefault("windows.chronotype_bias", 2.0)
	v.SetDefault("windows.min_window_gap_hours", 4)

	// Result cache
	v.SetDefault("cache.status_ttl", "5m")
	v.SetDefault("cache.insight_ttl", "15m")
}
