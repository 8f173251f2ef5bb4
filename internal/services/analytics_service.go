package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vitalsync/fitlytics-go/internal/cache"
	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
)

// AthleteData is one user's already-fetched history for a single analysis
// request
type AthleteData struct {
	Sleep      models.MetricSeries
	Energy     models.MetricSeries
	Soreness   models.MetricSeries
	Stress     models.MetricSeries
	HRV        models.MetricSeries
	Records    []models.ExerciseRecord
	EnergyLog  []EnergyObservation
	Benchmarks []BenchmarkValue
}

// DataProvider supplies athlete data from the surrounding application.
// The engine treats a provider failure as a soft error and falls back to
// cached results.
type DataProvider interface {
	AthleteData(ctx context.Context, userID string) (*AthleteData, error)
}

// AnalyticsService orchestrates one analysis request: fan out the
// independent analyzers, fan in to insight synthesis, cache the bundle.
// It is the only stateful piece of the engine, and that state is confined
// to the result caches.
type AnalyticsService struct {
	cfg      *config.Config
	logger   *logrus.Logger
	provider DataProvider

	trends      *TrendAnalyzer
	readiness   *ReadinessScorer
	anomalies   *AnomalyDetector
	predictions *PredictionEngine
	benchmarks  *BenchmarkEngine
	windows     *TrainingWindowPredictor
	insights    *InsightGenerator
	modifier    *WorkoutModifier

	bundleCache *cache.ResultCache[*models.InsightBundle]
	statusCache *cache.ResultCache[models.ReadinessAnalysis]

	now func() time.Time
}

// NewAnalyticsService wires the full pipeline. A nil clock defaults to
// time.Now; tests inject a fake clock to exercise TTL expiry.
func NewAnalyticsService(cfg *config.Config, provider DataProvider, logger *logrus.Logger, clock cache.Clock) *AnalyticsService {
	if clock == nil {
		clock = time.Now
	}

	trends := NewTrendAnalyzer(cfg.Trend, logger)
	return &AnalyticsService{
		cfg:         cfg,
		logger:      logger,
		provider:    provider,
		trends:      trends,
		readiness:   NewReadinessScorer(cfg.Readiness, trends, logger),
		anomalies:   NewAnomalyDetector(cfg.Anomaly, logger),
		predictions: NewPredictionEngine(cfg.Prediction, logger),
		benchmarks:  NewBenchmarkEngine(cfg.Benchmark, logger),
		windows:     NewTrainingWindowPredictor(cfg.Windows, logger),
		insights:    NewInsightGenerator(logger),
		modifier:    NewWorkoutModifier(logger),
		bundleCache: cache.New[*models.InsightBundle](cfg.Cache.InsightTTL, clock),
		statusCache: cache.New[models.ReadinessAnalysis](cfg.Cache.StatusTTL, clock),
		now:         clock,
	}
}

// Analyze returns the full insight bundle for a user, serving a fresh
// cached bundle unless forceRefresh is set. A provider failure degrades
// to the last cached bundle (flagged stale) or to the conservative
// default profile; it never surfaces as an error to the caller.
func (s *AnalyticsService) Analyze(ctx context.Context, userID string, forceRefresh bool) *models.InsightBundle {
	if !forceRefresh {
		if bundle, ok := s.bundleCache.Get(userID); ok {
			return bundle
		}
	}

	data, err := s.provider.AthleteData(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Athlete data fetch failed, falling back")
		return s.fallback(userID)
	}

	bundle := s.compute(ctx, userID, data)
	s.bundleCache.Set(userID, bundle)
	s.statusCache.Set(userID, *bundle.Readiness)
	return bundle
}

// Status returns just the readiness assessment, cached on the shorter
// status TTL
func (s *AnalyticsService) Status(ctx context.Context, userID string) models.ReadinessAnalysis {
	if analysis, ok := s.statusCache.Get(userID); ok {
		return analysis
	}

	bundle := s.Analyze(ctx, userID, true)
	return *bundle.Readiness
}

// Invalidate drops a user's cached results
func (s *AnalyticsService) Invalidate(userID string) {
	s.bundleCache.Invalidate(userID)
	s.statusCache.Invalidate(userID)
}

// CompetitiveAnalysis ranks the user's benchmark values; uncached since
// tables are static and the computation is trivial
func (s *AnalyticsService) CompetitiveAnalysis(values []BenchmarkValue) models.CompetitiveAnalysis {
	return s.benchmarks.Analyze(values)
}

// TrainingWindows returns the chronotype profile for an energy log
func (s *AnalyticsService) TrainingWindows(observations []EnergyObservation) models.OptimalTrainingWindows {
	return s.windows.Predict(observations)
}

// compute runs the fan-out/fan-in pipeline. The analyzers are pure and
// independent, so they run in parallel; insight synthesis waits for all
// of them.
func (s *AnalyticsService) compute(ctx context.Context, userID string, data *AthleteData) *models.InsightBundle {
	oneRM := models.OneRMSeries(data.Records)
	volume := models.VolumeSeries(data.Records)

	var (
		readiness models.ReadinessAnalysis
		trendMap  map[models.MetricType]models.TrendResult
		anomalies []models.AnomalyEvent
		fitted    []models.PredictionModel
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		readiness = s.readiness.Score(ReadinessInput{
			Sleep:    data.Sleep,
			Energy:   data.Energy,
			Soreness: data.Soreness,
			Stress:   data.Stress,
			HRV:      data.HRV,
			Now:      s.now(),
		})
		return nil
	})
	g.Go(func() error {
		trendMap = map[models.MetricType]models.TrendResult{
			models.MetricSleep:  s.trends.Analyze(data.Sleep),
			models.MetricEnergy: s.trends.Analyze(data.Energy),
			models.MetricOneRM:  s.trends.Analyze(oneRM),
			models.MetricVolume: s.trends.Analyze(volume),
		}
		return nil
	})
	g.Go(func() error {
		anomalies = s.anomalies.DetectAll(oneRM, volume, data.Records)
		return nil
	})
	g.Go(func() error {
		fitted = s.predictions.Fit(oneRM)
		return nil
	})

	// The analyzers never fail; the group exists for the fan-in barrier
	// and context plumbing.
	_ = g.Wait()

	insights := s.insights.Generate(InsightInput{
		Readiness: &readiness,
		Trends:    trendMap,
		Anomalies: anomalies,
		Models:    fitted,
		Sleep:     data.Sleep,
		Energy:    data.Energy,
		Stress:    data.Stress,
		Soreness:  data.Soreness,
	})

	trendList := make([]models.TrendResult, 0, len(trendMap))
	for _, t := range trendMap {
		trendList = append(trendList, t)
	}

	return &models.InsightBundle{
		UserID:        userID,
		GeneratedAt:   s.now(),
		Readiness:     &readiness,
		Trends:        trendList,
		Anomalies:     anomalies,
		Models:        fitted,
		Insights:      insights,
		Modifications: s.modifier.Modify(readiness),
	}
}

// fallback serves the last cached bundle flagged stale, or the
// conservative default profile when no cache exists
func (s *AnalyticsService) fallback(userID string) *models.InsightBundle {
	if bundle, ok, _ := s.bundleCache.GetStale(userID); ok {
		stale := *bundle
		stale.Stale = true
		if stale.Readiness != nil {
			readiness := *stale.Readiness
			readiness.Stale = true
			stale.Readiness = &readiness
		}
		return &stale
	}

	readiness := s.defaultReadiness()
	return &models.InsightBundle{
		UserID:      userID,
		GeneratedAt: s.now(),
		Readiness:   &readiness,
		Insights:    nil,
		Stale:       true,
	}
}

// defaultReadiness is the cold-start profile served when no data and no
// cache exist
func (s *AnalyticsService) defaultReadiness() models.ReadinessAnalysis {
	baseline := s.cfg.Readiness.BaselineDefault
	return models.ReadinessAnalysis{
		Date:         s.now(),
		OverallScore: baseline,
		Level:        levelForScore(baseline),
		Baseline:     baseline,
		Stale:        true,
		Recommendations: []string{
			"Log a few days of wellness data to unlock personalized readiness tracking",
		},
	}
}
