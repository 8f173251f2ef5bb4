package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
)

// fakeProvider serves canned athlete data and counts fetches
type fakeProvider struct {
	mu    sync.Mutex
	data  *AthleteData
	err   error
	calls int
}

func (p *fakeProvider) AthleteData(_ context.Context, _ string) (*AthleteData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.data, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeTicker struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeTicker) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTicker) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func sampleAthleteData() *AthleteData {
	return &AthleteData{
		Sleep:    dailySeries(models.MetricSleep, 7, 7.5, 8, 7, 7.5, 8, 7.5),
		Energy:   dailySeries(models.MetricEnergy, 6, 6, 7, 6, 7, 7, 7),
		Soreness: dailySeries(models.MetricSoreness, 4, 4, 3, 4, 3, 3, 3),
		Stress:   dailySeries(models.MetricStress, 5, 5, 4, 5, 4, 4, 4),
	}
}

func newTestAnalyticsService(provider DataProvider, ticker *fakeTicker) *AnalyticsService {
	return NewAnalyticsService(config.Default(), provider, testLogger(), ticker.Now)
}

func TestAnalyzeProducesBundle(t *testing.T) {
	provider := &fakeProvider{data: sampleAthleteData()}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	bundle := svc.Analyze(context.Background(), "user-1", false)
	require.NotNil(t, bundle)
	assert.Equal(t, "user-1", bundle.UserID)
	assert.Equal(t, testDay, bundle.GeneratedAt)
	assert.False(t, bundle.Stale)

	require.NotNil(t, bundle.Readiness)
	assert.Greater(t, bundle.Readiness.OverallScore, 0.0)
	assert.Len(t, bundle.Trends, 4)
}

func TestAnalyzeServesCachedBundle(t *testing.T) {
	provider := &fakeProvider{data: sampleAthleteData()}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	first := svc.Analyze(context.Background(), "user-1", false)
	second := svc.Analyze(context.Background(), "user-1", false)

	assert.Same(t, first, second)
	assert.Equal(t, 1, provider.callCount())
}

func TestAnalyzeForceRefreshBypassesCache(t *testing.T) {
	provider := &fakeProvider{data: sampleAthleteData()}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	svc.Analyze(context.Background(), "user-1", false)
	svc.Analyze(context.Background(), "user-1", true)

	assert.Equal(t, 2, provider.callCount())
}

func TestAnalyzeRefetchesAfterTTL(t *testing.T) {
	provider := &fakeProvider{data: sampleAthleteData()}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	svc.Analyze(context.Background(), "user-1", false)
	ticker.Advance(16 * time.Minute)
	svc.Analyze(context.Background(), "user-1", false)

	assert.Equal(t, 2, provider.callCount())
}

func TestAnalyzeFallsBackToStaleBundle(t *testing.T) {
	provider := &fakeProvider{data: sampleAthleteData()}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	fresh := svc.Analyze(context.Background(), "user-1", false)
	require.False(t, fresh.Stale)

	// cache expires, then the upstream starts failing
	ticker.Advance(16 * time.Minute)
	provider.mu.Lock()
	provider.err = errors.New("store unavailable")
	provider.mu.Unlock()

	degraded := svc.Analyze(context.Background(), "user-1", false)
	require.NotNil(t, degraded)
	assert.True(t, degraded.Stale)
	require.NotNil(t, degraded.Readiness)
	assert.True(t, degraded.Readiness.Stale)
	assert.InDelta(t, fresh.Readiness.OverallScore, degraded.Readiness.OverallScore, 1e-9)

	// the original cached bundle is left unflagged
	assert.False(t, fresh.Stale)
}

func TestAnalyzeColdStartFallback(t *testing.T) {
	provider := &fakeProvider{err: errors.New("store unavailable")}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	bundle := svc.Analyze(context.Background(), "user-1", false)
	require.NotNil(t, bundle)
	assert.True(t, bundle.Stale)

	require.NotNil(t, bundle.Readiness)
	assert.InDelta(t, 60, bundle.Readiness.OverallScore, 1e-9)
	assert.Equal(t, models.ReadinessFair, bundle.Readiness.Level)
	assert.NotEmpty(t, bundle.Readiness.Recommendations)
}

func TestStatusUsesShorterTTL(t *testing.T) {
	provider := &fakeProvider{data: sampleAthleteData()}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	svc.Status(context.Background(), "user-1")
	assert.Equal(t, 1, provider.callCount())

	// within the status TTL the cached assessment is reused
	ticker.Advance(4 * time.Minute)
	svc.Status(context.Background(), "user-1")
	assert.Equal(t, 1, provider.callCount())

	// past the 5 minute status TTL a fresh analysis runs
	ticker.Advance(2 * time.Minute)
	svc.Status(context.Background(), "user-1")
	assert.Equal(t, 2, provider.callCount())
}

func TestInvalidateDropsCaches(t *testing.T) {
	provider := &fakeProvider{data: sampleAthleteData()}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	svc.Analyze(context.Background(), "user-1", false)
	svc.Invalidate("user-1")
	svc.Analyze(context.Background(), "user-1", false)

	assert.Equal(t, 2, provider.callCount())
}

func TestCompetitiveAnalysisPassthrough(t *testing.T) {
	provider := &fakeProvider{data: sampleAthleteData()}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	analysis := svc.CompetitiveAnalysis([]BenchmarkValue{
		{Value: 100, Table: benchPressTable()},
	})
	require.Len(t, analysis.Ranks, 1)
	assert.InDelta(t, 50, analysis.Ranks[0].Percentile, 1e-9)
}

func TestTrainingWindowsPassthrough(t *testing.T) {
	provider := &fakeProvider{data: sampleAthleteData()}
	ticker := &fakeTicker{now: testDay}
	svc := newTestAnalyticsService(provider, ticker)

	result := svc.TrainingWindows(energyRoutine(8, 5))
	assert.Equal(t, models.ChronotypeMorning, result.Chronotype)
	assert.NotNil(t, result.Primary)
}
