package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitalsync/fitlytics-go/internal/config"
	"github.com/vitalsync/fitlytics-go/internal/models"
	"github.com/vitalsync/fitlytics-go/internal/stats"
)

// EnergyObservation is one energy rating stamped with when it was logged
type EnergyObservation struct {
	Date   time.Time
	Hour   int // 0-23
	Energy float64
}

// TrainingWindowPredictor infers a chronotype from energy-by-time-of-day
// patterns and scores each hour for training suitability. The hourly
// curve is rule-based, not learned.
type TrainingWindowPredictor struct {
	cfg    config.WindowsConfig
	logger *logrus.Logger
}

// NewTrainingWindowPredictor creates a training window predictor
func NewTrainingWindowPredictor(cfg config.WindowsConfig, logger *logrus.Logger) *TrainingWindowPredictor {
	return &TrainingWindowPredictor{cfg: cfg, logger: logger}
}

// Predict builds the chronotype profile and the 24-hour optimality curve
func (tw *TrainingWindowPredictor) Predict(observations []EnergyObservation) models.OptimalTrainingWindows {
	chronotype, confidence := tw.inferChronotype(observations)

	scores := make([]models.HourScore, 24)
	for hour := 0; hour < 24; hour++ {
		scores[hour] = models.HourScore{Hour: hour, Score: tw.hourScore(hour, chronotype)}
	}

	primary, secondary := tw.pickWindows(scores)

	result := models.OptimalTrainingWindows{
		Chronotype:      chronotype,
		Confidence:      confidence,
		HourScores:      scores,
		Primary:         primary,
		Secondary:       secondary,
		DayOfWeekScores: dayOfWeekScores(observations),
	}

	if tw.logger != nil {
		tw.logger.WithFields(logrus.Fields{
			"chronotype":  chronotype,
			"confidence":  confidence,
			"data_points": len(observations),
		}).Debug("Predicted training windows")
	}
	return result
}

// inferChronotype compares average morning energy (05-11) against average
// evening energy (17-23). A difference under the bias threshold is
// neutral.
func (tw *TrainingWindowPredictor) inferChronotype(observations []EnergyObservation) (models.Chronotype, float64) {
	var morning, evening []float64
	for _, o := range observations {
		switch {
		case o.Hour >= 5 && o.Hour < 12:
			morning = append(morning, o.Energy)
		case o.Hour >= 17 && o.Hour < 24:
			evening = append(evening, o.Energy)
		}
	}

	if len(morning) < 3 || len(evening) < 3 {
		return models.ChronotypeNeutral, 0
	}

	bias := stats.Mean(morning) - stats.Mean(evening)
	depth := stats.Clamp01(float64(len(morning)+len(evening)) / 28)

	switch {
	case bias >= tw.cfg.ChronotypeBias:
		return models.ChronotypeMorning, stats.Clamp01(bias/5) * depth
	case bias <= -tw.cfg.ChronotypeBias:
		return models.ChronotypeEvening, stats.Clamp01(-bias/5) * depth
	default:
		return models.ChronotypeNeutral, depth * 0.5
	}
}

// hourScore combines the base circadian curve with the chronotype shift,
// meal-time penalties and extreme-hour penalties, clamped to 0-100
func (tw *TrainingWindowPredictor) hourScore(hour int, chronotype models.Chronotype) float64 {
	score := baseHourScore(hour)

	switch chronotype {
	case models.ChronotypeMorning:
		if hour >= 6 && hour <= 10 {
			score += 15
		}
		if hour >= 18 && hour <= 21 {
			score -= 15
		}
	case models.ChronotypeEvening:
		if hour >= 17 && hour <= 20 {
			score += 15
		}
		if hour >= 6 && hour <= 9 {
			score -= 15
		}
	}

	// Meal windows: digestion competes with training
	if hour == 12 || hour == 13 {
		score -= 10
	}
	if hour == 19 {
		score -= 5
	}

	// Sleep-adjacent hours are never a good idea
	if hour <= 4 || hour == 23 {
		score -= 20
	}

	return clampScore(score)
}

// baseHourScore is the neutral-chronotype circadian curve
func baseHourScore(hour int) float64 {
	switch {
	case hour <= 4:
		return 20
	case hour == 5:
		return 40
	case hour <= 7:
		return 60
	case hour <= 10:
		return 75
	case hour == 11:
		return 70
	case hour <= 13:
		return 65
	case hour <= 16:
		return 70
	case hour <= 19:
		return 80
	case hour == 20:
		return 65
	case hour == 21:
		return 50
	default:
		return 30
	}
}

// pickWindows selects the two best sufficiently-separated local maxima
// and expands each into a contiguous window of near-peak hours
func (tw *TrainingWindowPredictor) pickWindows(scores []models.HourScore) (*models.TrainingWindow, *models.TrainingWindow) {
	maxima := localMaxima(scores)
	if len(maxima) == 0 {
		return nil, nil
	}

	primary := expandWindow(scores, maxima[0])
	for _, peak := range maxima[1:] {
		if hourDistance(peak, maxima[0]) < tw.cfg.MinWindowGapHours {
			continue
		}
		secondary := expandWindow(scores, peak)
		return primary, secondary
	}
	return primary, nil
}

// localMaxima returns peak hours sorted by descending score
func localMaxima(scores []models.HourScore) []int {
	var peaks []int
	for h := 0; h < 24; h++ {
		prev := scores[(h+23)%24].Score
		next := scores[(h+1)%24].Score
		s := scores[h].Score
		if s >= prev && s > next {
			peaks = append(peaks, h)
		}
	}

	for i := 0; i < len(peaks); i++ {
		for j := i + 1; j < len(peaks); j++ {
			if scores[peaks[j]].Score > scores[peaks[i]].Score {
				peaks[i], peaks[j] = peaks[j], peaks[i]
			}
		}
	}
	return peaks
}

// expandWindow grows a peak into the surrounding hours scoring within 10
// points of it
func expandWindow(scores []models.HourScore, peak int) *models.TrainingWindow {
	threshold := scores[peak].Score - 10

	start := peak
	for start > 0 && scores[start-1].Score >= threshold {
		start--
	}
	end := peak
	for end < 23 && scores[end+1].Score >= threshold {
		end++
	}

	var sum float64
	for h := start; h <= end; h++ {
		sum += scores[h].Score
	}

	return &models.TrainingWindow{
		StartHour: start,
		EndHour:   end,
		Score:     sum / float64(end-start+1),
	}
}

func hourDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 12 {
		d = 24 - d
	}
	return d
}

func dayOfWeekScores(observations []EnergyObservation) map[string]float64 {
	if len(observations) == 0 {
		return nil
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, o := range observations {
		day := o.Date.Weekday().String()
		sums[day] += o.Energy
		counts[day]++
	}

	out := make(map[string]float64, len(sums))
	for day, sum := range sums {
		out[day] = clampScore(sum / float64(counts[day]) * 10)
	}
	return out
}
