package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitalsync/fitlytics-go/internal/models"
)

// WorkoutModifier maps a readiness assessment onto concrete workout
// parameter adjustments. Pure rules, no persistence.
type WorkoutModifier struct {
	logger *logrus.Logger
}

// NewWorkoutModifier creates a workout modifier
func NewWorkoutModifier(logger *logrus.Logger) *WorkoutModifier {
	return &WorkoutModifier{logger: logger}
}

// Modify derives today's parameter adjustments from the readiness bands
// plus factor-specific tweaks
func (wm *WorkoutModifier) Modify(analysis models.ReadinessAnalysis) []models.WorkoutModification {
	var mods []models.WorkoutModification

	switch {
	case analysis.OverallScore < 40:
		mods = append(mods, models.WorkoutModification{
			Kind:       models.ModifyDeload,
			DeltaPct:   -40,
			Reason:     fmt.Sprintf("Readiness %.0f calls for a full deload", analysis.OverallScore),
			Confidence: analysis.Confidence,
		})
	case analysis.OverallScore < 60:
		// Scale the intensity cut within the band: the deeper under 60,
		// the closer to the full 25% reduction
		cut := 15 + (60-analysis.OverallScore)/20*10
		if cut > 25 {
			cut = 25
		}
		mods = append(mods,
			models.WorkoutModification{
				Kind:       models.ModifyIntensity,
				DeltaPct:   -cut,
				Reason:     fmt.Sprintf("Readiness %.0f is below the training band", analysis.OverallScore),
				Confidence: analysis.Confidence,
			},
			models.WorkoutModification{
				Kind:       models.ModifyVolume,
				DeltaPct:   -20,
				Reason:     "Reduced volume to match today's recovery state",
				Confidence: analysis.Confidence,
			},
		)
	case analysis.OverallScore > 85 && analysis.Deviation > 0:
		boost := 5.0
		if analysis.OverallScore >= 92 {
			boost = 10
		}
		mods = append(mods, models.WorkoutModification{
			Kind:       models.ModifyIntensity,
			DeltaPct:   boost,
			Reason:     fmt.Sprintf("Readiness %.0f with positive deviation supports heavier loading", analysis.OverallScore),
			Confidence: analysis.Confidence,
		})
	}

	for _, f := range analysis.Factors {
		if f.Score >= 60 {
			continue
		}
		switch f.Name {
		case models.FactorSleep:
			mods = append(mods, models.WorkoutModification{
				Kind:       models.ModifyRest,
				ExtraRest:  60 * time.Second,
				Reason:     "Poor sleep lengthens recovery between sets",
				AppliesTo:  "all sets",
				Confidence: analysis.Confidence,
			})
		case models.FactorSoreness:
			mods = append(mods, models.WorkoutModification{
				Kind:       models.ModifyMobility,
				Reason:     "Elevated soreness warrants extra mobility work before loading",
				AppliesTo:  "warm-up",
				Confidence: analysis.Confidence,
			})
		}
	}

	if wm.logger != nil && len(mods) > 0 {
		wm.logger.WithFields(logrus.Fields{
			"score":         analysis.OverallScore,
			"modifications": len(mods),
		}).Debug("Derived workout modifications")
	}
	return mods
}
