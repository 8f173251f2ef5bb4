package services

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitalsync/fitlytics-go/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var testDay = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// dailySeries builds a metric series with one point per day ending the
// day before testDay
func dailySeries(metric models.MetricType, values ...float64) models.MetricSeries {
	points := make([]models.MetricPoint, len(values))
	for i, v := range values {
		points[i] = models.MetricPoint{
			Date:  testDay.AddDate(0, 0, i-len(values)),
			Value: v,
		}
	}
	return models.MetricSeries{Metric: metric, Points: points}
}
