// Package metrics exposes prometheus instrumentation for predictions, model loading and training.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds every collector registered by the application.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec
	PredictionDuration *prometheus.HistogramVec
	ModelLoaded        prometheus.Gauge
	ModelInfo          *prometheus.GaugeVec
	TrainingRuns       *prometheus.CounterVec
	TrainingDuration   prometheus.Histogram
	TrainingAccuracy   prometheus.Gauge
	AdvisorRequests    *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg uses a private registry,
// which keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		PredictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aspirations_predictions_total",
				Help: "Total number of prediction requests",
			},
			[]string{"channel", "outcome"},
		),
		PredictionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aspirations_prediction_duration_seconds",
				Help:    "Duration of prediction requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"channel"},
		),
		ModelLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "aspirations_model_loaded",
				Help: "Whether a model artifact is loaded (1) or not (0)",
			},
		),
		ModelInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aspirations_model_info",
				Help: "Identifier of the loaded model artifact",
			},
			[]string{"model_id"},
		),
		TrainingRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aspirations_training_runs_total",
				Help: "Total number of training runs",
			},
			[]string{"outcome"},
		),
		TrainingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aspirations_training_duration_seconds",
				Help:    "Duration of training runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		TrainingAccuracy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "aspirations_training_holdout_accuracy",
				Help: "Holdout accuracy of the most recent training run",
			},
		),
		AdvisorRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aspirations_advisor_requests_total",
				Help: "Total number of advisor narrative requests",
			},
			[]string{"outcome"},
		),
	}
}

// ObservePrediction records one prediction on channel ("web", "api").
func (m *Metrics) ObservePrediction(channel string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.PredictionsTotal.WithLabelValues(channel, outcome(err)).Inc()
	m.PredictionDuration.WithLabelValues(channel).Observe(time.Since(started).Seconds())
}

// SetModel marks modelID as loaded. An empty id marks the model as unavailable.
func (m *Metrics) SetModel(modelID string) {
	if m == nil {
		return
	}
	m.ModelInfo.Reset()
	if modelID == "" {
		m.ModelLoaded.Set(0)
		return
	}
	m.ModelLoaded.Set(1)
	m.ModelInfo.WithLabelValues(modelID).Set(1)
}

// ObserveTraining records a finished training run.
func (m *Metrics) ObserveTraining(started time.Time, accuracy float64, err error) {
	if m == nil {
		return
	}
	m.TrainingRuns.WithLabelValues(outcome(err)).Inc()
	m.TrainingDuration.Observe(time.Since(started).Seconds())
	if err == nil {
		m.TrainingAccuracy.Set(accuracy)
	}
}

// ObserveAdvisor records one advisor call.
func (m *Metrics) ObserveAdvisor(err error) {
	if m == nil {
		return
	}
	m.AdvisorRequests.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
