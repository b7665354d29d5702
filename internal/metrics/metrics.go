package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tumorviz/internal/domain/entity"
)

// Metrics метрики конвейера. Нулевой *Metrics допустим и ничего не пишет.
type Metrics struct {
	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
	predictions *prometheus.CounterVec

	registry *prometheus.Registry
}

// New создаёт метрики с собственным реестром
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tumorviz_saliency_runs_total",
			Help: "Saliency pipeline runs by result",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tumorviz_saliency_duration_seconds",
			Help:    "Saliency pipeline run duration",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tumorviz_predictions_total",
			Help: "Predictions by model and class",
		}, []string{"model", "class"}),
	}

	m.registry.MustRegister(m.runs, m.duration, m.predictions)
	return m
}

// ObserveRun учитывает один прогон конвейера и его исход
func (m *Metrics) ObserveRun(start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	m.runs.WithLabelValues(Result(err)).Inc()
}

// ObservePrediction считает классификации по модели и классу
func (m *Metrics) ObservePrediction(model, class string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(model, class).Inc()
}

// Handler HTTP-обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Result переводит ошибку конвейера в значение метки result
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, entity.ErrModelInference):
		return "model_inference"
	case errors.Is(err, entity.ErrAttributionUnavailable):
		return "attribution_unavailable"
	case errors.Is(err, entity.ErrInvalidImageDimensions):
		return "invalid_dimensions"
	case errors.Is(err, entity.ErrPersistence):
		return "persistence"
	default:
		return "other"
	}
}
