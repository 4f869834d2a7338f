// Package metrics описывает метрики Prometheus для шима.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ActionMetrics учитывает выполненные команды шима.
type ActionMetrics interface {
	ObserveAction(action, status string, elapsed time.Duration)
}

type actionMetrics struct {
	actions  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewActionMetrics регистрирует метрики в registry.
func NewActionMetrics(registry prometheus.Registerer) ActionMetrics {
	actions := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifinet_actions_total",
			Help: "The total number of executed dashboard actions",
		},
		[]string{"action", "status"},
	)

	duration := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wifinet_action_duration_seconds",
			Help:    "Dashboard action execution time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	return &actionMetrics{actions: actions, duration: duration}
}

// ObserveAction увеличивает счётчик команды и записывает время выполнения.
func (m *actionMetrics) ObserveAction(action, status string, elapsed time.Duration) {
	m.actions.WithLabelValues(action, status).Inc()
	m.duration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// Nop метрики, которые никуда не пишутся.
type Nop struct{}

func (Nop) ObserveAction(string, string, time.Duration) {}
