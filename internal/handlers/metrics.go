package handlers

import "github.com/prometheus/client_golang/prometheus"

type ScheduleMetrics struct {
	Posts         *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	CacheEvents   *prometheus.CounterVec
}

func (m *ScheduleMetrics) IncPost(operation, status string) {
	if m == nil || m.Posts == nil {
		return
	}

	m.Posts.WithLabelValues(operation, status).Inc()
}

func (m *ScheduleMetrics) ObserveBuild(source string, seconds float64) {
	if m == nil || m.BuildDuration == nil {
		return
	}

	m.BuildDuration.WithLabelValues(source).Observe(seconds)
}

func (m *ScheduleMetrics) IncCache(event string) {
	if m == nil || m.CacheEvents == nil {
		return
	}

	m.CacheEvents.WithLabelValues(event).Inc()
}
