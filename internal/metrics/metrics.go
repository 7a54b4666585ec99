package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Event metrics
	EventsTotal           *prometheus.CounterVec
	EventDurationSeconds  *prometheus.HistogramVec

	// FAQ metrics
	FAQMatchesTotal *prometheus.CounterVec

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec

	// Knowledge metrics
	KnowledgeSearchesTotal *prometheus.CounterVec

	// Session metrics
	ActiveSessions prometheus.Gauge

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	ActiveUserLimiters prometheus.Gauge

	// Background job metrics
	JobDurationSeconds *prometheus.HistogramVec
	KnowledgeSnippets  prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		EventsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbot_events_total",
				Help: "Total number of inbound events by kind and status",
			},
			[]string{"kind", "status"}, // kind: select, skip, restart, message, start, status, help
		),

		EventDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusbot_event_duration_seconds",
				Help:    "Event processing duration in seconds by kind",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30}, // Generation can be slow
			},
			[]string{"kind"},
		),

		FAQMatchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbot_faq_matches_total",
				Help: "Total number of FAQ lookups by category and outcome",
			},
			[]string{"category", "outcome"}, // outcome: hit, deferred
		),

		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbot_llm_requests_total",
				Help: "Total number of LLM requests by provider, model and status",
			},
			[]string{"provider", "model", "status"}, // status: success, error
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusbot_llm_duration_seconds",
				Help:    "LLM request duration in seconds by provider",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"provider"},
		),

		KnowledgeSearchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbot_knowledge_searches_total",
				Help: "Total number of knowledge searches by status",
			},
			[]string{"status"}, // status: hit, empty, error
		),

		ActiveSessions: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "campusbot_active_sessions",
				Help: "Number of sessions currently held in memory",
			},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbot_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter type",
			},
			[]string{"limiter_type"}, // limiter_type: user
		),

		ActiveUserLimiters: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "campusbot_active_user_limiters",
				Help: "Number of active per-user rate limiter buckets",
			},
		),
		JobDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusbot_job_duration_seconds",
				Help:    "Background job duration in seconds by job name",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 60, 300},
			},
			[]string{"job"}, // job: knowledge_refresh, directory_seed
		),

		KnowledgeSnippets: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "campusbot_knowledge_snippets",
				Help: "Number of snippets in the knowledge index",
			},
		),
	}

	return m
}

// RecordEvent records an inbound event with its processing duration.
func (m *Metrics) RecordEvent(kind, status string, durationSeconds float64) {
	m.EventsTotal.WithLabelValues(kind, status).Inc()
	if durationSeconds > 0 {
		m.EventDurationSeconds.WithLabelValues(kind).Observe(durationSeconds)
	}
}

// RecordFAQMatch records a FAQ lookup outcome.
func (m *Metrics) RecordFAQMatch(category, outcome string) {
	m.FAQMatchesTotal.WithLabelValues(category, outcome).Inc()
}

// RecordLLMRequest records an LLM request with its duration.
func (m *Metrics) RecordLLMRequest(provider, model, status string, durationSeconds float64) {
	m.LLMRequestsTotal.WithLabelValues(provider, model, status).Inc()
	if durationSeconds > 0 {
		m.LLMDurationSeconds.WithLabelValues(provider).Observe(durationSeconds)
	}
}

// RecordKnowledgeSearch records a knowledge search outcome.
func (m *Metrics) RecordKnowledgeSearch(status string) {
	m.KnowledgeSearchesTotal.WithLabelValues(status).Inc()
}

// SetActiveSessions updates the in-memory session count gauge.
func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

// RecordRateLimiterDrop records a dropped request.
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetActiveUserLimiters updates the per-user limiter count gauge.
func (m *Metrics) SetActiveUserLimiters(count int) {
	m.ActiveUserLimiters.Set(float64(count))
}

// RecordJob records one run of a background job.
func (m *Metrics) RecordJob(job string, durationSeconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(durationSeconds)
}

// SetKnowledgeSnippets updates the knowledge index size gauge.
func (m *Metrics) SetKnowledgeSnippets(count int) {
	m.KnowledgeSnippets.Set(float64(count))
}
