package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service's prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec

	// pow2_calculations_total{season, outcome}
	CalculationsTotal *prometheus.CounterVec

	// pow2_calculation_duration_seconds{season, kind}
	CalculationDuration *prometheus.HistogramVec

	// pow2_factor_errors_total{season, kind}
	FactorErrorsTotal *prometheus.CounterVec

	// pow2_alpha_search_total{factor, outcome}
	AlphaSearchTotal *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		CalculationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pow2_calculations_total",
				Help: "Entity cpu calculations by outcome",
			},
			[]string{"season", "outcome"},
		),

		CalculationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pow2_calculation_duration_seconds",
				Help:    "Duration of single and batch calculation requests",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"season", "kind"},
		),

		FactorErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pow2_factor_errors_total",
				Help: "Factor evaluation failures by error kind",
			},
			[]string{"season", "kind"},
		),

		AlphaSearchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pow2_alpha_search_total",
				Help: "Normalize domain loads by outcome",
			},
			[]string{"factor", "outcome"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestDuration,
		m.CalculationsTotal,
		m.CalculationDuration,
		m.FactorErrorsTotal,
		m.AlphaSearchTotal,
	)
	return m
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
}

func (m *Metrics) RecordCalculation(season, outcome string) {
	m.CalculationsTotal.WithLabelValues(season, outcome).Inc()
}

func (m *Metrics) ObserveRequest(season, kind string, durationSeconds float64) {
	m.CalculationDuration.WithLabelValues(season, kind).Observe(durationSeconds)
}

func (m *Metrics) RecordFactorError(season, kind string) {
	m.FactorErrorsTotal.WithLabelValues(season, kind).Inc()
}

func (m *Metrics) RecordDomainLoad(factor, outcome string) {
	m.AlphaSearchTotal.WithLabelValues(factor, outcome).Inc()
}
