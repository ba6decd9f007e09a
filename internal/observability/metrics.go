// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	PoliciesPriced    prometheus.Counter
	PoliciesDeclined  prometheus.Counter
	ExperimentCells   *prometheus.CounterVec

	// Book gauges, refreshed on every completed run
	BasePrice         prometheus.Gauge
	TargetPrice       prometheus.Gauge
	GrossWrittenPrem  prometheus.Gauge
	LossRatio         prometheus.Gauge
	RenewalRate       prometheus.Gauge
	OutOfControlShare prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Server metrics
	MonitorClients        prometheus.Gauge
	LastSuccessfulRunUnix prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered on
// the default registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pricing_lab"
	}

	return &Metrics{
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by scenario, strategy and status",
		}, []string{"scenario", "strategy", "status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "phase_duration_seconds",
			Help:      "Duration of pipeline phases",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		PoliciesPriced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "policies_priced_total",
			Help:      "Total policies that received a final price",
		}),
		PoliciesDeclined: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "policies_declined_total",
			Help:      "Total policies declined by underwriting",
		}),
		ExperimentCells: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "experiment",
			Name:      "cells_total",
			Help:      "Experiment grid cells executed by status",
		}, []string{"status"}),

		BasePrice: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "book",
			Name:      "base_price",
			Help:      "Base price of the latest priced book",
		}),
		TargetPrice: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "book",
			Name:      "target_price",
			Help:      "Optimized target price of the latest priced book",
		}),
		GrossWrittenPrem: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "book",
			Name:      "gwp",
			Help:      "Gross written premium of the latest priced book",
		}),
		LossRatio: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "book",
			Name:      "loss_ratio",
			Help:      "Loss ratio of the latest priced book (NaN when undefined)",
		}),
		RenewalRate: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "book",
			Name:      "renewal_rate",
			Help:      "Realized acceptance rate of the latest priced book",
		}),
		OutOfControlShare: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "book",
			Name:      "out_of_control_share",
			Help:      "Share of incurred claims outside control limits",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration by database and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Database query errors by database and operation",
		}, []string{"database", "operation"}),

		MonitorClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "monitor_clients",
			Help:      "Connected websocket monitor clients",
		}),
		LastSuccessfulRunUnix: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix time of the last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPipelineRun records a completed or failed pipeline run.
func RecordPipelineRun(scenario, strategy, status string) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(scenario, strategy, status).Inc()
}

// RecordPhase records the duration of one pipeline phase.
func RecordPhase(phase string, seconds float64) {
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordBook refreshes the book gauges after a successful run.
func RecordBook(basePrice, targetPrice, gwp, renewalRate, outOfControl float64, lossRatio *float64) {
	DefaultMetrics.BasePrice.Set(basePrice)
	DefaultMetrics.TargetPrice.Set(targetPrice)
	DefaultMetrics.GrossWrittenPrem.Set(gwp)
	DefaultMetrics.RenewalRate.Set(renewalRate)
	DefaultMetrics.OutOfControlShare.Set(outOfControl)
	if lossRatio != nil {
		DefaultMetrics.LossRatio.Set(*lossRatio)
	}
}

// RecordPricedPolicies adds to the priced/declined counters.
func RecordPricedPolicies(priced, declined int) {
	DefaultMetrics.PoliciesPriced.Add(float64(priced))
	DefaultMetrics.PoliciesDeclined.Add(float64(declined))
}

// RecordExperimentCell records one finished experiment grid cell.
func RecordExperimentCell(status string) {
	DefaultMetrics.ExperimentCells.WithLabelValues(status).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
