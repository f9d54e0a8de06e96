package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "collections_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	paymentRecordTotal   *prometheus.CounterVec
	paymentRecordLatency *prometheus.HistogramVec

	scheduleComputeTotal   *prometheus.CounterVec
	scheduleComputeLatency *prometheus.HistogramVec

	reportBuildTotal    *prometheus.CounterVec
	reportBuildLatency  *prometheus.HistogramVec
	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	sweepRunTotal      *prometheus.CounterVec
	sweepRunLatency    *prometheus.HistogramVec
	sweepDefaultsTotal prometheus.Counter

	billingOpsTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		paymentRecordTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_record_total",
				Help: "Total payment record operations by result",
			},
			[]string{"result"},
		)
		paymentRecordLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "payment_record_latency_seconds",
				Help:    "Payment record latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		scheduleComputeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_compute_total",
				Help: "Total credit schedule computations by result",
			},
			[]string{"result"},
		)
		scheduleComputeLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "schedule_compute_latency_seconds",
				Help:    "Credit schedule computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		reportBuildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_build_total",
				Help: "Total collection report builds by result",
			},
			[]string{"result"},
		)
		reportBuildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_build_latency_seconds",
				Help:    "Collection report build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report export operations by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		sweepRunTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sweep_run_total",
				Help: "Total delinquency sweep runs by result",
			},
			[]string{"result"},
		)
		sweepRunLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "sweep_run_latency_seconds",
				Help:    "Delinquency sweep latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		sweepDefaultsTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "sweep_defaults_total",
				Help: "Total credits transitioned to defaulted by the sweep",
			},
		)

		billingOpsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_ops_total",
				Help: "Total billing console operations by action",
			},
			[]string{"action"},
		)

		prometheus.MustRegister(
			paymentRecordTotal,
			paymentRecordLatency,
			scheduleComputeTotal,
			scheduleComputeLatency,
			reportBuildTotal,
			reportBuildLatency,
			reportExportTotal,
			reportExportLatency,
			sweepRunTotal,
			sweepRunLatency,
			sweepDefaultsTotal,
			billingOpsTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObservePaymentRecord records payment recording latency and result.
func ObservePaymentRecord(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if paymentRecordTotal != nil {
		paymentRecordTotal.WithLabelValues(result).Inc()
	}
	if paymentRecordLatency != nil {
		paymentRecordLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveScheduleCompute records schedule computation latency and result.
func ObserveScheduleCompute(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if scheduleComputeTotal != nil {
		scheduleComputeTotal.WithLabelValues(result).Inc()
	}
	if scheduleComputeLatency != nil {
		scheduleComputeLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReportBuild records report assembly latency and result.
func ObserveReportBuild(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportBuildTotal != nil {
		reportBuildTotal.WithLabelValues(result).Inc()
	}
	if reportBuildLatency != nil {
		reportBuildLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReportExport records export latency and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveSweepRun records sweep latency and result.
func ObserveSweepRun(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if sweepRunTotal != nil {
		sweepRunTotal.WithLabelValues(result).Inc()
	}
	if sweepRunLatency != nil {
		sweepRunLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddSweepDefaults increments the defaulted-credit counter by count.
func AddSweepDefaults(count int) {
	if count <= 0 {
		return
	}
	if sweepDefaultsTotal != nil {
		sweepDefaultsTotal.Add(float64(count))
	}
}

// IncBillingOp increments billing console operation counters.
func IncBillingOp(action string) {
	if action == "" {
		action = "unknown"
	}
	if billingOpsTotal != nil {
		billingOpsTotal.WithLabelValues(action).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
