package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ddns_sync"

// Metrics collects API call and pass outcome metrics for one process.
type Metrics struct {
	registry *prometheus.Registry

	successfulAPICallsTotal *prometheus.CounterVec
	failedAPICallsTotal     *prometheus.CounterVec
	apiDelay                *prometheus.HistogramVec

	recordUpdatesTotal *prometheus.CounterVec
	missingRecords     *prometheus.GaugeVec
	failedZones        prometheus.Gauge
	lastRunSuccess     prometheus.Gauge
	lastRunTimestamp   prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		successfulAPICallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "successful_api_calls_total",
				Help:      "The number of successful DNS provider API calls",
			},
			[]string{"action"},
		),
		failedAPICallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failed_api_calls_total",
				Help:      "The number of DNS provider API calls that returned an error",
			},
			[]string{"action"},
		),
		apiDelay: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_delay_milliseconds",
				Help:      "Histogram of the delay in milliseconds when calling the DNS provider API",
				Buckets:   []float64{10, 100, 250, 500, 1000, 1500, 2000},
			},
			[]string{"action"},
		),
		recordUpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_updates_total",
				Help:      "The number of record updates attempted, by result",
			},
			[]string{"zone", "result"},
		),
		missingRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "missing_records",
				Help:      "Configured records absent at the provider in the last pass",
			},
			[]string{"zone"},
		),
		failedZones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "failed_zones",
			Help:      "The number of zones that failed in the last pass",
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last pass succeeded, 0 otherwise",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last pass finished",
		}),
	}
	reg.MustRegister(
		m.successfulAPICallsTotal,
		m.failedAPICallsTotal,
		m.apiDelay,
		m.recordUpdatesTotal,
		m.missingRecords,
		m.failedZones,
		m.lastRunSuccess,
		m.lastRunTimestamp,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveAPICall records the outcome and latency of a provider call.
func (m *Metrics) ObserveAPICall(action string, start time.Time, err error) {
	labels := prometheus.Labels{"action": action}
	if err != nil {
		m.failedAPICallsTotal.With(labels).Inc()
		return
	}
	m.successfulAPICallsTotal.With(labels).Inc()
	m.apiDelay.With(labels).Observe(float64(time.Since(start).Milliseconds()))
}

func (m *Metrics) IncRecordUpdate(zone string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.recordUpdatesTotal.With(prometheus.Labels{"zone": zone, "result": result}).Inc()
}

func (m *Metrics) SetMissingRecords(zone string, n int) {
	m.missingRecords.With(prometheus.Labels{"zone": zone}).Set(float64(n))
}

// SetRunResult records the end of a pass.
func (m *Metrics) SetRunResult(failedZones int, err error) {
	m.failedZones.Set(float64(failedZones))
	if err != nil {
		m.lastRunSuccess.Set(0)
	} else {
		m.lastRunSuccess.Set(1)
	}
	m.lastRunTimestamp.SetToCurrentTime()
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// The write goes through a temporary file and a rename.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
