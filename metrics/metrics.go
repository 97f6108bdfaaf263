// Package metrics provides Prometheus instrumentation for storage adapters.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultNotFound = "not_found"
	ResultError    = "error"
	ResultFalse    = "false"
)

// Recorder holds the storage metric families registered on one registry.
type Recorder struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesRead         *prometheus.CounterVec
	bytesWritten      *prometheus.CounterVec
}

// New registers the storage metric families on reg. Passing nil registers
// them on the default registry. Families already registered on reg by an
// earlier call are reused, so every Recorder built on one registry shares
// the same series.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &Recorder{
		operationsTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_operations_total",
				Help: "Total number of storage adapter operations",
			},
			[]string{"backend", "operation", "result"},
		)),
		operationDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storage_operation_duration_seconds",
				Help:    "Storage adapter operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "operation"},
		)),
		bytesRead: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_bytes_read_total",
				Help: "Total bytes returned by read operations",
			},
			[]string{"backend"},
		)),
		bytesWritten: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_bytes_written_total",
				Help: "Total bytes stored by write operations",
			},
			[]string{"backend"},
		)),
	}
}

// register adds c to reg, returning the collector reg already holds when an
// identical family was registered before.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// RecordOperation records one operation and its outcome.
func (r *Recorder) RecordOperation(backend, operation string, duration time.Duration, result string) {
	r.operationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	r.operationsTotal.WithLabelValues(backend, operation, result).Inc()
}

// RecordRead adds n bytes to the read counter.
func (r *Recorder) RecordRead(backend string, n int64) {
	if n > 0 {
		r.bytesRead.WithLabelValues(backend).Add(float64(n))
	}
}

// RecordWrite adds n bytes to the write counter.
func (r *Recorder) RecordWrite(backend string, n int64) {
	if n > 0 {
		r.bytesWritten.WithLabelValues(backend).Add(float64(n))
	}
}
