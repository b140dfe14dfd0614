// SPDX-License-Identifier: MIT

// Package telemetry records transform timings and transpose volumes.
//
// Spaces report through the Observer interface; Nop discards everything and
// is the default. NewPrometheus registers:
//
//	spectral_stage_seconds{op,axis,family}   histogram of per-axis stage time
//	spectral_transpose_elements_total{op}    elements moved by transposes
//	spectral_boundary_recompute_total        boundary lifter recomputations, once per process grid
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer receives pipeline events. Implementations must be safe for
// concurrent use by several ranks.
type Observer interface {
	// ObserveStage records one per-axis transform stage.
	ObserveStage(op string, axis int, family string, d time.Duration)

	// ObserveTranspose records the number of local elements moved by one transpose.
	ObserveTranspose(op string, elements int)

	// ObserveBoundaryRecompute records one boundary-state recomputation.
	ObserveBoundaryRecompute()
}

// Nop discards all events.
type Nop struct{}

func (Nop) ObserveStage(string, int, string, time.Duration) {}
func (Nop) ObserveTranspose(string, int) {}
func (Nop) ObserveBoundaryRecompute() {}

// Prometheus is an Observer backed by Prometheus collectors.
type Prometheus struct {
	stage     *prometheus.HistogramVec
	transpose *prometheus.CounterVec
	boundary  prometheus.Counter
}

// Compile-time assertions.
var (
	_ Observer = Nop{}
	_ Observer = (*Prometheus)(nil)
)

// NewPrometheus creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil). Registering twice on the same
// registry panics, as with promauto.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Prometheus{
		stage: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spectral_stage_seconds",
			Help:    "Per-axis transform stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10), // 1µs to ~0.26s
		}, []string{"op", "axis", "family"}),
		transpose: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spectral_transpose_elements_total",
			Help: "Local elements moved by pencil transposes",
		}, []string{"op"}),
		boundary: f.NewCounter(prometheus.CounterOpts{
			Name: "spectral_boundary_recompute_total",
			Help: "Boundary lifter recomputations",
		}),
	}
}

func (p *Prometheus) ObserveStage(op string, axis int, family string, d time.Duration) {
	p.stage.WithLabelValues(op, strconv.Itoa(axis), family).Observe(d.Seconds())
}

func (p *Prometheus) ObserveTranspose(op string, elements int) {
	p.transpose.WithLabelValues(op).Add(float64(elements))
}

func (p *Prometheus) ObserveBoundaryRecompute() { p.boundary.Inc() }
