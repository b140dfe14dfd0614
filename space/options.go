// SPDX-License-Identifier: MIT

// Package space - functional options for TensorProductSpace.
//
// Defaults:
//   - axes 0..n-1 (the last one transformed first);
//   - dtype derived from the first-transformed basis;
//   - general pencil grid with the first-transformed axis local;
//   - homogeneous Dirichlet data (Constant(0) on both ends);
//   - package logger and a no-op observer.

package space

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/pencil"
	"github.com/katalvlaran/spectral/telemetry"
)

const (
	panicDtypeInvalid = "space: WithDtype: unknown dtype"
	panicSourceNil    = "space: WithBoundary: sources must not be nil"
	panicDataNil      = "space: boundary source data must not be nil"
)

// Option configures a TensorProductSpace.
type Option func(*options)

type options struct {
	axes     []int
	dtype    ndarray.Dtype
	dtypeSet bool
	slab     bool
	grid     *pencil.Subcomm
	bc       [2]Source
	logger   *zap.Logger
	observer telemetry.Observer
}

func gatherOptions(opts []Option) options {
	o := options{
		bc:       [2]Source{Constant(0), Constant(0)},
		observer: telemetry.Nop{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}

	return o
}

// WithAxes sets the axis order; axes[len-1] is transformed first. Negative
// entries count from the end. Must be a permutation of 0..n-1.
func WithAxes(axes ...int) Option {
	cp := append([]int(nil), axes...)

	return func(o *options) { o.axes = cp }
}

// WithDtype fixes the physical dtype.
func WithDtype(d ndarray.Dtype) Option {
	if !d.Valid() {
		panic(panicDtypeInvalid)
	}

	return func(o *options) {
		o.dtype = d
		o.dtypeSet = true
	}
}

// WithSlab distributes only the last-transformed axis (axes[0]) in physical space.
func WithSlab() Option {
	return func(o *options) { o.slab = true }
}

// WithProcessGrid uses an existing process grid instead of creating one. The
// grid stays owned by the caller and is not freed by Destroy.
func WithProcessGrid(s *pencil.Subcomm) Option {
	return func(o *options) { o.grid = s }
}

// WithBoundary sets the Dirichlet data at the left (x = a) and right (x = b)
// end of the space's Dirichlet axis.
func WithBoundary(left, right Source) Option {
	if left == nil || right == nil {
		panic(panicSourceNil)
	}

	return func(o *options) { o.bc = [2]Source{left, right} }
}

// WithLogger overrides the package logger for one space.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver reports stage timings and transpose volumes to obs.
func WithObserver(obs telemetry.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}
