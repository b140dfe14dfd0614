// SPDX-License-Identifier: MIT

// Package basis: functional configuration shared by every family.
//
// Design goals:
//   - Deterministic behavior: no global state.
//   - Safe by construction: WithX panics only on nonsensical values (programmer error);
//     combinations that are individually valid but jointly inconsistent
//     (padding with direct dealiasing) are reported by the constructors as ErrConfiguration.

package basis

import (
	"math"

	"github.com/katalvlaran/spectral/quadrature"
)

// DefaultPaddingFactor disables padding (physical extent == number of modes).
const DefaultPaddingFactor = 1.0

const (
	panicPaddingInvalid = "basis: WithPadding: factor must be finite and >= 1"
	panicDomainInvalid  = "basis: WithDomain: need finite a < b"
	panicRuleNil        = "basis: WithQuadrature: rule must not be nil"
)

// Option mutates basis options.
type Option func(*options)

type options struct {
	padding       float64
	dealiasDirect bool
	domain        [2]float64
	domainSet     bool
	rule          quadrature.Rule
}

func gatherOptions(opts []Option) options {
	o := options{padding: DefaultPaddingFactor}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}

// WithPadding sets the padding factor used for dealiasing; 1.5 is the 3/2-rule.
// The physical extent becomes floor(N*factor).
func WithPadding(factor float64) Option {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 1 {
		panic(panicPaddingInvalid)
	}

	return func(o *options) { o.padding = factor }
}

// WithDealiasDirect enables the 2/3-rule truncation in Backward. Requires padding factor 1.
func WithDealiasDirect() Option {
	return func(o *options) { o.dealiasDirect = true }
}

// WithDomain maps the reference interval onto [a, b].
func WithDomain(a, b float64) Option {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) || !(a < b) {
		panic(panicDomainInvalid)
	}

	return func(o *options) {
		o.domain = [2]float64{a, b}
		o.domainSet = true
	}
}

// WithQuadrature overrides the family's default quadrature rule (non-periodic families only).
func WithQuadrature(rule quadrature.Rule) Option {
	if rule == nil {
		panic(panicRuleNil)
	}

	return func(o *options) { o.rule = rule }
}

// paddedExtent returns floor(n*factor), guarding against representation error.
func paddedExtent(n int, factor float64) int {
	return int(math.Floor(float64(n)*factor + 1e-9))
}

// isPadded reports whether factor differs from 1.
func isPadded(factor float64) bool { return factor > 1+1e-8 }
