// SPDX-License-Identifier: MIT

package basis

import (
	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/quadrature"
)

// Legendre is the orthogonal basis φ_k = L_k on Gauss-Legendre nodes (default).
type Legendre struct {
	*polynomial
}

// Compile-time assertion.
var _ Basis = (*Legendre)(nil)

// NewLegendre builds an N-mode Legendre basis.
func NewLegendre(n int, opts ...Option) (*Legendre, error) {
	p, err := newPolynomial("Legendre", n, quadrature.GaussLegendre{}, quadrature.LegendreAll, opts)
	if err != nil {
		return nil, err
	}

	return &Legendre{polynomial: p}, nil
}

// Name returns "Legendre".
func (b *Legendre) Name() string { return "Legendre" }

// Forward returns M⁻¹ Vᵀ W u.
func (b *Legendre) Forward(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.forward(b, in, out, axis, mode)
}

// Backward returns V c.
func (b *Legendre) Backward(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.backward(b, "Backward", in, out, axis, mode)
}

// ScalarProduct returns Vᵀ W u.
func (b *Legendre) ScalarProduct(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.scalarProduct(b, in, out, axis, mode)
}

// EvaluateExpansionAll returns V c.
func (b *Legendre) EvaluateExpansionAll(in, out *ndarray.Array, axis int) error {
	return b.backward(b, "EvaluateExpansionAll", in, out, axis, Fast)
}

// ApplyInverseMass solves with the discrete mass matrix (diagonal 2/(2k+1) on Gauss-Legendre nodes).
func (b *Legendre) ApplyInverseMass(arr *ndarray.Array, axis int) error {
	return b.applyInverseMass(b, arr, axis)
}

// Eval evaluates Σ c_k L_k at domain points.
func (b *Legendre) Eval(x []float64, coeffs []complex128) ([]complex128, error) {
	return b.eval(x, coeffs)
}
