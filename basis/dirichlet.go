// SPDX-License-Identifier: MIT

package basis

import (
	"math"

	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/quadrature"
)

// endpointTol bounds |x_0 + 1| and |x_{N-1} - 1| for rules used with Dirichlet.
const endpointTol = 1e-12

// Dirichlet is the Shen-type Legendre basis carrying boundary values:
//
//	φ_k     = L_k − L_{k+2},  k < N−2   (vanish at ±1)
//	φ_{N−2} = (1 − x)/2                 (value at x = a)
//	φ_{N−1} = (1 + x)/2                 (value at x = b)
//
// On Gauss-Lobatto nodes (default) coefficient N−2 equals u(a) and N−1 equals u(b).
type Dirichlet struct {
	*polynomial
}

// Compile-time assertions.
var (
	_ Basis         = (*Dirichlet)(nil)
	_ BoundaryBasis = (*Dirichlet)(nil)
)

// NewDirichlet builds an N-mode Dirichlet basis (N >= 2). The quadrature rule must include both end points.
func NewDirichlet(n int, opts ...Option) (*Dirichlet, error) {
	if n < 2 {
		return nil, configErrorf("Dirichlet", "N=%d must be >= 2", n)
	}
	p, err := newPolynomial("Dirichlet", n, quadrature.GaussLobatto{}, fillDirichlet, opts)
	if err != nil {
		return nil, err
	}
	if math.Abs(p.x[0]+1) > endpointTol || math.Abs(p.x[n-1]-1) > endpointTol {
		return nil, configErrorf("Dirichlet", "quadrature %q has no end points", p.rule.Name())
	}

	return &Dirichlet{polynomial: p}, nil
}

func fillDirichlet(x float64, dst []float64) {
	n := len(dst)
	quadrature.LegendreAll(x, dst)
	for k := 0; k+2 < n; k++ {
		dst[k] -= dst[k+2]
	}
	dst[n-2] = (1 - x) / 2
	dst[n-1] = (1 + x) / 2
}

// Name returns "Dirichlet".
func (b *Dirichlet) Name() string { return "Dirichlet" }

// BoundaryModes returns (N−2, N−1).
func (b *Dirichlet) BoundaryModes() (int, int) { return b.n - 2, b.n - 1 }

// BoundaryPoints returns (0, N−1).
func (b *Dirichlet) BoundaryPoints() (int, int) { return 0, b.n - 1 }

func (b *Dirichlet) Forward(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.forward(b, in, out, axis, mode)
}

func (b *Dirichlet) Backward(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.backward(b, "Backward", in, out, axis, mode)
}

func (b *Dirichlet) ScalarProduct(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.scalarProduct(b, in, out, axis, mode)
}

func (b *Dirichlet) EvaluateExpansionAll(in, out *ndarray.Array, axis int) error {
	return b.backward(b, "EvaluateExpansionAll", in, out, axis, Fast)
}

func (b *Dirichlet) ApplyInverseMass(arr *ndarray.Array, axis int) error {
	return b.applyInverseMass(b, arr, axis)
}

func (b *Dirichlet) Eval(x []float64, coeffs []complex128) ([]complex128, error) {
	return b.eval(x, coeffs)
}
