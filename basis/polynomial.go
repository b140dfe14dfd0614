// SPDX-License-Identifier: MIT

// Package basis - shared machinery of the non-periodic (Legendre-type) families.
//
// With V_jk = φ_k(x_j) and W = diag(w) on a Gauss-type rule:
//
//	ScalarProduct  s = Vᵀ W u
//	Forward        c = M⁻¹ s,  M = Vᵀ W V  (discrete mass, Cholesky-factored)
//	Backward       u = V c
//
// Fast applies precomputed dense matrices (VᵀW, M⁻¹VᵀW, V). Direct re-evaluates
// φ_k at every node by recurrence and solves with the factored mass matrix.
// Real operators act on real and imaginary parts separately.

package basis

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/quadrature"
)

// fillFunc writes φ_0(x)..φ_{n-1}(x) into dst (len n).
type fillFunc func(x float64, dst []float64)

type polynomial struct {
	name string
	n    int
	rule quadrature.Rule
	x, w []float64
	a, b float64
	fill fillFunc

	v    *mat.Dense // V
	sp   *mat.Dense // Vᵀ W
	fwd  *mat.Dense // M⁻¹ Vᵀ W
	mass mat.Cholesky
}

func newPolynomial(name string, n int, defaultRule quadrature.Rule, fill fillFunc, opts []Option) (*polynomial, error) {
	o := gatherOptions(opts)
	if n < 1 {
		return nil, configErrorf(name, "N=%d must be >= 1", n)
	}
	if isPadded(o.padding) {
		return nil, configErrorf(name, "padding factor %g not supported, non-periodic bases use 1", o.padding)
	}
	if o.dealiasDirect {
		return nil, configErrorf(name, "dealias_direct not supported for non-periodic bases")
	}
	rule := defaultRule
	if o.rule != nil {
		rule = o.rule
	}
	if ra, rb := rule.Interval(); ra != -1 || rb != 1 {
		return nil, configErrorf(name, "quadrature %q lives on [%g, %g], want [-1, 1]", rule.Name(), ra, rb)
	}
	x, w, err := rule.Nodes(n)
	if err != nil {
		return nil, fmt.Errorf("%s: quadrature %q: %w", name, rule.Name(), err)
	}
	p := &polynomial{name: name, n: n, rule: rule, x: x, w: w, a: -1, b: 1, fill: fill}
	if o.domainSet {
		p.a, p.b = o.domain[0], o.domain[1]
	}
	if err = p.assemble(); err != nil {
		return nil, err
	}

	return p, nil
}

// assemble builds V, VᵀW, the mass factorization and M⁻¹VᵀW.
func (p *polynomial) assemble() error {
	n := p.n
	p.v = mat.NewDense(n, n, nil)
	row := make([]float64, n)
	for j, xj := range p.x {
		p.fill(xj, row)
		p.v.SetRow(j, row)
	}
	p.sp = mat.NewDense(n, n, nil)
	p.sp.Apply(func(k, j int, _ float64) float64 { return p.v.At(j, k) * p.w[j] }, p.sp)

	var m mat.Dense
	m.Mul(p.sp, p.v)
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	if ok := p.mass.Factorize(sym); !ok {
		return configErrorf(p.name, "mass matrix on %q nodes is not positive definite", p.rule.Name())
	}
	p.fwd = mat.NewDense(n, n, nil)
	if err := p.mass.SolveTo(p.fwd, p.sp); err != nil {
		return configErrorf(p.name, "mass solve: %v", err)
	}

	return nil
}

func (p *polynomial) Family() Family { return NonPeriodic }
func (p *polynomial) N() int { return p.n }
func (p *polynomial) PhysicalN() int { return p.n }
func (p *polynomial) SpectralN() int { return p.n }
func (p *polynomial) PaddingFactor() float64 { return 1 }
func (p *polynomial) Domain() (float64, float64) { return p.a, p.b }

// SpectralDtype keeps the input dtype.
func (p *polynomial) SpectralDtype(d ndarray.Dtype) ndarray.Dtype { return d }

// Wavenumbers returns the mode indices 0..N-1; scaling and Nyquist elimination do not apply.
func (p *polynomial) Wavenumbers(bool, bool) []float64 {
	k := make([]float64, p.n)
	for i := range k {
		k[i] = float64(i)
	}

	return k
}

// Points returns the quadrature nodes, mapped to [a, b] when scaled.
func (p *polynomial) Points(scaled bool) []float64 {
	if !scaled {
		return append([]float64(nil), p.x...)
	}

	return mapDomain(p.x, -1, 1, p.a, p.b)
}

// Weights returns the quadrature weights on [-1, 1].
func (p *polynomial) Weights() []float64 { return append([]float64(nil), p.w...) }

// lineOp applies a real linear map to the real and imaginary parts of a line.
type lineOp func(dst, src *mat.VecDense) error

// mapReal runs op along every line of in → out. Float64 input skips the imaginary pass.
func (p *polynomial) mapReal(in, out *ndarray.Array, axis int, op lineOp) error {
	n := p.n
	src, dst := mat.NewVecDense(n, nil), mat.NewVecDense(n, nil)
	complexIn := in.Dtype() == ndarray.Complex128

	return ndarray.MapLines(in, out, axis, func(s, d []complex128) error {
		for i, v := range s {
			src.SetVec(i, real(v))
		}
		if err := op(dst, src); err != nil {
			return err
		}
		for i := range d {
			d[i] = complex(dst.AtVec(i), 0)
		}
		if !complexIn {
			return nil
		}
		for i, v := range s {
			src.SetVec(i, imag(v))
		}
		if err := op(dst, src); err != nil {
			return err
		}
		for i := range d {
			d[i] += complex(0, dst.AtVec(i))
		}

		return nil
	})
}

func (p *polynomial) mulBy(m mat.Matrix) lineOp {
	return func(dst, src *mat.VecDense) error {
		dst.MulVec(m, src)

		return nil
	}
}

// directScalar evaluates s_k = Σ_j w_j u_j φ_k(x_j), recomputing φ at each node.
func (p *polynomial) directScalar() lineOp {
	phi := make([]float64, p.n)

	return func(dst, src *mat.VecDense) error {
		dst.Zero()
		for j, xj := range p.x {
			p.fill(xj, phi)
			wu := p.w[j] * src.AtVec(j)
			for k, f := range phi {
				dst.SetVec(k, dst.AtVec(k)+wu*f)
			}
		}

		return nil
	}
}

// directEval evaluates u_j = Σ_k c_k φ_k(x_j), recomputing φ at each node.
func (p *polynomial) directEval() lineOp {
	phi := make([]float64, p.n)

	return func(dst, src *mat.VecDense) error {
		for j, xj := range p.x {
			p.fill(xj, phi)
			var s float64
			for k, f := range phi {
				s += src.AtVec(k) * f
			}
			dst.SetVec(j, s)
		}

		return nil
	}
}

func (p *polynomial) solveMass() lineOp {
	return func(dst, src *mat.VecDense) error {
		return p.mass.SolveVecTo(dst, src)
	}
}

func (p *polynomial) forward(self Basis, in, out *ndarray.Array, axis int, mode Mode) error {
	if err := checkToSpectral(self, "Forward", in, out, axis); err != nil {
		return err
	}
	if mode == Direct {
		scalar, solve := p.directScalar(), p.solveMass()
		tmp := mat.NewVecDense(p.n, nil)

		return p.mapReal(in, out, axis, func(dst, src *mat.VecDense) error {
			if err := scalar(tmp, src); err != nil {
				return err
			}

			return solve(dst, tmp)
		})
	}

	return p.mapReal(in, out, axis, p.mulBy(p.fwd))
}

func (p *polynomial) scalarProduct(self Basis, in, out *ndarray.Array, axis int, mode Mode) error {
	if err := checkToSpectral(self, "ScalarProduct", in, out, axis); err != nil {
		return err
	}
	if mode == Direct {
		return p.mapReal(in, out, axis, p.directScalar())
	}

	return p.mapReal(in, out, axis, p.mulBy(p.sp))
}

func (p *polynomial) backward(self Basis, op string, in, out *ndarray.Array, axis int, mode Mode) error {
	if err := checkToPhysical(self, op, in, out, axis); err != nil {
		return err
	}
	if mode == Direct {
		return p.mapReal(in, out, axis, p.directEval())
	}

	return p.mapReal(in, out, axis, p.mulBy(p.v))
}

func (p *polynomial) applyInverseMass(self Basis, arr *ndarray.Array, axis int) error {
	if err := checkInPlace(self, "ApplyInverseMass", arr, axis); err != nil {
		return err
	}

	return p.mapReal(arr, arr, axis, p.solveMass())
}

// eval sums Σ c_k φ_k at domain points.
func (p *polynomial) eval(x []float64, coeffs []complex128) ([]complex128, error) {
	if len(coeffs) != p.n {
		return nil, fmt.Errorf("%s.Eval: %d coefficients, want %d: %w", p.name, len(coeffs), p.n, ErrShapeMismatch)
	}
	phi := make([]float64, p.n)
	out := make([]complex128, len(x))
	for j, xj := range mapDomain(x, p.a, p.b, -1, 1) {
		p.fill(xj, phi)
		var s complex128
		for k, f := range phi {
			s += coeffs[k] * complex(f, 0)
		}
		out[j] = s
	}

	return out, nil
}
