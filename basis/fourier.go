// SPDX-License-Identifier: MIT

// Package basis - Fourier families shared arithmetic.
//
// Conventions:
//   - Reference grid x_j = 2πj/M, j = 0..M-1, with M = floor(N*padding).
//   - Forward(u)_k = (1/M) Σ_j u_j exp(-ikx_j).
//   - ScalarProduct = 2π · Forward, so ApplyInverseMass multiplies by 1/(2π).
//   - An even-N Nyquist coefficient is split evenly between ±N/2 when padding
//     and folded back on truncation, so padding never changes the represented function.

package basis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/spectral/quadrature"
)

// fourierCore carries the settings shared by R2C and C2C.
type fourierCore struct {
	n, m    int
	padding float64
	dealias bool
	a, b    float64
}

func newFourierCore(name string, n int, opts []Option) (fourierCore, error) {
	o := gatherOptions(opts)
	if n < 1 {
		return fourierCore{}, configErrorf(name, "N=%d must be >= 1", n)
	}
	if o.rule != nil {
		if _, ok := o.rule.(quadrature.Equispaced); !ok {
			return fourierCore{}, configErrorf(name, "quadrature %q not supported, Fourier uses equispaced points", o.rule.Name())
		}
	}
	if o.dealiasDirect && isPadded(o.padding) {
		return fourierCore{}, configErrorf(name, "dealias_direct with padding factor %g", o.padding)
	}
	c := fourierCore{
		n:       n,
		m:       paddedExtent(n, o.padding),
		padding: o.padding,
		dealias: o.dealiasDirect,
		a:       0,
		b:       2 * math.Pi,
	}
	if o.domainSet {
		c.a, c.b = o.domain[0], o.domain[1]
	}
	if c.m < n {
		c.m = n
	}

	return c, nil
}

func (c *fourierCore) N() int { return c.n }
func (c *fourierCore) PhysicalN() int { return c.m }
func (c *fourierCore) PaddingFactor() float64 { return c.padding }
func (c *fourierCore) Domain() (float64, float64) { return c.a, c.b }

// padded reports whether the physical grid is larger than the mode count.
func (c *fourierCore) padded() bool { return c.m > c.n }

// Points returns x_j = 2πj/M, or a + x_j (b−a)/(2π) when scaled.
func (c *fourierCore) Points(scaled bool) []float64 {
	x, _, _ := quadrature.Equispaced{}.Nodes(c.m)
	if !scaled {
		return x
	}

	return mapDomain(x, 0, 2*math.Pi, c.a, c.b)
}

// Weights returns the constant trapezoidal weight 2π/M.
func (c *fourierCore) Weights() []float64 {
	_, w, _ := quadrature.Equispaced{}.Nodes(c.m)

	return w
}

// fullWavenumbers returns the fftfreq ordering 0..⌈N/2⌉-1, -⌊N/2⌋..-1.
func (c *fourierCore) fullWavenumbers() []float64 {
	k := make([]float64, c.n)
	pos := (c.n-1)/2 + 1
	for i := 0; i < pos; i++ {
		k[i] = float64(i)
	}
	for i := pos; i < c.n; i++ {
		k[i] = float64(i - c.n)
	}

	return k
}

// finishWavenumbers applies Nyquist elimination and domain scaling in place.
func (c *fourierCore) finishWavenumbers(k []float64, scaled, eliminateHighest bool) []float64 {
	if eliminateHighest && c.n%2 == 0 {
		k[c.n/2] = 0
	}
	if scaled {
		floats.Scale(2*math.Pi/(c.b-c.a), k)
	}

	return k
}

// reference maps domain coordinates to [0, 2π).
func (c *fourierCore) reference(x []float64) []float64 {
	return mapDomain(x, c.a, c.b, 0, 2*math.Pi)
}

// dealiasCut returns floor(N/3), the first wavenumber removed by the 2/3-rule.
func (c *fourierCore) dealiasCut() int { return c.n / 3 }

// vandermonde holds V[j][i] = exp(i k_i x_j) on the unpadded grid together
// with its transpose (rows per mode) and its conjugate (rows per point).
// Projections and evaluations are then cmplxs.Dot over contiguous rows.
type vandermonde struct {
	v    *mat.CDense
	proj *mat.CDense
	eval *mat.CDense
}

func (c *fourierCore) vandermonde(k []float64) *vandermonde {
	x, _, _ := quadrature.Equispaced{}.Nodes(c.n)
	v := mat.NewCDense(len(x), len(k), nil)
	proj := mat.NewCDense(len(k), len(x), nil)
	for j, xj := range x {
		for i, ki := range k {
			e := expi(ki * xj)
			v.Set(j, i, e)
			proj.Set(i, j, e)
		}
	}
	var eval mat.CDense
	eval.Conj(v)

	return &vandermonde{v: v, proj: proj, eval: &eval}
}

// cdenseRow returns row i of m without copying.
func cdenseRow(m *mat.CDense, i int) []complex128 {
	raw := m.RawCMatrix()

	return raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
}

// derivativeFactors returns (i k)^order for the given wavenumbers.
func derivativeFactors(k []float64, order int) []complex128 {
	out := make([]complex128, len(k))
	for i, ki := range k {
		f := complex(1, 0)
		for d := 0; d < order; d++ {
			f *= complex(0, ki)
		}
		out[i] = f
	}

	return out
}

// DerivativeFactors returns the spectral multipliers (i k)^order of a Fourier
// basis, using scaled wavenumbers. For odd order the even-N Nyquist mode is zeroed.
// Non-Fourier bases yield ErrConfiguration.
func DerivativeFactors(b Basis, order int) ([]complex128, error) {
	if b.Family() == NonPeriodic {
		return nil, configErrorf(b.Name(), "derivative factors only exist for Fourier bases")
	}
	if order < 0 {
		return nil, configErrorf(b.Name(), "derivative order %d < 0", order)
	}

	return derivativeFactors(b.Wavenumbers(true, order%2 == 1), order), nil
}
