// SPDX-License-Identifier: MIT

package basis

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/katalvlaran/spectral/ndarray"
)

// R2C is the real-to-complex Fourier basis. Only the non-negative half of the
// Hermitian spectrum is stored: SpectralN = N/2+1.
type R2C struct {
	fourierCore
	nk   int
	vand *vandermonde // nil when padded
	pool sync.Pool    // *r2cWork
}

type r2cWork struct {
	fft   *fourier.FFT
	seq   []float64
	coeff []complex128
}

// Compile-time assertion.
var _ Basis = (*R2C)(nil)

// NewR2C builds a real-to-complex Fourier basis with n modes.
func NewR2C(n int, opts ...Option) (*R2C, error) {
	core, err := newFourierCore("R2C", n, opts)
	if err != nil {
		return nil, err
	}
	b := &R2C{fourierCore: core, nk: n/2 + 1}
	m := core.m
	b.pool.New = func() any {
		return &r2cWork{fft: fourier.NewFFT(m), seq: make([]float64, m), coeff: make([]complex128, m/2+1)}
	}
	if !core.padded() {
		b.vand = core.vandermonde(b.Wavenumbers(false, false))
	}

	return b, nil
}

// NewFourier returns an R2C basis for Float64 data and a C2C basis otherwise.
func NewFourier(n int, dtype ndarray.Dtype, opts ...Option) (Basis, error) {
	if dtype == ndarray.Float64 {
		return NewR2C(n, opts...)
	}

	return NewC2C(n, opts...)
}

func (b *R2C) Family() Family { return PeriodicReal }
func (b *R2C) Name() string { return "R2C" }
func (b *R2C) SpectralN() int { return b.nk }
func (b *R2C) SpectralDtype(ndarray.Dtype) ndarray.Dtype { return ndarray.Complex128 }

// Wavenumbers returns 0..N/2.
func (b *R2C) Wavenumbers(scaled, eliminateHighest bool) []float64 {
	k := make([]float64, b.nk)
	for i := range k {
		k[i] = float64(i)
	}

	return b.finishWavenumbers(k, scaled, eliminateHighest)
}

// Forward returns rfft(u)/M truncated to N/2+1 modes.
func (b *R2C) Forward(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.project("Forward", in, out, axis, mode, 1)
}

// ScalarProduct returns 2π · Forward.
func (b *R2C) ScalarProduct(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.project("ScalarProduct", in, out, axis, mode, 2*math.Pi)
}

// Backward evaluates the expansion, honouring padding or the 2/3-rule.
func (b *R2C) Backward(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.evaluate("Backward", in, out, axis, mode, b.dealias)
}

// EvaluateExpansionAll evaluates every stored coefficient on the physical grid.
func (b *R2C) EvaluateExpansionAll(in, out *ndarray.Array, axis int) error {
	return b.evaluate("EvaluateExpansionAll", in, out, axis, Fast, false)
}

// ApplyInverseMass multiplies by 1/(2π).
func (b *R2C) ApplyInverseMass(arr *ndarray.Array, axis int) error {
	if err := checkInPlace(b, "ApplyInverseMass", arr, axis); err != nil {
		return err
	}
	arr.Scale(complex(1/(2*math.Pi), 0))

	return nil
}

func (b *R2C) project(op string, in, out *ndarray.Array, axis int, mode Mode, scale float64) error {
	if err := checkToSpectral(b, op, in, out, axis); err != nil {
		return err
	}
	if mode == Direct {
		if b.padded() {
			return configErrorf(b.Name(), "%s: direct path requires padding factor 1, have %g", op, b.padding)
		}
		inv := complex(scale/float64(b.n), 0)

		re := make([]complex128, b.n)

		return ndarray.MapLines(in, out, axis, func(src, dst []complex128) error {
			for j, v := range src {
				re[j] = complex(real(v), 0)
			}
			for i := 0; i < b.nk; i++ {
				dst[i] = cmplxs.Dot(cdenseRow(b.vand.proj, i), re) * inv
			}

			return nil
		})
	}

	w := b.pool.Get().(*r2cWork)
	defer b.pool.Put(w)
	inv := scale / float64(b.m)
	nyq := b.n / 2

	return ndarray.MapLines(in, out, axis, func(src, dst []complex128) error {
		for j := range w.seq {
			w.seq[j] = real(src[j])
		}
		w.fft.Coefficients(w.coeff, w.seq)
		for i := 0; i < b.nk; i++ {
			dst[i] = w.coeff[i] * complex(inv, 0)
		}
		if b.padded() && b.n%2 == 0 {
			dst[nyq] = complex(2*real(w.coeff[nyq])*inv, 0)
		}

		return nil
	})
}

func (b *R2C) evaluate(op string, in, out *ndarray.Array, axis int, mode Mode, dealias bool) error {
	if err := checkToPhysical(b, op, in, out, axis); err != nil {
		return err
	}
	cut := b.nk
	if dealias {
		cut = b.dealiasCut()
	}
	if mode == Direct {
		if b.padded() {
			return configErrorf(b.Name(), "%s: direct path requires padding factor 1, have %g", op, b.padding)
		}

		return ndarray.MapLines(in, out, axis, func(src, dst []complex128) error {
			for j := range dst {
				dst[j] = complex(b.sumHermitian(cdenseRow(b.vand.v, j), src, cut), 0)
			}

			return nil
		})
	}

	w := b.pool.Get().(*r2cWork)
	defer b.pool.Put(w)
	nyq := b.n / 2

	return ndarray.MapLines(in, out, axis, func(src, dst []complex128) error {
		for i := range w.coeff {
			w.coeff[i] = 0
		}
		copy(w.coeff[:cut], src[:cut])
		if b.padded() && b.n%2 == 0 {
			w.coeff[nyq] = complex(0.5*real(src[nyq]), 0)
		}
		w.coeff[0] = complex(real(w.coeff[0]), 0)
		if b.m%2 == 0 {
			w.coeff[b.m/2] = complex(real(w.coeff[b.m/2]), 0)
		}
		w.fft.Sequence(w.seq, w.coeff)
		for j, v := range w.seq {
			dst[j] = complex(v, 0)
		}

		return nil
	})
}

// sumHermitian returns Re Σ_k row_k c_k over the stored half spectrum plus the
// implicit conjugate modes: every mode except 0 and the even-N Nyquist mode counts twice.
func (b *R2C) sumHermitian(row, c []complex128, cut int) float64 {
	inner := b.nk
	if b.n%2 == 0 {
		inner = b.nk - 1
	}
	var s float64
	for k := 0; k < cut && k < b.nk; k++ {
		v := real(row[k] * c[k])
		if k > 0 && k < inner {
			v *= 2
		}
		s += v
	}

	return s
}

// Eval evaluates the real expansion at arbitrary domain points.
func (b *R2C) Eval(x []float64, coeffs []complex128) ([]complex128, error) {
	if len(coeffs) != b.nk {
		return nil, fmt.Errorf("R2C.Eval: %d coefficients, want %d: %w", len(coeffs), b.nk, ErrShapeMismatch)
	}
	k := b.Wavenumbers(false, false)
	out := make([]complex128, len(x))
	row := make([]complex128, b.nk)
	for j, xj := range b.reference(x) {
		for i, ki := range k {
			row[i] = expi(ki * xj)
		}
		out[j] = complex(b.sumHermitian(row, coeffs, b.nk), 0)
	}

	return out, nil
}

func expi(theta float64) complex128 {
	s, c := math.Sincos(theta)

	return complex(c, s)
}
