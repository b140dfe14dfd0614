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

// C2C is the complex-to-complex Fourier basis; all N modes are stored in
// fftfreq order (0, 1, …, -2, -1).
type C2C struct {
	fourierCore
	vand *vandermonde // nil when padded
	pool sync.Pool    // *c2cWork
}

type c2cWork struct {
	fft   *fourier.CmplxFFT
	coeff []complex128
}

// Compile-time assertion.
var _ Basis = (*C2C)(nil)

// NewC2C builds a complex-to-complex Fourier basis with n modes.
func NewC2C(n int, opts ...Option) (*C2C, error) {
	core, err := newFourierCore("C2C", n, opts)
	if err != nil {
		return nil, err
	}
	b := &C2C{fourierCore: core}
	m := core.m
	b.pool.New = func() any {
		return &c2cWork{fft: fourier.NewCmplxFFT(m), coeff: make([]complex128, m)}
	}
	if !core.padded() {
		b.vand = core.vandermonde(b.Wavenumbers(false, false))
	}

	return b, nil
}

func (b *C2C) Family() Family { return PeriodicComplex }
func (b *C2C) Name() string { return "C2C" }
func (b *C2C) SpectralN() int { return b.n }
func (b *C2C) SpectralDtype(ndarray.Dtype) ndarray.Dtype { return ndarray.Complex128 }

// Wavenumbers returns the fftfreq ordering scaled by N.
func (b *C2C) Wavenumbers(scaled, eliminateHighest bool) []float64 {
	return b.finishWavenumbers(b.fullWavenumbers(), scaled, eliminateHighest)
}

// Forward returns fft(u)/M truncated to N modes.
func (b *C2C) Forward(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.project("Forward", in, out, axis, mode, 1)
}

// ScalarProduct returns 2π · Forward.
func (b *C2C) ScalarProduct(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.project("ScalarProduct", in, out, axis, mode, 2*math.Pi)
}

// Backward evaluates the expansion, honouring padding or the 2/3-rule.
func (b *C2C) Backward(in, out *ndarray.Array, axis int, mode Mode) error {
	return b.evaluate("Backward", in, out, axis, mode, b.dealias)
}

// EvaluateExpansionAll evaluates every stored coefficient on the physical grid.
func (b *C2C) EvaluateExpansionAll(in, out *ndarray.Array, axis int) error {
	return b.evaluate("EvaluateExpansionAll", in, out, axis, Fast, false)
}

// ApplyInverseMass multiplies by 1/(2π).
func (b *C2C) ApplyInverseMass(arr *ndarray.Array, axis int) error {
	if err := checkInPlace(b, "ApplyInverseMass", arr, axis); err != nil {
		return err
	}
	arr.Scale(complex(1/(2*math.Pi), 0))

	return nil
}

// split returns the number of non-negative modes (0..pos-1) and negative modes.
func (b *C2C) split() (pos, neg int) { return (b.n + 1) / 2, b.n / 2 }

func (b *C2C) project(op string, in, out *ndarray.Array, axis int, mode Mode, scale float64) error {
	if err := checkToSpectral(b, op, in, out, axis); err != nil {
		return err
	}
	if mode == Direct {
		if b.padded() {
			return configErrorf(b.Name(), "%s: direct path requires padding factor 1, have %g", op, b.padding)
		}
		inv := complex(scale/float64(b.n), 0)

		return ndarray.MapLines(in, out, axis, func(src, dst []complex128) error {
			for i := range dst {
				dst[i] = cmplxs.Dot(cdenseRow(b.vand.proj, i), src) * inv
			}

			return nil
		})
	}

	w := b.pool.Get().(*c2cWork)
	defer b.pool.Put(w)
	inv := complex(scale/float64(b.m), 0)
	pos, neg := b.split()

	return ndarray.MapLines(in, out, axis, func(src, dst []complex128) error {
		w.fft.Coefficients(w.coeff, src)
		if !b.padded() {
			for i, v := range w.coeff {
				dst[i] = v * inv
			}

			return nil
		}
		for i := 0; i < pos; i++ {
			dst[i] = w.coeff[i] * inv
		}
		for i := 0; i < neg; i++ {
			dst[b.n-neg+i] = w.coeff[b.m-neg+i] * inv
		}
		if b.n%2 == 0 {
			// fold +N/2 onto the stored -N/2 slot
			dst[b.n/2] += w.coeff[b.n/2] * inv
		}

		return nil
	})
}

func (b *C2C) evaluate(op string, in, out *ndarray.Array, axis int, mode Mode, dealias bool) error {
	if err := checkToPhysical(b, op, in, out, axis); err != nil {
		return err
	}
	lo, hi := b.n, b.n
	if dealias {
		lo, hi = b.n/3, 2*b.n/3
	}
	if mode == Direct {
		if b.padded() {
			return configErrorf(b.Name(), "%s: direct path requires padding factor 1, have %g", op, b.padding)
		}

		coef := make([]complex128, b.n)

		return ndarray.MapLines(in, out, axis, func(src, dst []complex128) error {
			copy(coef, src)
			for i := lo; i < hi; i++ {
				coef[i] = 0
			}
			for j := range dst {
				dst[j] = cmplxs.Dot(cdenseRow(b.vand.eval, j), coef)
			}

			return nil
		})
	}

	w := b.pool.Get().(*c2cWork)
	defer b.pool.Put(w)
	pos, neg := b.split()

	return ndarray.MapLines(in, out, axis, func(src, dst []complex128) error {
		if !b.padded() {
			copy(w.coeff, src)
			for i := lo; i < hi; i++ {
				w.coeff[i] = 0
			}
			w.fft.Sequence(dst, w.coeff)

			return nil
		}
		for i := range w.coeff {
			w.coeff[i] = 0
		}
		copy(w.coeff[:pos], src[:pos])
		copy(w.coeff[b.m-neg:], src[b.n-neg:])
		if b.n%2 == 0 {
			half := 0.5 * src[b.n/2]
			w.coeff[b.n/2] = half
			w.coeff[b.m-b.n/2] = half
		}
		w.fft.Sequence(dst, w.coeff)

		return nil
	})
}

// Eval evaluates Σ c_k exp(i k x) at arbitrary domain points.
func (b *C2C) Eval(x []float64, coeffs []complex128) ([]complex128, error) {
	if len(coeffs) != b.n {
		return nil, fmt.Errorf("C2C.Eval: %d coefficients, want %d: %w", len(coeffs), b.n, ErrShapeMismatch)
	}
	k := b.Wavenumbers(false, false)
	out := make([]complex128, len(x))
	for j, xj := range b.reference(x) {
		var s complex128
		for i, ki := range k {
			s += coeffs[i] * expi(ki*xj)
		}
		out[j] = s
	}

	return out, nil
}
