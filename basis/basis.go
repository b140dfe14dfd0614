// SPDX-License-Identifier: MIT

package basis

import (
	"fmt"

	"github.com/katalvlaran/spectral/ndarray"
)

// Family is the closed set of basis families.
type Family int

const (
	// PeriodicComplex is the complex-to-complex Fourier family.
	PeriodicComplex Family = iota
	// PeriodicReal is the real-to-complex Fourier family (Hermitian half spectrum).
	PeriodicReal
	// NonPeriodic covers the Legendre-type families on Gauss-type nodes.
	NonPeriodic
)

// String returns a short identifier used in logs and metric labels.
func (f Family) String() string {
	switch f {
	case PeriodicComplex:
		return "C2C"
	case PeriodicReal:
		return "R2C"
	case NonPeriodic:
		return "nonperiodic"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Mode selects the evaluation path of a transform.
type Mode int

const (
	// Fast uses FFTs (Fourier) or precomputed dense matrices (Legendre families).
	Fast Mode = iota
	// Direct evaluates the quadrature sums against the basis functions.
	Direct
)

// String returns "fast" or "direct".
func (m Mode) String() string {
	if m == Direct {
		return "direct"
	}

	return "fast"
}

// Basis is the per-axis transform contract. Implementations are immutable
// and safe for concurrent use.
//
// All transforms act along axis of in/out; every other axis must agree in
// extent. Physical extent along axis is PhysicalN, spectral extent SpectralN.
type Basis interface {
	// Family reports which family the basis belongs to.
	Family() Family

	// Name is a short label such as "R2C", "C2C", "LG" or "Dirichlet".
	Name() string

	// N is the number of modes (quadrature points when unpadded).
	N() int

	// PhysicalN is floor(N * padding factor).
	PhysicalN() int

	// SpectralN is the stored number of coefficients (N/2+1 for R2C, N otherwise).
	SpectralN() int

	// PaddingFactor is the dealiasing padding factor (1 when unpadded).
	PaddingFactor() float64

	// Domain returns the physical interval [a, b].
	Domain() (a, b float64)

	// SpectralDtype returns the dtype produced by Forward for physical input of dtype d.
	SpectralDtype(d ndarray.Dtype) ndarray.Dtype

	// Forward computes the expansion coefficients of the physical samples in.
	Forward(in, out *ndarray.Array, axis int, mode Mode) error

	// Backward applies padding/dealiasing and evaluates the expansion on the grid.
	Backward(in, out *ndarray.Array, axis int, mode Mode) error

	// ScalarProduct computes the quadrature inner products (u, φ_k).
	ScalarProduct(in, out *ndarray.Array, axis int, mode Mode) error

	// EvaluateExpansionAll evaluates Σ c_k φ_k at every physical point
	// without any dealiasing truncation.
	EvaluateExpansionAll(in, out *ndarray.Array, axis int) error

	// ApplyInverseMass multiplies spectral data in place by M⁻¹ along axis.
	ApplyInverseMass(arr *ndarray.Array, axis int) error

	// Wavenumbers returns the per-mode index k (len SpectralN). When scaled,
	// Fourier wavenumbers are multiplied by 2π/(b−a). When eliminateHighest,
	// the Nyquist mode of an even-length Fourier basis is set to 0.
	Wavenumbers(scaled, eliminateHighest bool) []float64

	// Points returns the PhysicalN grid points, mapped to [a, b] when scaled.
	Points(scaled bool) []float64

	// Weights returns the quadrature weights on the reference interval.
	Weights() []float64

	// Eval evaluates the expansion with coefficients coeffs (len SpectralN) at x (domain coordinates).
	Eval(x []float64, coeffs []complex128) ([]complex128, error)
}

// BoundaryBasis is implemented by non-periodic bases that carry prescribed
// boundary values in two dedicated coefficient slots.
type BoundaryBasis interface {
	Basis

	// BoundaryModes returns the coefficient indices of the boundary functions
	// attached to the left (x = a) and right (x = b) end.
	BoundaryModes() (left, right int)

	// BoundaryPoints returns the physical grid indices of the domain end points.
	BoundaryPoints() (left, right int)
}

// checkTransform validates axis, batch extents and the extents along axis.
func checkTransform(b Basis, op string, in, out *ndarray.Array, axis, inN, outN int) error {
	if in == nil || out == nil {
		return fmt.Errorf("%s.%s: %w", b.Name(), op, ndarray.ErrNilArray)
	}
	if err := ndarray.CheckBatch(in, out, axis); err != nil {
		return shapeErrorf(b.Name(), op, axis, in, out, fmt.Errorf("%w: %w", ErrShapeMismatch, err))
	}
	if in.Dim(axis) != inN || out.Dim(axis) != outN {
		return shapeErrorf(b.Name(), op, axis, in, out,
			fmt.Errorf("%w: want %d -> %d along axis", ErrShapeMismatch, inN, outN))
	}

	return nil
}

// checkToSpectral validates a physical → spectral transform.
func checkToSpectral(b Basis, op string, in, out *ndarray.Array, axis int) error {
	if err := checkTransform(b, op, in, out, axis, b.PhysicalN(), b.SpectralN()); err != nil {
		return err
	}
	if b.Family() == PeriodicReal && in.Dtype() != ndarray.Float64 {
		return shapeErrorf(b.Name(), op, axis, in, out, fmt.Errorf("%w: real input required", ErrDtypeMismatch))
	}
	if want := b.SpectralDtype(in.Dtype()); out.Dtype() != want {
		return shapeErrorf(b.Name(), op, axis, in, out, fmt.Errorf("%w: output must be %v", ErrDtypeMismatch, want))
	}

	return nil
}

// checkToPhysical validates a spectral → physical transform. A Float64 output
// receives the real part of the evaluation.
func checkToPhysical(b Basis, op string, in, out *ndarray.Array, axis int) error {
	if err := checkTransform(b, op, in, out, axis, b.SpectralN(), b.PhysicalN()); err != nil {
		return err
	}
	if b.Family() == PeriodicReal && out.Dtype() != ndarray.Float64 {
		return shapeErrorf(b.Name(), op, axis, in, out, fmt.Errorf("%w: real output required", ErrDtypeMismatch))
	}

	return nil
}

// checkInPlace validates an in-place spectral operation.
func checkInPlace(b Basis, op string, arr *ndarray.Array, axis int) error {
	if arr == nil {
		return fmt.Errorf("%s.%s: %w", b.Name(), op, ndarray.ErrNilArray)
	}
	if axis < 0 || axis >= arr.NDim() || arr.Dim(axis) != b.SpectralN() {
		return shapeErrorf(b.Name(), op, axis, arr, arr, fmt.Errorf("%w: want %d along axis", ErrShapeMismatch, b.SpectralN()))
	}

	return nil
}

// mapDomain maps reference points r on [ra, rb] to [a, b].
func mapDomain(r []float64, ra, rb, a, b float64) []float64 {
	out := make([]float64, len(r))
	s := (b - a) / (rb - ra)
	for i, v := range r {
		out[i] = a + (v-ra)*s
	}

	return out
}
