// Package basis_test contains unit tests for the per-axis transform contract.
package basis_test

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/katalvlaran/spectral/basis"
	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/quadrature"
	"github.com/stretchr/testify/require"
)

const tol = 1e-12

// MustR2C and friends fail the test on constructor errors.
func MustR2C(t *testing.T, n int, opts ...basis.Option) *basis.R2C {
	t.Helper()
	b, err := basis.NewR2C(n, opts...)
	require.NoError(t, err)

	return b
}

func MustC2C(t *testing.T, n int, opts ...basis.Option) *basis.C2C {
	t.Helper()
	b, err := basis.NewC2C(n, opts...)
	require.NoError(t, err)

	return b
}

func MustLegendre(t *testing.T, n int, opts ...basis.Option) *basis.Legendre {
	t.Helper()
	b, err := basis.NewLegendre(n, opts...)
	require.NoError(t, err)

	return b
}

func MustDirichlet(t *testing.T, n int, opts ...basis.Option) *basis.Dirichlet {
	t.Helper()
	b, err := basis.NewDirichlet(n, opts...)
	require.NoError(t, err)

	return b
}

// sample fills a 1D array of the basis' physical extent with f(x_j).
func sample(t *testing.T, b basis.Basis, dtype ndarray.Dtype, f func(x float64) complex128) *ndarray.Array {
	t.Helper()
	x := b.Points(true)
	u := ndarray.Zeros([]int{len(x)}, dtype)
	for j, xj := range x {
		require.NoError(t, u.Set(f(xj), j))
	}

	return u
}

// randomArray returns an array of the given shape with uniform entries in [-1, 1).
func randomArray(rng *rand.Rand, shape []int, dtype ndarray.Dtype) *ndarray.Array {
	a := ndarray.Zeros(shape, dtype)
	data := a.Data()
	for i := range data {
		re := 2*rng.Float64() - 1
		if dtype == ndarray.Complex128 {
			data[i] = complex(re, 2*rng.Float64()-1)
		} else {
			data[i] = complex(re, 0)
		}
	}

	return a
}

func requireClose(t *testing.T, want, got *ndarray.Array, atol float64) {
	t.Helper()
	d, err := ndarray.MaxAbsDiff(want, got)
	require.NoError(t, err)
	require.LessOrEqual(t, d, atol, "max |want-got| = %g", d)
}

// TestR2CSinusoidEnergy checks that sin(2x) on 8 points lands on wavenumber 2 only.
func TestR2CSinusoidEnergy(t *testing.T) {
	b := MustR2C(t, 8)
	u := sample(t, b, ndarray.Float64, func(x float64) complex128 { return complex(math.Sin(2*x), 0) })

	for _, mode := range []basis.Mode{basis.Fast, basis.Direct} {
		uh := ndarray.Zeros([]int{5}, ndarray.Complex128)
		require.NoError(t, b.Forward(u, uh, 0, mode), mode.String())
		for k, c := range uh.Data() {
			if k == 2 {
				// sin(2x) = (e^{2ix} - e^{-2ix}) / 2i
				require.InDelta(t, 0, real(c), tol)
				require.InDelta(t, -0.5, imag(c), tol)
				continue
			}
			require.InDelta(t, 0, cmplx.Abs(c), tol, "mode %d (%s)", k, mode)
		}
	}
}

// TestC2CSinusoidEnergy checks the conjugate-symmetric pair ±2 for complex storage.
func TestC2CSinusoidEnergy(t *testing.T) {
	b := MustC2C(t, 8)
	u := sample(t, b, ndarray.Complex128, func(x float64) complex128 { return complex(math.Sin(2*x), 0) })

	for _, mode := range []basis.Mode{basis.Fast, basis.Direct} {
		uh := ndarray.Zeros([]int{8}, ndarray.Complex128)
		require.NoError(t, b.Forward(u, uh, 0, mode))
		for k, c := range uh.Data() {
			switch k {
			case 2:
				require.InDelta(t, -0.5, imag(c), tol)
				require.InDelta(t, 0, real(c), tol)
			case 6: // wavenumber -2
				require.InDelta(t, 0.5, imag(c), tol)
				require.InDelta(t, 0, real(c), tol)
			default:
				require.InDelta(t, 0, cmplx.Abs(c), tol, "mode %d (%s)", k, mode)
			}
		}
	}
}

// TestFastDirectAgreement runs both paths of every transform on 2D batches.
func TestFastDirectAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bases := []struct {
		name  string
		b     basis.Basis
		dtype ndarray.Dtype
	}{
		{"R2C even", MustR2C(t, 12), ndarray.Float64},
		{"R2C odd", MustR2C(t, 9), ndarray.Float64},
		{"C2C even", MustC2C(t, 10), ndarray.Complex128},
		{"C2C odd", MustC2C(t, 7), ndarray.Complex128},
		{"Legendre", MustLegendre(t, 11), ndarray.Complex128},
		{"Dirichlet", MustDirichlet(t, 10), ndarray.Float64},
	}
	for _, tc := range bases {
		for axis := 0; axis < 2; axis++ {
			phys := []int{3, 3}
			spec := []int{3, 3}
			phys[axis] = tc.b.PhysicalN()
			spec[axis] = tc.b.SpectralN()
			sdt := tc.b.SpectralDtype(tc.dtype)
			u := randomArray(rng, phys, tc.dtype)

			fast, direct := ndarray.Zeros(spec, sdt), ndarray.Zeros(spec, sdt)
			require.NoError(t, tc.b.Forward(u, fast, axis, basis.Fast))
			require.NoError(t, tc.b.Forward(u, direct, axis, basis.Direct))
			requireClose(t, fast, direct, 1e-11)

			require.NoError(t, tc.b.ScalarProduct(u, fast, axis, basis.Fast))
			require.NoError(t, tc.b.ScalarProduct(u, direct, axis, basis.Direct))
			requireClose(t, fast, direct, 1e-11)

			// Backward from a valid spectral array (the forward image of u).
			require.NoError(t, tc.b.Forward(u, fast, axis, basis.Fast))
			bf, bd := ndarray.Zeros(phys, tc.dtype), ndarray.Zeros(phys, tc.dtype)
			require.NoError(t, tc.b.Backward(fast, bf, axis, basis.Fast))
			require.NoError(t, tc.b.Backward(fast, bd, axis, basis.Direct))
			requireClose(t, bf, bd, 1e-11)
		}
	}
}

// TestRoundTrip verifies Backward(Forward(u)) == u on unpadded grids.
func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	cases := []struct {
		name  string
		b     basis.Basis
		dtype ndarray.Dtype
	}{
		{"R2C 16", MustR2C(t, 16), ndarray.Float64},
		{"R2C 15", MustR2C(t, 15), ndarray.Float64},
		{"C2C 16", MustC2C(t, 16), ndarray.Complex128},
		{"Legendre", MustLegendre(t, 14), ndarray.Complex128},
		{"Dirichlet", MustDirichlet(t, 14), ndarray.Complex128},
	}
	for _, tc := range cases {
		u := randomArray(rng, []int{4, tc.b.PhysicalN(), 2}, tc.dtype)
		uh := ndarray.Zeros([]int{4, tc.b.SpectralN(), 2}, tc.b.SpectralDtype(tc.dtype))
		back := ndarray.Zeros(u.Shape(), tc.dtype)
		require.NoError(t, tc.b.Forward(u, uh, 1, basis.Fast), tc.name)
		require.NoError(t, tc.b.Backward(uh, back, 1, basis.Fast), tc.name)
		requireClose(t, u, back, 1e-10)
	}
}

// TestPaddingIdempotence verifies Forward(Backward(c)) == c with padding 3/2.
func TestPaddingIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{8, 7} {
		// R2C: c must be a valid half spectrum, so take it from unpadded data.
		plain := MustR2C(t, n)
		padded := MustR2C(t, n, basis.WithPadding(1.5))
		require.Equal(t, int(math.Floor(1.5*float64(n))), padded.PhysicalN())

		u := randomArray(rng, []int{n}, ndarray.Float64)
		c := ndarray.Zeros([]int{n/2 + 1}, ndarray.Complex128)
		require.NoError(t, plain.Forward(u, c, 0, basis.Fast))

		up := ndarray.Zeros([]int{padded.PhysicalN()}, ndarray.Float64)
		require.NoError(t, padded.Backward(c, up, 0, basis.Fast))
		c2 := ndarray.Zeros(c.Shape(), ndarray.Complex128)
		require.NoError(t, padded.Forward(up, c2, 0, basis.Fast))
		requireClose(t, c, c2, 1e-12)

		// The padded grid samples the same function.
		fine := padded.Points(false)
		vals, err := plain.Eval(fine, c.Data())
		require.NoError(t, err)
		for j, v := range vals {
			got, _ := up.At(j)
			require.InDelta(t, real(v), real(got), 1e-12)
		}

		// C2C: any coefficients survive, including a complex Nyquist mode.
		pc := MustC2C(t, n, basis.WithPadding(1.5))
		cc := randomArray(rng, []int{2, n}, ndarray.Complex128)
		upc := ndarray.Zeros([]int{2, pc.PhysicalN()}, ndarray.Complex128)
		require.NoError(t, pc.Backward(cc, upc, 1, basis.Fast))
		cc2 := ndarray.Zeros(cc.Shape(), ndarray.Complex128)
		require.NoError(t, pc.Forward(upc, cc2, 1, basis.Fast))
		requireClose(t, cc, cc2, 1e-12)
	}
}

// TestConfigurationErrors covers invalid constructor combinations.
func TestConfigurationErrors(t *testing.T) {
	_, err := basis.NewR2C(0)
	require.ErrorIs(t, err, basis.ErrConfiguration)

	_, err = basis.NewC2C(8, basis.WithPadding(1.5), basis.WithDealiasDirect())
	require.ErrorIs(t, err, basis.ErrConfiguration)

	_, err = basis.NewLegendre(8, basis.WithPadding(1.5))
	require.ErrorIs(t, err, basis.ErrConfiguration)

	_, err = basis.NewLegendre(8, basis.WithQuadrature(quadrature.Equispaced{}))
	require.ErrorIs(t, err, basis.ErrConfiguration)

	_, err = basis.NewDirichlet(8, basis.WithQuadrature(quadrature.GaussLegendre{}))
	require.ErrorIs(t, err, basis.ErrConfiguration)

	_, err = basis.NewDirichlet(16, basis.WithQuadrature(quadrature.GaussLobatto{MaxIter: 1}))
	require.ErrorIs(t, err, quadrature.ErrNoConvergence)

	require.Panics(t, func() { basis.WithPadding(0.5) })
	require.Panics(t, func() { basis.WithDomain(1, 1) })
	require.Panics(t, func() { basis.WithQuadrature(nil) })

	// Direct paths are undefined on a padded grid.
	b := MustR2C(t, 8, basis.WithPadding(1.5))
	u := ndarray.Zeros([]int{12}, ndarray.Float64)
	uh := ndarray.Zeros([]int{5}, ndarray.Complex128)
	require.ErrorIs(t, b.Forward(u, uh, 0, basis.Direct), basis.ErrConfiguration)
	require.ErrorIs(t, b.Backward(uh, u, 0, basis.Direct), basis.ErrConfiguration)
}

// TestShapeAndDtypeMismatch ensures transforms reject wrong extents and dtypes.
func TestShapeAndDtypeMismatch(t *testing.T) {
	b := MustR2C(t, 8)

	err := b.Forward(ndarray.Zeros([]int{7}, ndarray.Float64), ndarray.Zeros([]int{5}, ndarray.Complex128), 0, basis.Fast)
	require.ErrorIs(t, err, basis.ErrShapeMismatch)

	err = b.Forward(ndarray.Zeros([]int{8, 2}, ndarray.Float64), ndarray.Zeros([]int{5, 3}, ndarray.Complex128), 0, basis.Fast)
	require.ErrorIs(t, err, basis.ErrShapeMismatch)

	err = b.Forward(ndarray.Zeros([]int{8}, ndarray.Complex128), ndarray.Zeros([]int{5}, ndarray.Complex128), 0, basis.Fast)
	require.ErrorIs(t, err, basis.ErrDtypeMismatch)

	err = b.Backward(ndarray.Zeros([]int{5}, ndarray.Complex128), ndarray.Zeros([]int{8}, ndarray.Complex128), 0, basis.Fast)
	require.ErrorIs(t, err, basis.ErrDtypeMismatch)

	err = b.ApplyInverseMass(ndarray.Zeros([]int{8}, ndarray.Complex128), 0)
	require.ErrorIs(t, err, basis.ErrShapeMismatch)
}

// TestWavenumbers checks ordering, Nyquist elimination and domain scaling.
func TestWavenumbers(t *testing.T) {
	r := MustR2C(t, 8)
	require.Equal(t, []float64{0, 1, 2, 3, 4}, r.Wavenumbers(false, false))
	require.Equal(t, []float64{0, 1, 2, 3, 0}, r.Wavenumbers(false, true))

	c := MustC2C(t, 8)
	require.Equal(t, []float64{0, 1, 2, 3, -4, -3, -2, -1}, c.Wavenumbers(false, false))
	require.Equal(t, []float64{0, 1, 2, 3, 0, -3, -2, -1}, c.Wavenumbers(false, true))
	require.Equal(t, []float64{0, 1, 2, 3, -3, -2, -1}, MustC2C(t, 7).Wavenumbers(false, true))

	half := MustR2C(t, 8, basis.WithDomain(0, math.Pi))
	require.InDeltaSlice(t, []float64{0, 2, 4, 6, 8}, half.Wavenumbers(true, false), tol)
	require.InDelta(t, math.Pi/8, half.Points(true)[1], tol)
	require.InDelta(t, 2*math.Pi/8, half.Points(false)[1], tol)
}

// TestDerivativeFactors checks (ik)^d and the odd-order Nyquist rule.
func TestDerivativeFactors(t *testing.T) {
	b := MustR2C(t, 8)

	d1, err := basis.DerivativeFactors(b, 1)
	require.NoError(t, err)
	require.Equal(t, []complex128{0, 1i, 2i, 3i, 0}, d1)

	d2, err := basis.DerivativeFactors(b, 2)
	require.NoError(t, err)
	require.Equal(t, []complex128{0, -1, -4, -9, -16}, d2)

	_, err = basis.DerivativeFactors(MustLegendre(t, 4), 1)
	require.ErrorIs(t, err, basis.ErrConfiguration)
}

// TestDealiasDirect verifies the 2/3-rule truncation in Backward.
func TestDealiasDirect(t *testing.T) {
	const n = 12 // floor(n/3) = 4
	r := MustR2C(t, n, basis.WithDealiasDirect())
	c := ndarray.Zeros([]int{n/2 + 1}, ndarray.Complex128)
	require.NoError(t, c.Set(1, 3))
	require.NoError(t, c.Set(1, 5))

	x := r.Points(false)
	for _, mode := range []basis.Mode{basis.Fast, basis.Direct} {
		u := ndarray.Zeros([]int{n}, ndarray.Float64)
		require.NoError(t, r.Backward(c, u, 0, mode))
		for j, xj := range x {
			got, _ := u.At(j)
			require.InDelta(t, 2*math.Cos(3*xj), real(got), tol)
		}
	}

	// EvaluateExpansionAll keeps every mode.
	u := ndarray.Zeros([]int{n}, ndarray.Float64)
	require.NoError(t, r.EvaluateExpansionAll(c, u, 0))
	for j, xj := range x {
		got, _ := u.At(j)
		require.InDelta(t, 2*math.Cos(3*xj)+2*math.Cos(5*xj), real(got), tol)
	}

	cc := MustC2C(t, n, basis.WithDealiasDirect())
	ch := ndarray.Zeros([]int{n}, ndarray.Complex128)
	require.NoError(t, ch.Set(1, 3)) // kept
	require.NoError(t, ch.Set(1, 4)) // removed
	for _, mode := range []basis.Mode{basis.Fast, basis.Direct} {
		uc := ndarray.Zeros([]int{n}, ndarray.Complex128)
		require.NoError(t, cc.Backward(ch, uc, 0, mode))
		for j, xj := range x {
			got, _ := uc.At(j)
			require.InDelta(t, 0, cmplx.Abs(got-cmplx.Exp(complex(0, 3*xj))), tol, mode.String())
		}
	}
}

// TestFourierEval compares Eval at off-grid points with the sampled function.
func TestFourierEval(t *testing.T) {
	f := func(x float64) float64 { return 1 + math.Cos(3*x) + 0.5*math.Sin(x) }
	b := MustR2C(t, 8, basis.WithDomain(-math.Pi, math.Pi))
	u := sample(t, b, ndarray.Float64, func(x float64) complex128 { return complex(f(x), 0) })
	uh := ndarray.Zeros([]int{5}, ndarray.Complex128)
	require.NoError(t, b.Forward(u, uh, 0, basis.Fast))

	pts := []float64{-3, -0.4, 0.3, 1.7, 2.9}
	vals, err := b.Eval(pts, uh.Data())
	require.NoError(t, err)
	for i, x := range pts {
		require.InDelta(t, f(x), real(vals[i]), tol)
		require.InDelta(t, 0, imag(vals[i]), tol)
	}
}

// TestLegendreProjection checks forward of L_3 and the scalar product of L_2.
func TestLegendreProjection(t *testing.T) {
	b := MustLegendre(t, 6)
	l3 := sample(t, b, ndarray.Float64, func(x float64) complex128 { return complex(quadrature.Legendre(3, x), 0) })
	uh := ndarray.Zeros([]int{6}, ndarray.Float64)
	require.NoError(t, b.Forward(l3, uh, 0, basis.Fast))
	for k, v := range uh.Data() {
		want := 0.0
		if k == 3 {
			want = 1
		}
		require.InDelta(t, want, real(v), tol, "mode %d", k)
	}

	l2 := sample(t, b, ndarray.Float64, func(x float64) complex128 { return complex(quadrature.Legendre(2, x), 0) })
	sp := ndarray.Zeros([]int{6}, ndarray.Float64)
	require.NoError(t, b.ScalarProduct(l2, sp, 0, basis.Fast))
	got, _ := sp.At(2)
	require.InDelta(t, 2.0/5.0, real(got), tol)

	// Forward == M⁻¹ · ScalarProduct.
	require.NoError(t, b.ApplyInverseMass(sp, 0))
	fw := ndarray.Zeros([]int{6}, ndarray.Float64)
	require.NoError(t, b.Forward(l2, fw, 0, basis.Direct))
	requireClose(t, fw, sp, tol)
}

// TestFourierInverseMass checks Forward == ScalarProduct / 2π.
func TestFourierInverseMass(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	b := MustC2C(t, 6)
	u := randomArray(rng, []int{6, 2}, ndarray.Complex128)
	fw, sp := ndarray.Zeros([]int{6, 2}, ndarray.Complex128), ndarray.Zeros([]int{6, 2}, ndarray.Complex128)
	require.NoError(t, b.Forward(u, fw, 0, basis.Fast))
	require.NoError(t, b.ScalarProduct(u, sp, 0, basis.Fast))
	require.NoError(t, b.ApplyInverseMass(sp, 0))
	requireClose(t, fw, sp, tol)
}

// TestDirichletBoundaryModes verifies that the boundary slots carry u(a) and u(b).
func TestDirichletBoundaryModes(t *testing.T) {
	f := func(x float64) float64 { return x*x*x - x + 2 + 0.5*x }
	b := MustDirichlet(t, 9, basis.WithDomain(-1, 3))
	x := b.Points(true)
	require.InDelta(t, -1, x[0], tol)
	require.InDelta(t, 3, x[8], tol)

	u := sample(t, b, ndarray.Float64, func(x float64) complex128 { return complex(f(x), 0) })
	uh := ndarray.Zeros([]int{9}, ndarray.Float64)
	require.NoError(t, b.Forward(u, uh, 0, basis.Fast))

	left, right := b.BoundaryModes()
	require.Equal(t, 7, left)
	require.Equal(t, 8, right)
	lp, rp := b.BoundaryPoints()
	require.Equal(t, 0, lp)
	require.Equal(t, 8, rp)

	cl, _ := uh.At(left)
	cr, _ := uh.At(right)
	require.InDelta(t, f(-1), real(cl), 1e-11)
	require.InDelta(t, f(3), real(cr), 1e-11)

	vals, err := b.Eval([]float64{-0.5, 0.1, 2.2}, uh.Data())
	require.NoError(t, err)
	for i, p := range []float64{-0.5, 0.1, 2.2} {
		require.InDelta(t, f(p), real(vals[i]), 1e-10)
	}
}

// TestFamilyLabels pins the string forms used in logs and metrics.
func TestFamilyLabels(t *testing.T) {
	require.Equal(t, "C2C", basis.PeriodicComplex.String())
	require.Equal(t, "R2C", basis.PeriodicReal.String())
	require.Equal(t, "nonperiodic", basis.NonPeriodic.String())
	require.Equal(t, "fast", basis.Fast.String())
	require.Equal(t, "direct", basis.Direct.String())

	b, err := basis.NewFourier(8, ndarray.Float64)
	require.NoError(t, err)
	require.Equal(t, basis.PeriodicReal, b.Family())
	b, err = basis.NewFourier(8, ndarray.Complex128)
	require.NoError(t, err)
	require.Equal(t, basis.PeriodicComplex, b.Family())
}
