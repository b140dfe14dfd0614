package space_test

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"testing"

	"github.com/katalvlaran/spectral/basis"
	"github.com/katalvlaran/spectral/comm"
	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/space"
	"github.com/katalvlaran/spectral/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type liftCase struct {
	name     string
	dir      int
	trailing int
	sizes    []int
	build    func() ([]basis.Basis, error)
}

func liftCases() []liftCase {
	return []liftCase{
		{name: "Trailing0", dir: 0, trailing: 0, sizes: []int{1, 2}, build: func() ([]basis.Basis, error) {
			d, err := basis.NewDirichlet(8)
			if err != nil {
				return nil, err
			}
			r, err := basis.NewR2C(6)

			return []basis.Basis{d, r}, err
		}},
		{name: "Trailing1", dir: 1, trailing: 1, sizes: []int{1, 2}, build: func() ([]basis.Basis, error) {
			c, err := basis.NewC2C(6)
			if err != nil {
				return nil, err
			}
			d, err := basis.NewDirichlet(8)

			return []basis.Basis{c, d}, err
		}},
		{name: "Trailing2", dir: 2, trailing: 2, sizes: []int{1, 2, 4}, build: func() ([]basis.Basis, error) {
			c0, err := basis.NewC2C(4)
			if err != nil {
				return nil, err
			}
			c1, err := basis.NewC2C(6)
			if err != nil {
				return nil, err
			}
			d, err := basis.NewDirichlet(8)

			return []basis.Basis{c0, c1, d}, err
		}},
	}
}

// boundaryField is a smooth function whose values differ between the two ends.
func boundaryField(dir int) space.ExprFunc {
	return func(x []float64, p map[string]float64) float64 {
		s := 1.0
		for i, xi := range x {
			if i != dir {
				s += 0.25 * math.Sin(float64(i+1)*xi)
			}
		}

		return (1.5+0.5*x[dir])*s + p["t"]
	}
}

// slabOf evaluates f on this rank's physical boundary slab at coordinate edge.
func slabOf(s *space.TensorProductSpace, dir int, edge float64, f space.ExprFunc) *ndarray.Array {
	shape := s.LocalShape(false)
	shape[dir] = 1
	out := ndarray.Zeros(shape, s.Dtype())
	mesh := s.LocalMesh()
	mesh[dir] = []float64{edge}
	sl := make([]space.Slice, len(shape))
	for i, n := range shape {
		sl[i] = space.Slice{Stop: n}
	}
	x := make([]float64, len(shape))
	forEachLocal(sl, func(local, _ []int) {
		for i := range x {
			x[i] = mesh[i][local[i]]
		}
		_ = out.Set(complex(f(x, nil), 0), local...)
	})

	return out
}

// checkBoundaryRows compares the physical rows 0 and N-1 along dir with want.
func checkBoundaryRows(s *space.TensorProductSpace, u *ndarray.Array, dir int, want func(end int, x []float64) float64) error {
	mesh := s.Mesh()
	last := s.Shape()[dir] - 1
	x := make([]float64, len(mesh))
	var worst float64
	forEachLocal(s.LocalSlice(false), func(local, global []int) {
		end := -1
		switch global[dir] {
		case 0:
			end = 0
		case last:
			end = 1
		}
		if end < 0 {
			return
		}
		for i := range x {
			x[i] = mesh[i][global[i]]
		}
		got, _ := u.At(local...)
		worst = math.Max(worst, cmplx.Abs(got-complex(want(end, x), 0)))
	})
	if worst > tol {
		return fmt.Errorf("boundary rows deviate by %g", worst)
	}

	return nil
}

// TestBoundaryLifting injects constant, array and expression data through
// chains with 0, 1 and 2 trailing stages and recovers it after Backward.
func TestBoundaryLifting(t *testing.T) {
	for _, tc := range liftCases() {
		for _, kind := range []string{"constant", "array", "expression"} {
			for _, size := range tc.sizes {
				t.Run(fmt.Sprintf("%s/%s/size=%d", tc.name, kind, size), func(t *testing.T) {
					err := comm.Run(size, func(c comm.Comm) error {
						return runLift(c, tc, kind)
					})
					require.NoError(t, err)
				})
			}
		}
	}
}

func runLift(c comm.Comm, tc liftCase, kind string) error {
	bases, err := tc.build()
	if err != nil {
		return err
	}
	var opts []space.Option
	if kind == "constant" {
		opts = append(opts, space.WithBoundary(space.Constant(2), space.Constant(-3)))
	}
	s, err := space.NewTensorProductSpace(c, bases, opts...)
	if err != nil {
		return err
	}
	defer s.Destroy()

	bv := s.Boundary()
	if bv == nil {
		return fmt.Errorf("no boundary lifter for Dirichlet axis %d", tc.dir)
	}
	if bv.Axis() != tc.dir || bv.Trailing() != tc.trailing {
		return fmt.Errorf("lifter on axis %d with %d trailing stages, want %d and %d", bv.Axis(), bv.Trailing(), tc.dir, tc.trailing)
	}
	field := boundaryField(tc.dir)
	want := func(end int, x []float64) float64 { return []float64{2, -3}[end] }
	switch kind {
	case "array":
		left, right := slabOf(s, tc.dir, -1, field), slabOf(s, tc.dir, 1, field)
		if err = bv.SetBoundary(space.FromArray(left), space.FromArray(right)); err != nil {
			return err
		}
		if tc.trailing > 0 {
			// the Dirichlet axis is transformed first, so raw holds the physical slab
			if d, _ := ndarray.MaxAbsDiff(bv.Raw()[0], left); d > tol {
				return fmt.Errorf("raw left slab deviates by %g", d)
			}
		}
		want = func(_ int, x []float64) float64 { return field(x, nil) }
	case "expression":
		src := space.FromExpression(field)
		if err = bv.SetBoundary(src, src); err != nil {
			return err
		}
		want = func(_ int, x []float64) float64 { return field(x, nil) }
	}
	if !bv.HasNonhomogeneous() {
		return fmt.Errorf("HasNonhomogeneous() = false for %s data", kind)
	}
	if tc.trailing == 0 {
		raw, final := bv.Raw(), bv.Final()
		for j := range raw {
			if d, _ := ndarray.MaxAbsDiff(raw[j], final[j]); d != 0 {
				return fmt.Errorf("raw and final differ by %g without trailing stages", d)
			}
		}
	}

	if err = backwardBoundary(s, want); err != nil {
		return err
	}
	if err = checkApplyBefore(s); err != nil {
		return err
	}
	if kind != "expression" {
		return nil
	}
	if err = bv.UpdateBoundary(map[string]float64{"t": 0.5}); err != nil {
		return err
	}

	return backwardBoundary(s, func(_ int, x []float64) float64 {
		return field(x, map[string]float64{"t": 0.5})
	})
}

// backwardBoundary lifts the final state into a zero field and checks the
// physical boundary rows after Backward.
func backwardBoundary(s *space.TensorProductSpace, want func(end int, x []float64) float64) error {
	u := s.NewSpectral()
	if err := s.Boundary().ApplyAfter(u, true); err != nil {
		return err
	}
	phys := s.NewPhysical()
	if err := s.Backward(u, phys, basis.Fast); err != nil {
		return err
	}

	return checkBoundaryRows(s, phys, s.Boundary().Axis(), want)
}

// checkApplyBefore verifies rows 0 and 1 against the replicated final state.
func checkApplyBefore(s *space.TensorProductSpace) error {
	bv := s.Boundary()
	dir := bv.Axis()
	u := s.NewSpectral()
	if err := bv.ApplyBefore(u, true, space.DefaultScales); err != nil {
		return err
	}
	fin := bv.Final()
	f0, f1 := fin[0].Data(), fin[1].Data()
	sl := s.LocalSlice(true)[dir]
	for row, sign := range []complex128{1, -1} {
		if row < sl.Start || row >= sl.Stop {
			continue
		}
		got, err := u.Take(dir, row-sl.Start)
		if err != nil {
			return err
		}
		for i, v := range got.Data() {
			if d := cmplx.Abs(v - 0.5*(f0[i]+sign*f1[i])); d > tol {
				return fmt.Errorf("ApplyBefore row %d deviates by %g", row, d)
			}
		}
	}

	return nil
}

// TestBoundaryHomogeneous checks the zero short-circuit and its metrics.
func TestBoundaryHomogeneous(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := telemetry.NewPrometheus(reg)
	c4, err := basis.NewC2C(4)
	require.NoError(t, err)
	d6, err := basis.NewDirichlet(6)
	require.NoError(t, err)

	s, err := space.NewTensorProductSpace(comm.Self(), []basis.Basis{c4, d6}, space.WithObserver(obs))
	require.NoError(t, err)
	bv := s.Boundary()
	require.NotNil(t, bv)
	require.False(t, bv.HasNonhomogeneous())
	raw, final := bv.Raw(), bv.Final()
	for _, a := range []*ndarray.Array{raw[0], raw[1], final[0], final[1]} {
		require.Zero(t, a.MaxAbs())
	}
	u := s.NewSpectral()
	require.NoError(t, bv.ApplyAfter(u, true))
	require.NoError(t, bv.ApplyBefore(u, false, space.DefaultScales))
	require.Zero(t, u.MaxAbs())

	const metric = `
# HELP spectral_boundary_recompute_total Boundary lifter recomputations
# TYPE spectral_boundary_recompute_total counter
spectral_boundary_recompute_total %d
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(fmt.Sprintf(metric, 0)), "spectral_boundary_recompute_total"))

	require.NoError(t, bv.SetBoundary(space.Constant(1), space.Constant(0)))
	require.True(t, bv.HasNonhomogeneous())
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(fmt.Sprintf(metric, 1)), "spectral_boundary_recompute_total"))

	require.NoError(t, bv.SetBoundary(space.Constant(0), space.Constant(0)))
	require.False(t, bv.HasNonhomogeneous())
	require.Zero(t, bv.Final()[0].MaxAbs())
	require.NoError(t, s.Destroy())
}

// TestBoundaryRecomputeCountedOnce shares one observer between four ranks;
// a collective recompute is counted once.
func TestBoundaryRecomputeCountedOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := telemetry.NewPrometheus(reg)
	err := comm.Run(4, func(c comm.Comm) error {
		bases := make([]basis.Basis, 3)
		var err error
		if bases[0], err = basis.NewC2C(4); err != nil {
			return err
		}
		if bases[1], err = basis.NewC2C(4); err != nil {
			return err
		}
		if bases[2], err = basis.NewDirichlet(8); err != nil {
			return err
		}
		s, err := space.NewTensorProductSpace(c, bases, space.WithObserver(obs),
			space.WithBoundary(space.Constant(1), space.Constant(2)))
		if err != nil {
			return err
		}
		defer s.Destroy()

		return s.Boundary().UpdateBoundary(map[string]float64{"t": 1})
	})
	require.NoError(t, err)
	const metric = `
# HELP spectral_boundary_recompute_total Boundary lifter recomputations
# TYPE spectral_boundary_recompute_total counter
spectral_boundary_recompute_total 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(metric), "spectral_boundary_recompute_total"))
}

// TestBoundaryApply checks the injection formulas on a single Dirichlet axis.
func TestBoundaryApply(t *testing.T) {
	d, err := basis.NewDirichlet(8)
	require.NoError(t, err)
	s, err := space.NewTensorProductSpace(comm.Self(), []basis.Basis{d},
		space.WithBoundary(space.Constant(2), space.Constant(5)))
	require.NoError(t, err)
	bv := s.Boundary()
	require.Equal(t, 0, bv.Trailing())

	at := func(u *ndarray.Array, i int) float64 {
		v, err := u.At(i)
		require.NoError(t, err)

		return real(v)
	}

	u := s.NewSpectral()
	require.NoError(t, bv.ApplyBefore(u, false, space.DefaultScales))
	require.InDelta(t, 3.5, at(u, 0), tol)
	require.InDelta(t, -1.5, at(u, 1), tol)
	require.NoError(t, bv.ApplyBefore(u, true, [2]float64{1, 2}))
	require.InDelta(t, 10.5, at(u, 0), tol)
	require.InDelta(t, -7.5, at(u, 1), tol)

	require.NoError(t, bv.ApplyAfter(u, false))
	require.InDelta(t, 2, at(u, 6), tol)
	require.InDelta(t, 5, at(u, 7), tol)

	phys := s.NewPhysical()
	require.NoError(t, s.Backward(u, phys, basis.Fast))
	require.InDelta(t, 2, at(phys, 0), tol)
	require.InDelta(t, 5, at(phys, 7), tol)

	require.ErrorIs(t, bv.ApplyAfter(ndarray.Zeros([]int{7}, ndarray.Float64), true), space.ErrStructuralMismatch)
	require.ErrorIs(t, bv.ApplyBefore(nil, true, space.DefaultScales), space.ErrStructuralMismatch)

	bad := space.FromArray(ndarray.Zeros([]int{3}, ndarray.Float64))
	require.ErrorIs(t, bv.SetBoundary(bad, space.Constant(0)), space.ErrStructuralMismatch)
	require.ErrorIs(t, bv.SetBoundary(nil, space.Constant(0)), space.ErrConfiguration)
	require.True(t, bv.HasNonhomogeneous())
	require.InDelta(t, 2, at(bv.Final()[0], 0), tol)
	require.NoError(t, s.Destroy())
}
