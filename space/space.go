// SPDX-License-Identifier: MIT

package space

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/katalvlaran/spectral/basis"
	"github.com/katalvlaran/spectral/comm"
	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/pencil"
)

// Slice is the half-open global index range [Start, Stop) held locally along one axis.
type Slice struct {
	Start, Stop int
}

// TensorProductSpace is the Cartesian product of one basis per axis,
// distributed over a process grid. Immutable after construction except for
// its BoundaryValues.
type TensorProductSpace struct {
	bases     []basis.Basis
	axes      []int
	dtype     ndarray.Dtype
	grid      *pencil.Subcomm
	ownsGrid  bool
	chain     *chain
	bc        *BoundaryValues
	log       *zap.Logger
	destroyed bool
}

// NewTensorProductSpace builds the space over c. Collective over c.
//
// Errors (all wrap ErrConfiguration):
//   - no bases, a nil basis, or axes that are not a permutation of 0..n-1;
//   - a dtype that contradicts the first-transformed basis (C2C needs complex, R2C real);
//   - a real-to-complex basis that is not transformed first;
//   - more than one Dirichlet axis;
//   - a process grid that does not match c or distributes the first-transformed axis.
func NewTensorProductSpace(c comm.Comm, bases []basis.Basis, opts ...Option) (*TensorProductSpace, error) {
	o := gatherOptions(opts)
	n := len(bases)
	if n == 0 {
		return nil, fmt.Errorf("NewTensorProductSpace: no bases: %w", ErrConfiguration)
	}
	for i, b := range bases {
		if b == nil {
			return nil, fmt.Errorf("NewTensorProductSpace: nil basis on axis %d: %w", i, ErrConfiguration)
		}
	}
	if c == nil && o.grid == nil {
		return nil, fmt.Errorf("NewTensorProductSpace: nil communicator: %w", ErrConfiguration)
	}
	axes, err := normalizeAxes(o.axes, n)
	if err != nil {
		return nil, err
	}
	dtype, err := resolveDtype(bases, axes, o)
	if err != nil {
		return nil, err
	}
	dirichlet := -1
	for i, b := range bases {
		if _, ok := b.(basis.BoundaryBasis); !ok {
			continue
		}
		if dirichlet >= 0 {
			return nil, fmt.Errorf("NewTensorProductSpace: Dirichlet bases on axes %d and %d: %w", dirichlet, i, ErrConfiguration)
		}
		dirichlet = i
	}

	s := &TensorProductSpace{
		bases: append([]basis.Basis(nil), bases...),
		axes:  axes,
		dtype: dtype,
		log:   o.logger,
	}
	if s.grid, s.ownsGrid, err = resolveGrid(c, axes, o); err != nil {
		return nil, err
	}
	if s.chain, err = buildChain(s.grid, s.bases, axes, dtype, o.observer); err != nil {
		return nil, multierr.Append(err, s.releaseGrid())
	}
	if dirichlet >= 0 {
		if s.bc, err = newBoundaryValues(s.chain, s.grid, s.bases, dtype, dirichlet, o.bc, o.observer, o.logger); err != nil {
			return nil, multierr.Append(err, s.releaseGrid())
		}
	}
	s.log.Debug("tensor product space created",
		zap.Ints("shape", s.Shape()),
		zap.Ints("spectralShape", s.SpectralShape()),
		zap.Ints("axes", axes),
		zap.Stringer("dtype", dtype),
		zap.Ints("grid", s.grid.Dims()),
		zap.Ints("localPhysical", s.LocalShape(false)),
		zap.Ints("localSpectral", s.LocalShape(true)),
		zap.Int("dirichletAxis", dirichlet))

	return s, nil
}

// normalizeAxes resolves negative entries and checks for a full permutation.
func normalizeAxes(axes []int, n int) ([]int, error) {
	if axes == nil {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}

		return out, nil
	}
	if len(axes) != n {
		return nil, fmt.Errorf("axes %v: need a permutation of %d axes: %w", axes, n, ErrConfiguration)
	}
	out := make([]int, n)
	seen := make([]bool, n)
	for i, a := range axes {
		if a < 0 {
			a += n
		}
		if a < 0 || a >= n || seen[a] {
			return nil, fmt.Errorf("axes %v: entry %d is out of range or repeated: %w", axes, axes[i], ErrConfiguration)
		}
		seen[a] = true
		out[i] = a
	}

	return out, nil
}

// resolveDtype applies the default dtype rule and validates an explicit choice.
func resolveDtype(bases []basis.Basis, axes []int, o options) (ndarray.Dtype, error) {
	firstAxis := axes[len(axes)-1]
	first := bases[firstAxis].Family()
	for _, a := range axes[:len(axes)-1] {
		if bases[a].Family() == basis.PeriodicReal {
			return 0, fmt.Errorf("real-to-complex basis on axis %d must be transformed first (axes %v): %w", a, axes, ErrConfiguration)
		}
	}
	if !o.dtypeSet {
		if first == basis.PeriodicComplex {
			return ndarray.Complex128, nil
		}

		return ndarray.Float64, nil
	}
	switch {
	case first == basis.PeriodicComplex && o.dtype != ndarray.Complex128:
		return 0, fmt.Errorf("dtype %v with complex-to-complex basis on first axis %d: %w", o.dtype, firstAxis, ErrConfiguration)
	case first == basis.PeriodicReal && o.dtype != ndarray.Float64:
		return 0, fmt.Errorf("dtype %v with real-to-complex basis on first axis %d: %w", o.dtype, firstAxis, ErrConfiguration)
	}

	return o.dtype, nil
}

// resolveGrid returns the caller's grid after validation, or creates one.
func resolveGrid(c comm.Comm, axes []int, o options) (*pencil.Subcomm, bool, error) {
	n := len(axes)
	first := axes[n-1]
	if o.grid != nil {
		if o.slab {
			return nil, false, fmt.Errorf("slab layout with an explicit process grid: %w", ErrConfiguration)
		}
		if o.grid.Len() != n {
			return nil, false, fmt.Errorf("process grid has %d axes, space has %d: %w", o.grid.Len(), n, ErrConfiguration)
		}
		size := 1
		for _, d := range o.grid.Dims() {
			size *= d
		}
		if c != nil && size != c.Size() {
			return nil, false, fmt.Errorf("process grid %v holds %d ranks, communicator %d: %w", o.grid.Dims(), size, c.Size(), ErrConfiguration)
		}
		if d := o.grid.Comm(first).Size(); d != 1 {
			return nil, false, fmt.Errorf("process grid distributes first-transformed axis %d over %d ranks: %w", first, d, ErrConfiguration)
		}

		return o.grid, false, nil
	}
	dims := make([]int, n)
	if o.slab {
		for i := range dims {
			dims[i] = 1
		}
		dims[axes[0]] = c.Size()
	} else {
		dims[first] = 1
	}
	grid, err := pencil.NewSubcomm(c, dims)
	if err != nil {
		return nil, false, fmt.Errorf("process grid %v for %d ranks: %w: %w", dims, c.Size(), ErrConfiguration, err)
	}

	return grid, true, nil
}

func (s *TensorProductSpace) releaseGrid() error {
	if s.ownsGrid && s.grid != nil {
		return s.grid.Destroy()
	}

	return nil
}

// Destroy releases the process grid created by the space. Collective.
func (s *TensorProductSpace) Destroy() error {
	if s.destroyed {
		return ErrDestroyed
	}
	s.destroyed = true
	s.log.Debug("tensor product space destroyed", zap.Ints("shape", s.Shape()))

	return s.releaseGrid()
}

// Forward transforms physical data in into spectral coefficients out. Collective.
func (s *TensorProductSpace) Forward(in, out *ndarray.Array, mode basis.Mode) error {
	if err := s.checkIO("Forward", in, out, false); err != nil {
		return err
	}

	return s.chain.forward("forward", in, out, mode, false)
}

// ScalarProduct projects physical data in onto every basis function. Collective.
func (s *TensorProductSpace) ScalarProduct(in, out *ndarray.Array, mode basis.Mode) error {
	if err := s.checkIO("ScalarProduct", in, out, false); err != nil {
		return err
	}

	return s.chain.forward("scalar_product", in, out, mode, true)
}

// Backward evaluates spectral coefficients in on the physical grid. Collective.
func (s *TensorProductSpace) Backward(in, out *ndarray.Array, mode basis.Mode) error {
	if err := s.checkIO("Backward", in, out, true); err != nil {
		return err
	}

	return s.chain.backward("backward", in, out, mode)
}

// checkIO validates caller buffers against the local layouts.
func (s *TensorProductSpace) checkIO(op string, in, out *ndarray.Array, fromSpectral bool) error {
	if s.destroyed {
		return fmt.Errorf("%s: %w", op, ErrDestroyed)
	}
	if err := s.checkBuffer(op, "input", in, fromSpectral); err != nil {
		return err
	}

	return s.checkBuffer(op, "output", out, !fromSpectral)
}

func (s *TensorProductSpace) checkBuffer(op, role string, a *ndarray.Array, spectral bool) error {
	want, dt := s.LocalShape(spectral), s.dtype
	if spectral {
		dt = s.SpectralDtype()
	}
	if a == nil {
		return fmt.Errorf("%s: nil %s, want %v %v: %w", op, role, want, dt, ErrStructuralMismatch)
	}
	if !sameInts(a.Shape(), want) || a.Dtype() != dt {
		return fmt.Errorf("%s: %s is %v, want local shape %v dtype %v: %w", op, role, a, want, dt, ErrStructuralMismatch)
	}

	return nil
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// Bases returns the per-axis bases.
func (s *TensorProductSpace) Bases() []basis.Basis { return append([]basis.Basis(nil), s.bases...) }

// Basis returns the basis of axis.
func (s *TensorProductSpace) Basis(axis int) basis.Basis { return s.bases[axis] }

// Axes returns the axis order; the last entry is transformed first.
func (s *TensorProductSpace) Axes() []int { return append([]int(nil), s.axes...) }

// Grid returns the process grid.
func (s *TensorProductSpace) Grid() *pencil.Subcomm { return s.grid }

// Boundary returns the boundary lifter, or nil when no axis carries Dirichlet data.
func (s *TensorProductSpace) Boundary() *BoundaryValues { return s.bc }

// Dtype is the physical dtype.
func (s *TensorProductSpace) Dtype() ndarray.Dtype { return s.dtype }

// SpectralDtype is the dtype of forward output.
func (s *TensorProductSpace) SpectralDtype() ndarray.Dtype {
	return s.chain.stages[len(s.chain.stages)-1].outDtype
}

// NDim returns the number of axes.
func (s *TensorProductSpace) NDim() int { return len(s.bases) }

// Rank is the tensor rank of the space's functions (1 for scalar spaces).
func (s *TensorProductSpace) Rank() int { return 1 }

// NumComponents is 1 for a scalar space.
func (s *TensorProductSpace) NumComponents() int { return 1 }

// Shape returns the global physical shape (padded extents included).
func (s *TensorProductSpace) Shape() []int {
	out := make([]int, len(s.bases))
	for i, b := range s.bases {
		out[i] = b.PhysicalN()
	}

	return out
}

// SpectralShape returns the global number of stored coefficients per axis.
func (s *TensorProductSpace) SpectralShape() []int {
	out := make([]int, len(s.bases))
	for i, b := range s.bases {
		out[i] = b.SpectralN()
	}

	return out
}

// layout returns the pencil of the physical or spectral local data.
func (s *TensorProductSpace) layout(spectral bool) *pencil.Pencil {
	if spectral {
		return s.chain.stages[len(s.chain.stages)-1].outPencil
	}

	return s.chain.stages[0].inPencil
}

// LocalShape returns this rank's block shape in spectral or physical space.
func (s *TensorProductSpace) LocalShape(spectral bool) []int { return s.layout(spectral).Subshape() }

// LocalSlice returns this rank's global index ranges in spectral or physical space.
func (s *TensorProductSpace) LocalSlice(spectral bool) []Slice {
	p := s.layout(spectral)
	start, shape := p.Substart(), p.Subshape()
	out := make([]Slice, len(start))
	for i := range out {
		out[i] = Slice{Start: start[i], Stop: start[i] + shape[i]}
	}

	return out
}

// NewPhysical allocates a zeroed array in the local physical layout.
func (s *TensorProductSpace) NewPhysical() *ndarray.Array {
	return ndarray.Zeros(s.LocalShape(false), s.dtype)
}

// NewSpectral allocates a zeroed array in the local spectral layout.
func (s *TensorProductSpace) NewSpectral() *ndarray.Array {
	return ndarray.Zeros(s.LocalShape(true), s.SpectralDtype())
}

// IsForwardOutput reports whether u matches the local spectral shape and dtype.
func (s *TensorProductSpace) IsForwardOutput(u *ndarray.Array) bool {
	return u != nil && sameInts(u.Shape(), s.LocalShape(true)) && u.Dtype() == s.SpectralDtype()
}

// Wavenumbers returns the global wavenumbers of every axis.
func (s *TensorProductSpace) Wavenumbers(scaled, eliminateHighest bool) [][]float64 {
	out := make([][]float64, len(s.bases))
	for i, b := range s.bases {
		out[i] = b.Wavenumbers(scaled, eliminateHighest)
	}

	return out
}

// LocalWavenumbers restricts Wavenumbers to this rank's spectral block.
func (s *TensorProductSpace) LocalWavenumbers(scaled, eliminateHighest bool) [][]float64 {
	k := s.Wavenumbers(scaled, eliminateHighest)
	for i, sl := range s.LocalSlice(true) {
		k[i] = k[i][sl.Start:sl.Stop]
	}

	return k
}

// Mesh returns the physical coordinates of every axis.
func (s *TensorProductSpace) Mesh() [][]float64 {
	out := make([][]float64, len(s.bases))
	for i, b := range s.bases {
		out[i] = b.Points(true)
	}

	return out
}

// LocalMesh restricts Mesh to this rank's physical block.
func (s *TensorProductSpace) LocalMesh() [][]float64 {
	x := s.Mesh()
	for i, sl := range s.LocalSlice(false) {
		x[i] = x[i][sl.Start:sl.Stop]
	}

	return x
}
