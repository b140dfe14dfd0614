// SPDX-License-Identifier: MIT

package space

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/spectral/basis"
	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/pencil"
	"github.com/katalvlaran/spectral/telemetry"
)

// Source supplies Dirichlet data for one end of the Dirichlet axis.
// Implementations: Constant, FromArray, FromExpression.
type Source interface {
	// check validates the source against the local boundary slab shape.
	check(slab []int) error
	// fill evaluates the source into slab; mesh[i] holds the local
	// coordinates of axis i, a single end point on the Dirichlet axis.
	fill(slab *ndarray.Array, mesh [][]float64, params map[string]float64) error
	// isZero reports data known to vanish identically.
	isZero() bool
}

// Constant is a uniform boundary value.
type Constant float64

func (Constant) check([]int) error { return nil }

func (c Constant) fill(slab *ndarray.Array, _ [][]float64, _ map[string]float64) error {
	data := slab.Data()
	for i := range data {
		data[i] = complex(float64(c), 0)
	}

	return nil
}

func (c Constant) isZero() bool { return c == 0 }

// Expression is boundary data given as a function of the physical
// coordinates (one per axis) and named parameters such as time.
type Expression interface {
	Eval(x []float64, params map[string]float64) float64
}

// ExprFunc adapts a plain function to Expression.
type ExprFunc func(x []float64, params map[string]float64) float64

// Eval calls f.
func (f ExprFunc) Eval(x []float64, params map[string]float64) float64 { return f(x, params) }

type exprSource struct{ e Expression }

// FromExpression evaluates e on the boundary mesh each time the boundary
// state is recomputed.
func FromExpression(e Expression) Source {
	if e == nil {
		panic(panicDataNil)
	}

	return exprSource{e: e}
}

func (exprSource) check([]int) error { return nil }

func (s exprSource) fill(slab *ndarray.Array, mesh [][]float64, params map[string]float64) error {
	shape := slab.Shape()
	idx := make([]int, len(shape))
	x := make([]float64, len(shape))
	data := slab.Data()
	for f := range data {
		for i := range idx {
			x[i] = mesh[i][idx[i]]
		}
		data[f] = complex(s.e.Eval(x, params), 0)
		for i := len(idx) - 1; i >= 0; i-- {
			if idx[i]++; idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}

	return nil
}

func (exprSource) isZero() bool { return false }

type arraySource struct{ a *ndarray.Array }

// FromArray uses precomputed values. a must have this rank's local physical
// shape with extent 1 along the Dirichlet axis; it is copied.
func FromArray(a *ndarray.Array) Source {
	if a == nil {
		panic(panicDataNil)
	}

	return arraySource{a: a.Clone()}
}

func (s arraySource) check(slab []int) error {
	if !sameInts(s.a.Shape(), slab) {
		return fmt.Errorf("boundary array %v, want local slab %v: %w", s.a, slab, ErrStructuralMismatch)
	}

	return nil
}

func (s arraySource) fill(slab *ndarray.Array, _ [][]float64, _ map[string]float64) error {
	return slab.CopyFrom(s.a)
}

func (arraySource) isZero() bool { return false }

// BoundaryValues holds the spectral image of the Dirichlet data of one axis.
//
// raw is taken right after the Dirichlet stage, in that stage's output layout
// (the Dirichlet axis is local there); final is taken after the whole chain,
// in the spectral layout, and replicated along the Dirichlet axis so every
// rank holding boundary rows can inject it. With no trailing stages raw and
// final coincide.
//
// The Dirichlet axis itself is never transformed: its two boundary modes are
// one at their own end point and zero at the other, while every other mode
// vanishes at both, so the physical values are the coefficients.
type BoundaryValues struct {
	chain  *chain
	grid   *pencil.Subcomm
	bases  []basis.Basis
	dtype  ndarray.Dtype
	axis   int
	stage  int
	modes  [2]int
	edges  [2]float64
	src    [2]Source
	params map[string]float64

	raw, final [2]*ndarray.Array
	nonzero    bool

	observer telemetry.Observer
	log      *zap.Logger
}

// DefaultScales are the ApplyBefore weights of the boundary sum and difference.
var DefaultScales = [2]float64{0.5, 0.5}

func newBoundaryValues(ch *chain, grid *pencil.Subcomm, bases []basis.Basis, dtype ndarray.Dtype, axis int,
	src [2]Source, obs telemetry.Observer, log *zap.Logger) (*BoundaryValues, error) {
	bb := bases[axis].(basis.BoundaryBasis)
	bv := &BoundaryValues{
		chain:    ch,
		grid:     grid,
		bases:    bases,
		dtype:    dtype,
		axis:     axis,
		stage:    ch.index(axis),
		src:      src,
		params:   map[string]float64{},
		observer: obs,
		log:      log,
	}
	bv.modes[0], bv.modes[1] = bb.BoundaryModes()
	lo, hi := bb.BoundaryPoints()
	x := bases[axis].Points(true)
	bv.edges = [2]float64{x[lo], x[hi]}
	if err := bv.agree(bv.checkSources(src)); err != nil {
		return nil, err
	}
	if err := bv.recompute(); err != nil {
		return nil, err
	}

	return bv, nil
}

// Axis returns the Dirichlet axis.
func (bv *BoundaryValues) Axis() int { return bv.axis }

// Trailing returns the number of stages that run after the Dirichlet stage.
func (bv *BoundaryValues) Trailing() int { return bv.chain.stageCount() - 1 - bv.stage }

// HasNonhomogeneous reports whether either end carries data other than Constant(0).
func (bv *BoundaryValues) HasNonhomogeneous() bool { return bv.nonzero }

// Raw returns copies of the two boundary slabs after the Dirichlet stage.
func (bv *BoundaryValues) Raw() [2]*ndarray.Array {
	return [2]*ndarray.Array{bv.raw[0].Clone(), bv.raw[1].Clone()}
}

// Final returns copies of the two boundary slabs after the full chain.
func (bv *BoundaryValues) Final() [2]*ndarray.Array {
	return [2]*ndarray.Array{bv.final[0].Clone(), bv.final[1].Clone()}
}

// UpdateBoundary re-evaluates the sources with new parameters (for example
// time) and recomputes the boundary state. Collective.
func (bv *BoundaryValues) UpdateBoundary(params map[string]float64) error {
	p := make(map[string]float64, len(params))
	for k, v := range params {
		p[k] = v
	}
	bv.params = p

	return bv.recompute()
}

// SetBoundary replaces both sources and recomputes the boundary state. The
// previous sources stay in place on error. Collective.
func (bv *BoundaryValues) SetBoundary(left, right Source) error {
	if left == nil || right == nil {
		return fmt.Errorf("SetBoundary: nil source: %w", ErrConfiguration)
	}
	src := [2]Source{left, right}
	if err := bv.agree(bv.checkSources(src)); err != nil {
		return err
	}
	old := bv.src
	bv.src = src
	if err := bv.recompute(); err != nil {
		bv.src = old

		return err
	}

	return nil
}

// ApplyBefore adds scales[0]*(b0+b1) to row 0 and scales[1]*(b0-b1) to row 1
// along the Dirichlet axis of u, using the final (or raw) boundary state. u
// must be in the spectral (or Dirichlet stage output) local layout.
func (bv *BoundaryValues) ApplyBefore(u *ndarray.Array, final bool, scales [2]float64) error {
	p, bc := bv.layout(final)
	if err := bv.checkTarget("ApplyBefore", u, p); err != nil {
		return err
	}
	start, count := p.Substart()[bv.axis], p.Subshape()[bv.axis]
	for row, s := range scales {
		if row < start || row >= start+count {
			continue
		}
		sign := complex(s, 0)
		if err := u.AddScaled(bv.axis, row-start, bc[0], sign, false); err != nil {
			return err
		}
		if row == 1 {
			sign = -sign
		}
		if err := u.AddScaled(bv.axis, row-start, bc[1], sign, false); err != nil {
			return err
		}
	}

	return nil
}

// ApplyAfter overwrites the two boundary modes of u with the final (or raw)
// boundary state, wherever u holds them.
func (bv *BoundaryValues) ApplyAfter(u *ndarray.Array, final bool) error {
	p, bc := bv.layout(final)
	if err := bv.checkTarget("ApplyAfter", u, p); err != nil {
		return err
	}
	start, count := p.Substart()[bv.axis], p.Subshape()[bv.axis]
	for j, row := range bv.modes {
		if row < start || row >= start+count {
			continue
		}
		if err := u.Put(bv.axis, row-start, bc[j]); err != nil {
			return err
		}
	}

	return nil
}

func (bv *BoundaryValues) layout(final bool) (*pencil.Pencil, [2]*ndarray.Array) {
	if final {
		st := bv.chain.stageAt(bv.chain.stageCount() - 1)

		return st.outPencil, bv.final
	}

	return bv.chain.stageAt(bv.stage).outPencil, bv.raw
}

func (bv *BoundaryValues) checkTarget(op string, u *ndarray.Array, p *pencil.Pencil) error {
	if u == nil || !sameInts(u.Shape(), p.Subshape()) {
		return fmt.Errorf("%s: array %v, want local shape %v: %w", op, u, p.Subshape(), ErrStructuralMismatch)
	}

	return nil
}

func slabOf(shape []int, axis int) []int {
	out := append([]int(nil), shape...)
	out[axis] = 1

	return out
}

func (bv *BoundaryValues) checkSources(src [2]Source) error {
	slab := slabOf(bv.chain.stageAt(0).inPencil.Subshape(), bv.axis)
	for i, s := range src {
		if err := s.check(slab); err != nil {
			return fmt.Errorf("boundary source %d: %w", i, err)
		}
	}

	return nil
}

// agree makes a local validation failure visible to every rank of the grid
// before any rank starts a transpose. It reduces one flag per grid axis.
func (bv *BoundaryValues) agree(local error) error {
	failed := local != nil
	for i := 0; i < bv.grid.Len(); i++ {
		flags, err := bv.grid.Comm(i).Allgather([]complex128{boolFlag(failed)})
		if err != nil {
			return err
		}
		for _, f := range flags {
			failed = failed || real(f[0]) != 0
		}
	}
	if local != nil {
		return local
	}
	if failed {
		return fmt.Errorf("boundary source rejected on another rank: %w", ErrStructuralMismatch)
	}

	return nil
}

func boolFlag(b bool) complex128 {
	if b {
		return 1
	}

	return 0
}

// recompute rebuilds raw and final from the current sources. Collective.
func (bv *BoundaryValues) recompute() error {
	last := bv.chain.stageAt(bv.chain.stageCount() - 1)
	dir := bv.chain.stageAt(bv.stage)
	rawShape := slabOf(dir.outPencil.Subshape(), bv.axis)
	finalShape := slabOf(last.outPencil.Subshape(), bv.axis)

	bv.nonzero = !bv.src[0].isZero() || !bv.src[1].isZero()
	if !bv.nonzero {
		for j := range bv.raw {
			bv.raw[j] = ndarray.Zeros(rawShape, dir.outDtype)
			bv.final[j] = ndarray.Zeros(finalShape, last.outDtype)
		}
		bv.log.Debug("boundary values homogeneous", zap.Int("axis", bv.axis))

		return nil
	}

	scratch, err := bv.physical()
	if err != nil {
		return err
	}
	spec := ndarray.Zeros(last.outPencil.Subshape(), last.outDtype)
	var raw [2]*ndarray.Array
	err = bv.chain.run("boundary", scratch, spec, func(st *stage, in, out *ndarray.Array) error {
		if st.axis == bv.axis {
			return out.CopyFrom(in)
		}

		return st.basis.Forward(in, out, st.axis, basis.Fast)
	}, func(i int, out *ndarray.Array) error {
		if i != bv.stage {
			return nil
		}
		for j, row := range bv.modes {
			var err error
			if raw[j], err = out.Take(bv.axis, row); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}
	var final [2]*ndarray.Array
	for j := range final {
		if final[j], err = bv.replicate(spec, last.outPencil, bv.modes[j], finalShape); err != nil {
			return err
		}
	}
	bv.raw, bv.final = raw, final
	if bv.leader() {
		bv.observer.ObserveBoundaryRecompute()
	}
	bv.log.Debug("boundary values recomputed",
		zap.Int("axis", bv.axis),
		zap.Int("trailing", bv.Trailing()),
		zap.Float64("rawMax", maxAbs(raw)),
		zap.Float64("finalMax", maxAbs(final)))

	return nil
}

// leader reports whether this rank sits at the origin of the process grid.
// Collective events are recorded once per grid, on the leader.
func (bv *BoundaryValues) leader() bool {
	for _, c := range bv.grid.Coords() {
		if c != 0 {
			return false
		}
	}

	return true
}

// physical returns a physical-layout array holding the source values in the
// two boundary rows of the Dirichlet axis and zeros elsewhere.
func (bv *BoundaryValues) physical() (*ndarray.Array, error) {
	p := bv.chain.stageAt(0).inPencil
	shape, start := p.Subshape(), p.Substart()
	out := ndarray.Zeros(shape, bv.dtype)
	mesh := make([][]float64, len(bv.bases))
	for i, b := range bv.bases {
		mesh[i] = b.Points(true)[start[i] : start[i]+shape[i]]
	}
	lo, count := start[bv.axis], shape[bv.axis]
	for j, row := range bv.modes {
		if row < lo || row >= lo+count {
			continue
		}
		mesh[bv.axis] = []float64{bv.edges[j]}
		slab := ndarray.Zeros(slabOf(shape, bv.axis), bv.dtype)
		if err := bv.src[j].fill(slab, mesh, bv.params); err != nil {
			return nil, fmt.Errorf("boundary source %d: %w", j, err)
		}
		if err := out.Put(bv.axis, row-lo, slab); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// replicate shares the slab at global index row of spec (held by one rank
// along the Dirichlet axis) with every rank of that axis.
func (bv *BoundaryValues) replicate(spec *ndarray.Array, p *pencil.Pencil, row int, shape []int) (*ndarray.Array, error) {
	lo, count := p.Substart()[bv.axis], p.Subshape()[bv.axis]
	var mine []complex128
	if row >= lo && row < lo+count {
		slab, err := spec.Take(bv.axis, row-lo)
		if err != nil {
			return nil, err
		}
		mine = slab.Data()
	}
	parts, err := p.Comm(bv.axis).Allgather(mine)
	if err != nil {
		return nil, fmt.Errorf("boundary: replicate mode %d: %w", row, err)
	}
	out := ndarray.Zeros(shape, spec.Dtype())
	for _, part := range parts {
		if len(part) > 0 {
			copy(out.Data(), part)

			break
		}
	}

	return out, nil
}

func maxAbs(a [2]*ndarray.Array) float64 {
	m := a[0].MaxAbs()
	if v := a[1].MaxAbs(); v > m {
		return v
	}

	return m
}
