// SPDX-License-Identifier: MIT

package pencil

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/spectral/comm"
	"github.com/katalvlaran/spectral/ndarray"
)

// Transfer redistributes a global array between two pencils that differ
// only in their free axis. It owns no data.
type Transfer struct {
	comm      comm.Comm
	shape     []int
	axisA     int
	axisB     int
	subshapeA []int
	subshapeB []int
}

// Transfer builds the plan from p (axis A free) to q (axis B free). q must be
// p.Pencil(B) or an equivalent layout over the same global shape.
func (p *Pencil) Transfer(q *Pencil) (*Transfer, error) {
	if q == nil || len(q.shape) != len(p.shape) {
		return nil, fmt.Errorf("Pencil.Transfer: incompatible target: %w", ErrConfiguration)
	}
	for i := range p.shape {
		if p.shape[i] != q.shape[i] {
			return nil, fmt.Errorf("Pencil.Transfer: global shapes %v and %v differ on axis %d: %w", p.shape, q.shape, i, ErrConfiguration)
		}
	}
	if p.axis == q.axis {
		return nil, fmt.Errorf("Pencil.Transfer: both pencils free on axis %d: %w", p.axis, ErrConfiguration)
	}
	c := p.comms[q.axis]
	if q.comms[p.axis] != c {
		return nil, fmt.Errorf("Pencil.Transfer: axis %d of target is not distributed like axis %d of source: %w", p.axis, q.axis, ErrConfiguration)
	}
	t := &Transfer{
		comm:      c,
		shape:     p.Shape(),
		axisA:     p.axis,
		axisB:     q.axis,
		subshapeA: p.Subshape(),
		subshapeB: q.Subshape(),
	}
	Logger().Debug("transfer planned",
		zap.Ints("shape", t.shape),
		zap.Int("axisA", t.axisA),
		zap.Int("axisB", t.axisB),
		zap.Ints("subshapeA", t.subshapeA),
		zap.Ints("subshapeB", t.subshapeB),
		zap.Int("peers", c.Size()))

	return t, nil
}

// SubshapeA returns the local shape of the source layout.
func (t *Transfer) SubshapeA() []int { return append([]int(nil), t.subshapeA...) }

// SubshapeB returns the local shape of the target layout.
func (t *Transfer) SubshapeB() []int { return append([]int(nil), t.subshapeB...) }

// Peers returns the number of ranks exchanging data.
func (t *Transfer) Peers() int { return t.comm.Size() }

// Forward moves a (source layout) into b (target layout). Collective.
func (t *Transfer) Forward(a, b *ndarray.Array) error {
	return t.move("Forward", a, b, t.axisA, t.axisB, t.subshapeA, t.subshapeB)
}

// Backward moves b (target layout) into a (source layout). Collective.
func (t *Transfer) Backward(b, a *ndarray.Array) error {
	return t.move("Backward", b, a, t.axisB, t.axisA, t.subshapeB, t.subshapeA)
}

// move sends, for every peer p, the block of src whose axis `from` lies in
// p's share, and places the block received from p at p's share of axis `to`.
func (t *Transfer) move(op string, src, dst *ndarray.Array, from, to int, shapeSrc, shapeDst []int) error {
	if err := checkLocal(op, "source", src, shapeSrc); err != nil {
		return err
	}
	if err := checkLocal(op, "target", dst, shapeDst); err != nil {
		return err
	}
	if src.Dtype() != dst.Dtype() {
		return fmt.Errorf("Transfer.%s: dtype %v -> %v: %w", op, src.Dtype(), dst.Dtype(), ErrShapeMismatch)
	}
	peers := t.comm.Size()
	start := make([]int, len(shapeSrc))
	extent := append([]int(nil), shapeSrc...)
	send := make([][]complex128, peers)
	for p := 0; p < peers; p++ {
		extent[from], start[from] = Decompose(t.shape[from], peers, p)
		buf, err := src.Pack(start, extent, make([]complex128, 0, ndarray.Prod(extent)))
		if err != nil {
			return fmt.Errorf("Transfer.%s: pack for peer %d: %w", op, p, err)
		}
		send[p] = buf
	}
	recv, err := t.comm.Alltoallv(send)
	if err != nil {
		return fmt.Errorf("Transfer.%s: %w", op, err)
	}
	start = make([]int, len(shapeDst))
	extent = append([]int(nil), shapeDst...)
	for p := 0; p < peers; p++ {
		extent[to], start[to] = Decompose(t.shape[to], peers, p)
		if err = dst.Unpack(start, extent, recv[p]); err != nil {
			return fmt.Errorf("Transfer.%s: unpack from peer %d: %w: %w", op, p, ErrShapeMismatch, err)
		}
	}

	return nil
}

func checkLocal(op, role string, a *ndarray.Array, want []int) error {
	if a == nil {
		return fmt.Errorf("Transfer.%s: %s: %w", op, role, ndarray.ErrNilArray)
	}
	got := a.Shape()
	if len(got) != len(want) {
		return fmt.Errorf("Transfer.%s: %s shape %v, want %v: %w", op, role, got, want, ErrShapeMismatch)
	}
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("Transfer.%s: %s shape %v, want %v (axis %d): %w", op, role, got, want, i, ErrShapeMismatch)
		}
	}

	return nil
}
