// SPDX-License-Identifier: MIT

package comm

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Comm is one rank's view of an ordered process group.
// Rank/Size are local queries; every other method is collective.
type Comm interface {
	// Rank is this process' index in the group, 0..Size()-1.
	Rank() int

	// Size is the number of ranks in the group.
	Size() int

	// Alltoallv sends send[r] to rank r and returns recv, where recv[r] is the
	// buffer rank r addressed to this rank. Buffers may differ in length
	// (including nil). Collective.
	Alltoallv(send [][]complex128) ([][]complex128, error)

	// Allgather returns every rank's data, indexed by rank. Collective.
	Allgather(data []complex128) ([][]complex128, error)

	// Barrier returns once every rank has entered it. Collective.
	Barrier() error

	// Split partitions the group by color; ranks inside each new group are
	// ordered by (key, old rank). Collective.
	Split(color, key int) (Comm, error)

	// Free releases the handle; later calls fail with ErrFreed.
	Free() error
}

// mailboxDepth bounds the in-flight messages per ordered pair of ranks.
// Collectives keep at most two outstanding per pair.
const mailboxDepth = 8

type boxKey struct {
	ctx      string
	src, dst int // world ranks
}

// world holds the mailboxes shared by every rank started together.
type world struct {
	size  int
	mu    sync.Mutex
	boxes map[boxKey]chan []complex128
}

func newWorld(size int) *world {
	return &world{size: size, boxes: make(map[boxKey]chan []complex128)}
}

// box returns the mailbox for (ctx, src, dst), creating it on first use.
func (w *world) box(ctx string, src, dst int) chan []complex128 {
	w.mu.Lock()
	defer w.mu.Unlock()
	k := boxKey{ctx: ctx, src: src, dst: dst}
	ch, ok := w.boxes[k]
	if !ok {
		ch = make(chan []complex128, mailboxDepth)
		w.boxes[k] = ch
	}

	return ch
}

// group is the Comm implementation.
type group struct {
	w       *world
	ctx     string
	rank    int
	members []int // world rank of each group rank
	splits  int
	freed   bool
}

// Compile-time assertion.
var _ Comm = (*group)(nil)

// NewGroup creates size connected handles, one per rank. Each handle must be
// driven by its own goroutine; Run does that for you.
func NewGroup(size int) ([]Comm, error) {
	if size < 1 {
		return nil, fmt.Errorf("NewGroup(%d): %w", size, ErrBadSize)
	}
	w := newWorld(size)
	members := make([]int, size)
	for i := range members {
		members[i] = i
	}
	out := make([]Comm, size)
	for r := range out {
		out[r] = &group{w: w, ctx: "world", rank: r, members: members}
	}

	return out, nil
}

// Self returns a single-rank group.
func Self() Comm {
	g, _ := NewGroup(1)

	return g[0]
}

func (g *group) Rank() int { return g.rank }
func (g *group) Size() int { return len(g.members) }

func (g *group) check(op string) error {
	if g.freed {
		return fmt.Errorf("%s(rank %d, ctx %s): %w", op, g.rank, g.ctx, ErrFreed)
	}

	return nil
}

func (g *group) Alltoallv(send [][]complex128) ([][]complex128, error) {
	if err := g.check("Alltoallv"); err != nil {
		return nil, err
	}
	if len(send) != len(g.members) {
		return nil, fmt.Errorf("Alltoallv(rank %d): %d buffers for %d ranks: %w", g.rank, len(send), len(g.members), ErrBufferCount)
	}

	return g.exchange(send), nil
}

// exchange posts every outgoing buffer, then drains one message from each peer.
func (g *group) exchange(send [][]complex128) [][]complex128 {
	me := g.members[g.rank]
	for r, dst := range g.members {
		if r == g.rank {
			continue
		}
		g.w.box(g.ctx, me, dst) <- send[r]
	}
	recv := make([][]complex128, len(g.members))
	for r, src := range g.members {
		if r == g.rank {
			recv[r] = append([]complex128(nil), send[r]...)
			continue
		}
		recv[r] = <-g.w.box(g.ctx, src, me)
	}

	return recv
}

func (g *group) Allgather(data []complex128) ([][]complex128, error) {
	if err := g.check("Allgather"); err != nil {
		return nil, err
	}
	send := make([][]complex128, len(g.members))
	for r := range send {
		send[r] = data
	}
	recv := g.exchange(send)
	for r := range recv {
		if r != g.rank {
			recv[r] = append([]complex128(nil), recv[r]...)
		}
	}

	return recv, nil
}

func (g *group) Barrier() error {
	if err := g.check("Barrier"); err != nil {
		return err
	}
	g.exchange(make([][]complex128, len(g.members)))

	return nil
}

func (g *group) Split(color, key int) (Comm, error) {
	if err := g.check("Split"); err != nil {
		return nil, err
	}
	all, err := g.Allgather([]complex128{complex(float64(color), float64(key))})
	if err != nil {
		return nil, err
	}
	type entry struct{ key, old int }
	var peers []entry
	for r, v := range all {
		if int(real(v[0])) == color {
			peers = append(peers, entry{key: int(imag(v[0])), old: r})
		}
	}
	sort.Slice(peers, func(i, j int) bool {
		if peers[i].key != peers[j].key {
			return peers[i].key < peers[j].key
		}

		return peers[i].old < peers[j].old
	})
	sub := &group{
		w:       g.w,
		ctx:     g.ctx + "/" + strconv.Itoa(g.splits) + ":" + strconv.Itoa(color),
		members: make([]int, len(peers)),
	}
	for i, p := range peers {
		sub.members[i] = g.members[p.old]
		if p.old == g.rank {
			sub.rank = i
		}
	}
	g.splits++
	Logger().Debug("comm split",
		zap.String("parent", g.ctx),
		zap.String("ctx", sub.ctx),
		zap.Int("rank", sub.rank),
		zap.Int("size", len(sub.members)))

	return sub, nil
}

func (g *group) Free() error {
	if err := g.check("Free"); err != nil {
		return err
	}
	g.freed = true

	return nil
}
