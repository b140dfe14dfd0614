// SPDX-License-Identifier: MIT

package pencil

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/katalvlaran/spectral/comm"
)

// Subcomm is a Cartesian process grid over a parent communicator, holding
// one sub-communicator per array axis. Ranks are laid out row-major.
type Subcomm struct {
	comms  []comm.Comm
	dims   []int
	coords []int
}

// NewSubcomm factorizes parent.Size() over len(dims) axes (zero entries are
// free, see comm.Dims) and splits parent once per axis. Collective over parent.
func NewSubcomm(parent comm.Comm, dims []int) (*Subcomm, error) {
	if parent == nil || len(dims) == 0 {
		return nil, fmt.Errorf("NewSubcomm: nil communicator or empty dims: %w", ErrConfiguration)
	}
	full, err := comm.Dims(parent.Size(), dims)
	if err != nil {
		return nil, fmt.Errorf("NewSubcomm(size %d, dims %v): %w: %w", parent.Size(), dims, ErrConfiguration, err)
	}
	s := &Subcomm{dims: full, coords: coordsOf(parent.Rank(), full)}
	s.comms = make([]comm.Comm, len(full))
	for axis := range full {
		sub, err := parent.Split(s.color(axis), s.coords[axis])
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("NewSubcomm: split axis %d: %w", axis, err), s.Destroy())
		}
		s.comms[axis] = sub
	}
	Logger().Debug("subcomm created",
		zap.Int("rank", parent.Rank()),
		zap.Ints("dims", full),
		zap.Ints("coords", s.coords))

	return s, nil
}

// coordsOf converts a row-major linear rank into grid coordinates.
func coordsOf(rank int, dims []int) []int {
	c := make([]int, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		c[i] = rank % dims[i]
		rank /= dims[i]
	}

	return c
}

// color linearizes the coordinates of every axis except axis.
func (s *Subcomm) color(axis int) int {
	color := 0
	for i, d := range s.dims {
		if i == axis {
			continue
		}
		color = color*d + s.coords[i]
	}

	return color
}

// Len returns the number of axes.
func (s *Subcomm) Len() int { return len(s.comms) }

// Comm returns the sub-communicator of axis.
func (s *Subcomm) Comm(axis int) comm.Comm { return s.comms[axis] }

// Dims returns the process-grid extents.
func (s *Subcomm) Dims() []int { return append([]int(nil), s.dims...) }

// Coords returns this rank's grid coordinates.
func (s *Subcomm) Coords() []int { return append([]int(nil), s.coords...) }

// Destroy frees every sub-communicator. Collective.
func (s *Subcomm) Destroy() error {
	var err error
	for _, c := range s.comms {
		if c != nil {
			err = multierr.Append(err, c.Free())
		}
	}

	return err
}
