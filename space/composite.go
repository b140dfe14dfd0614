// SPDX-License-Identifier: MIT

package space

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/katalvlaran/spectral/basis"
	"github.com/katalvlaran/spectral/ndarray"
)

// Mixed is an ordered collection of scalar spaces sharing one global
// physical shape; its functions have one component per space.
type Mixed struct {
	spaces []*TensorProductSpace
	rank   int
}

// NewMixed groups spaces. It fails with ErrConfiguration when spaces is empty,
// holds nil, or the global shapes differ.
func NewMixed(spaces ...*TensorProductSpace) (*Mixed, error) {
	if len(spaces) == 0 {
		return nil, fmt.Errorf("NewMixed: no spaces: %w", ErrConfiguration)
	}
	for i, s := range spaces {
		if s == nil {
			return nil, fmt.Errorf("NewMixed: space %d is nil: %w", i, ErrConfiguration)
		}
		if !sameInts(s.Shape(), spaces[0].Shape()) {
			return nil, fmt.Errorf("NewMixed: space %d has shape %v, space 0 %v: %w", i, s.Shape(), spaces[0].Shape(), ErrConfiguration)
		}
	}

	return &Mixed{spaces: append([]*TensorProductSpace(nil), spaces...), rank: 2}, nil
}

// NewVector builds the vector space of one component per axis. The number of
// spaces must equal their dimension.
func NewVector(spaces ...*TensorProductSpace) (*Mixed, error) {
	m, err := NewMixed(spaces...)
	if err != nil {
		return nil, err
	}
	if nd := spaces[0].NDim(); nd != len(spaces) {
		return nil, fmt.Errorf("NewVector: %d components in %d dimensions: %w", len(spaces), nd, ErrConfiguration)
	}

	return m, nil
}

// NumComponents returns the number of component spaces.
func (m *Mixed) NumComponents() int { return len(m.spaces) }

// Rank is 2: one index for the component, one for the data.
func (m *Mixed) Rank() int { return m.rank }

// NDim returns the dimension of the component spaces.
func (m *Mixed) NDim() int { return m.spaces[0].NDim() }

// Space returns component i.
func (m *Mixed) Space(i int) *TensorProductSpace { return m.spaces[i] }

// Shape returns the shared global physical shape.
func (m *Mixed) Shape() []int { return m.spaces[0].Shape() }

// NewPhysical allocates one zeroed physical array per component.
func (m *Mixed) NewPhysical() []*ndarray.Array {
	out := make([]*ndarray.Array, len(m.spaces))
	for i, s := range m.spaces {
		out[i] = s.NewPhysical()
	}

	return out
}

// NewSpectral allocates one zeroed spectral array per component.
func (m *Mixed) NewSpectral() []*ndarray.Array {
	out := make([]*ndarray.Array, len(m.spaces))
	for i, s := range m.spaces {
		out[i] = s.NewSpectral()
	}

	return out
}

// IsForwardOutput reports whether every component is a forward output of its space.
func (m *Mixed) IsForwardOutput(u []*ndarray.Array) bool {
	if len(u) != len(m.spaces) {
		return false
	}
	for i, s := range m.spaces {
		if !s.IsForwardOutput(u[i]) {
			return false
		}
	}

	return true
}

// Forward transforms every component. Collective.
func (m *Mixed) Forward(in, out []*ndarray.Array, mode basis.Mode) error {
	return m.each("Forward", in, out, func(s *TensorProductSpace, a, b *ndarray.Array) error {
		return s.Forward(a, b, mode)
	})
}

// Backward transforms every component. Collective.
func (m *Mixed) Backward(in, out []*ndarray.Array, mode basis.Mode) error {
	return m.each("Backward", in, out, func(s *TensorProductSpace, a, b *ndarray.Array) error {
		return s.Backward(a, b, mode)
	})
}

// ScalarProduct projects every component. Collective.
func (m *Mixed) ScalarProduct(in, out []*ndarray.Array, mode basis.Mode) error {
	return m.each("ScalarProduct", in, out, func(s *TensorProductSpace, a, b *ndarray.Array) error {
		return s.ScalarProduct(a, b, mode)
	})
}

func (m *Mixed) each(op string, in, out []*ndarray.Array, fn func(s *TensorProductSpace, a, b *ndarray.Array) error) error {
	if len(in) != len(m.spaces) || len(out) != len(m.spaces) {
		return fmt.Errorf("%s: %d inputs and %d outputs for %d components: %w", op, len(in), len(out), len(m.spaces), ErrStructuralMismatch)
	}
	for i, s := range m.spaces {
		if err := fn(s, in[i], out[i]); err != nil {
			return fmt.Errorf("%s: component %d: %w", op, i, err)
		}
	}

	return nil
}

// Destroy destroys every component space. Collective.
func (m *Mixed) Destroy() error {
	var err error
	for _, s := range m.spaces {
		err = multierr.Append(err, s.Destroy())
	}

	return err
}
