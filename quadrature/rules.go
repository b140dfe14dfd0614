// SPDX-License-Identifier: MIT

package quadrature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
)

// Rule produces n quadrature nodes (ascending) and weights on the rule's reference interval.
type Rule interface {
	// Nodes returns (points, weights) of length n.
	Nodes(n int) (x, w []float64, err error)

	// Interval returns the reference interval of the nodes.
	Interval() (a, b float64)

	// Name is a short identifier used in logs and errors ("LG", "GL", "EQ").
	Name() string
}

// Compile-time assertions.
var (
	_ Rule = Equispaced{}
	_ Rule = GaussLegendre{}
	_ Rule = GaussLobatto{}
)

// Equispaced is the periodic trapezoidal rule on [0, 2π).
type Equispaced struct{}

// Nodes returns x_j = 2πj/n and the constant weight 2π/n.
func (Equispaced) Nodes(n int) ([]float64, []float64, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("Equispaced.Nodes(%d): %w", n, ErrBadOrder)
	}
	x := make([]float64, n)
	if n > 1 {
		floats.Span(x, 0, 2*math.Pi*float64(n-1)/float64(n))
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 2 * math.Pi / float64(n)
	}

	return x, w, nil
}

// Interval returns [0, 2π].
func (Equispaced) Interval() (float64, float64) { return 0, 2 * math.Pi }

// Name returns "EQ".
func (Equispaced) Name() string { return "EQ" }

// GaussLegendre places nodes at the zeros of L_n; exact for degree <= 2n-1.
type GaussLegendre struct{}

// Nodes delegates to gonum's fixed-location Legendre rule.
func (GaussLegendre) Nodes(n int) ([]float64, []float64, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("GaussLegendre.Nodes(%d): %w", n, ErrBadOrder)
	}
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)

	return x, w, nil
}

// Interval returns [-1, 1].
func (GaussLegendre) Interval() (float64, float64) { return -1, 1 }

// Name returns "LG".
func (GaussLegendre) Name() string { return "LG" }

// DefaultLobattoIterations is the Newton iteration budget used when
// GaussLobatto.MaxIter is zero.
const DefaultLobattoIterations = 50

// lobattoTol is the Newton step size accepted as converged.
const lobattoTol = 1e-15

// GaussLobatto includes both end points; exact for degree <= 2n-3.
type GaussLobatto struct {
	// MaxIter bounds the Newton iterations per node (0 selects DefaultLobattoIterations).
	MaxIter int
}

// Nodes returns -1, the n-2 zeros of L'_{n-1}, and 1, with weights
// w_j = 2 / (n(n-1) L_{n-1}(x_j)^2).
//
// Interior nodes start from the Chebyshev-Gauss-Lobatto points and are refined
// by Newton's method on L'_{n-1}; only the lower half is iterated and the
// upper half mirrored, which keeps the nodes exactly symmetric.
func (r GaussLobatto) Nodes(n int) ([]float64, []float64, error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("GaussLobatto.Nodes(%d): %w", n, ErrBadOrder)
	}
	maxIter := r.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultLobattoIterations
	}
	N := n - 1
	x := make([]float64, n)
	x[0], x[N] = -1, 1
	for j := 1; j < n/2; j++ {
		y := -math.Cos(math.Pi * float64(j) / float64(N))
		converged := false
		for it := 0; it < maxIter; it++ {
			_, dp, d2p := LegendreDerivs(N, y)
			dx := dp / d2p
			y -= dx
			if math.Abs(dx) <= lobattoTol {
				converged = true
				break
			}
		}
		if !converged {
			return nil, nil, fmt.Errorf("GaussLobatto.Nodes(%d): node %d after %d iterations: %w", n, j, maxIter, ErrNoConvergence)
		}
		x[j] = y
		x[N-j] = -y
	}
	if n%2 == 1 {
		x[N/2] = 0
	}
	w := make([]float64, n)
	scale := 2 / float64(n*(n-1))
	for j, xj := range x {
		p := Legendre(N, xj)
		w[j] = scale / (p * p)
	}

	return x, w, nil
}

// Interval returns [-1, 1].
func (GaussLobatto) Interval() (float64, float64) { return -1, 1 }

// Name returns "GL".
func (GaussLobatto) Name() string { return "GL" }
