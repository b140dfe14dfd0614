// SPDX-License-Identifier: MIT

package quadrature

import "errors"

var (
	// ErrBadOrder indicates a node count the rule cannot produce (e.g. n < 2 for Lobatto).
	ErrBadOrder = errors.New("quadrature: invalid number of nodes")

	// ErrNoConvergence indicates that Newton iteration for node placement did not
	// converge within the iteration budget. Callers may retry with a larger budget.
	ErrNoConvergence = errors.New("quadrature: node iteration did not converge")
)
