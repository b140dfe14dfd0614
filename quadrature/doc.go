// SPDX-License-Identifier: MIT

// Package quadrature supplies 1D quadrature nodes and weights for spectral bases.
//
// A Rule returns n points and weights on the reference interval; bases map them
// onto their own domain. Provided rules:
//
//   - Equispaced:    x_j = 2πj/n on [0, 2π), w_j = 2π/n (Fourier).
//   - GaussLegendre: zeros of L_n on [-1, 1] (gonum integrate/quad).
//   - GaussLobatto:  ±1 plus the zeros of L'_{n-1}, by Newton iteration with a
//     fixed iteration budget; failure surfaces ErrNoConvergence.
//
// The package also evaluates Legendre polynomials and their first two
// derivatives by the three-term recurrence.
package quadrature
