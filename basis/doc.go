// SPDX-License-Identifier: MIT

// Package basis implements the per-axis spectral transform contract.
//
// A Basis describes one axis of a tensor-product space: its quadrature grid,
// the number of retained spectral modes, and four transforms that act along a
// single axis of an N-d array (all other axes are batch dimensions):
//
//	Forward        physical → spectral   (M⁻¹ · scalar product)
//	Backward       spectral → physical   (padding/dealiasing + evaluation)
//	ScalarProduct  physical → spectral   (quadrature inner product)
//	EvaluateExpansionAll  spectral → physical (plain evaluation)
//
// Every transform runs either through a Fast path (FFT for Fourier, a
// precomputed dense matrix for Legendre families) or a Direct path that
// evaluates the quadrature sums against a Vandermonde-type matrix. Both paths
// agree to rounding error.
//
// Families (closed set, see Family):
//
//	PeriodicComplex  C2C  exp(ikx), complex data, N modes stored.
//	PeriodicReal     R2C  exp(ikx), real data, N/2+1 modes stored.
//	NonPeriodic      Legendre L_k on Gauss nodes, or the Dirichlet basis
//	                 {L_k − L_{k+2}} ∪ {(1−x)/2, (1+x)/2} on Gauss-Lobatto nodes.
//
// Bases are immutable after construction and safe for concurrent use by
// several ranks; FFT work buffers come from per-basis sync.Pools.
package basis
