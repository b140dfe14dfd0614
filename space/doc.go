// SPDX-License-Identifier: MIT

// Package space composes per-axis bases into distributed tensor-product transforms.
//
// A TensorProductSpace owns one basis per axis, a process grid and the chain
// of pencils that makes each axis local in turn. Forward visits the axes in
// reverse order of the axes option (the last listed axis is transformed
// first, on data whose physical layout keeps that axis local), transposing
// between stages; Backward runs the chain in reverse.
//
//	physical ──T(axes[n-1])──▶ transpose ──T(axes[n-2])──▶ … ──T(axes[0])──▶ spectral
//
// The physical dtype defaults to complex when the first-transformed basis is
// complex-to-complex and real otherwise; a real-to-complex basis promotes to
// complex and must therefore be transformed first.
//
// A space with a Dirichlet axis owns BoundaryValues, which projects the
// prescribed boundary data through the same stages so that it can be injected
// before (ApplyBefore) or after (ApplyAfter) the full transform.
//
// Mixed and Vector spaces fan Forward/Backward/ScalarProduct out over several
// component spaces.
//
// Concurrency: every transform, constructor and Destroy is collective over
// the space's communicator and must be called by all ranks in the same order.
// A space keeps preallocated stage buffers, so one instance must not run two
// transforms at the same time; distinct instances are independent.
package space
