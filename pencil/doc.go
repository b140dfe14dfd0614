// SPDX-License-Identifier: MIT

// Package pencil describes distributed array layouts and moves data between them.
//
// A Subcomm is a Cartesian process grid with one sub-communicator per array
// axis. A Pencil fixes a global shape and a free axis: the free axis is
// entirely local (its sub-communicator has size 1) while every other axis is
// block-distributed over its sub-communicator. Blocks follow
//
//	n = q + (rank < r),  start = q*rank + min(rank, r),  q, r = divmod(N, P)
//
// so they tile the global extent without gaps or overlaps.
//
// Pencil.Pencil(b) derives the layout in which axis b is free by swapping the
// sub-communicators of the old and new free axes, and Pencil.Transfer builds
// the all-to-all plan between the two layouts. Transfer.Forward and
// Transfer.Backward are exact data movements and inverse to each other.
//
// Every method that communicates is collective over the sub-communicator
// involved; all ranks must call it in the same order.
package pencil
