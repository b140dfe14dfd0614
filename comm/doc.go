// SPDX-License-Identifier: MIT

// Package comm provides the process group used by the distributed transforms.
//
// A Comm is one rank's handle on an ordered group of ranks. The group runs
// inside a single process: every rank is a goroutine and point-to-point
// traffic flows through buffered per-pair mailboxes. The collective methods
// (Alltoallv, Allgather, Barrier, Split) follow MPI semantics:
//
//   - every rank of the group must call them, in the same order;
//   - a rank that skips a collective blocks its peers forever (deadlock is not detected);
//   - messages between a pair of ranks are delivered in FIFO order.
//
// Run starts a group of n ranks and waits for all of them:
//
//	err := comm.Run(4, func(c comm.Comm) error {
//		recv, err := c.Alltoallv(send)
//		...
//	})
//
// Dims factorizes a rank count into a balanced process grid, like MPI_Dims_create.
package comm
