// Package spectral is a distributed tensor-product spectral transform engine:
// per-axis bases, pencil decompositions and the forward/backward pipeline that
// ties them together, with Dirichlet boundary lifting on one axis.
//
// 🚀 What is spectral?
//
//	A pure-Go library that brings together:
//		• Bases: Fourier (real-to-complex, complex-to-complex), Legendre, Legendre-Dirichlet
//		• Quadrature: equispaced, Gauss-Legendre, Gauss-Lobatto nodes and weights
//		• Ranks: an in-process communicator (one goroutine per rank) with Alltoallv/Allgather/Split
//		• Pencils: process grids, per-axis layouts and the transposes between them
//		• Spaces: tensor-product, mixed and vector spaces; boundary lifting
//		• Telemetry: Prometheus stage timings and transpose volumes
//
// Under the hood, everything is organized in flat subpackages:
//
//	ndarray/    — dense row-major arrays, fibre and block access
//	quadrature/ — quadrature rules and Legendre recurrences
//	basis/      — the per-axis transform contract and its families
//	comm/       — in-process ranks and collectives
//	pencil/     — Subcomm, Pencil, Transfer
//	space/      — TensorProductSpace, Mixed, BoundaryValues
//	telemetry/  — Observer and its Prometheus implementation
//	cmd/spectral — CLI that runs round trips on in-process ranks
//
// Quick ASCII example, a 2x2 grid transforming axis 2 first:
//
//	physical ─R2C(z)─▶ transpose ─C2C(y)─▶ transpose ─C2C(x)─▶ spectral
//
//	go get github.com/katalvlaran/spectral
package spectral
