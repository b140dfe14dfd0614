// SPDX-License-Identifier: MIT

// Package ndarray provides the local N-dimensional array used by every stage
// of a distributed spectral transform.
//
// An Array is a contiguous row-major buffer (offset = Σ idx[i]*stride[i]) tagged
// with a Dtype. Both Float64 and Complex128 arrays store complex128 elements;
// Float64 arrays keep every imaginary part at exactly zero, which lets a
// transform chain change dtype between stages without re-allocating element
// types.
//
// The package exposes three groups of helpers:
//
//   - Accessors: At/Set with bounds checks (errors, never panics).
//   - Axis lines: ReadLine/WriteLine and Lines iterate the 1D fibres along a
//     single axis, treating the remaining axes as batch dimensions. Per-axis
//     basis transforms are written against these.
//   - Blocks: Pack/Unpack copy rectangular sub-blocks into flat buffers (used
//     by pencil transposes), Take/Put/AddScaled address a single index along
//     one axis (used by boundary lifting).
//
// Arrays are not safe for concurrent mutation; distinct ranks own distinct
// arrays.
package ndarray
