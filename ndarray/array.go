// SPDX-License-Identifier: MIT

// Package ndarray - Array storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit offset formula Σ idx[i]*stride[i].
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep the Float64 invariant (zero imaginary parts) in a single place (Set/CopyFrom/AsDtype).
//
// Complexity quicksheet:
//   - New: O(size) zero-init; At/Set: O(rank); Clone/CopyFrom: O(size).

package ndarray

import (
	"fmt"
	"strings"
)

// Array is a dense row-major N-dimensional array.
//   - shape holds per-axis extents (all > 0).
//   - strides[i] = Π shape[i+1:].
//   - data is the flat buffer (len == Π shape).
type Array struct {
	shape   []int
	strides []int
	dtype   Dtype
	data    []complex128
}

// New allocates a zero-filled array with the given shape and dtype.
//
// Errors:
//   - ErrBadShape when shape is empty or has an extent <= 0, or dtype is unknown.
func New(shape []int, dtype Dtype) (*Array, error) {
	if err := ValidateShape(shape); err != nil {
		return nil, arrayErrorf("New", err, "shape %v", shape)
	}
	if !dtype.Valid() {
		return nil, arrayErrorf("New", ErrBadShape, "dtype %d", int(dtype))
	}

	a := &Array{
		shape:   append([]int(nil), shape...),
		strides: stridesOf(shape),
		dtype:   dtype,
	}
	a.data = make([]complex128, Prod(shape))

	return a, nil
}

// Zeros is New with a panic on invalid input; intended for shapes already validated by the caller.
func Zeros(shape []int, dtype Dtype) *Array {
	a, err := New(shape, dtype)
	if err != nil {
		panic(err)
	}

	return a
}

// FromFloat64 builds a Float64 array copying values (len must equal Π shape).
func FromFloat64(shape []int, values []float64) (*Array, error) {
	a, err := New(shape, Float64)
	if err != nil {
		return nil, err
	}
	if len(values) != len(a.data) {
		return nil, arrayErrorf("FromFloat64", ErrDimensionMismatch, "len %d, shape %v", len(values), shape)
	}
	for i, v := range values {
		a.data[i] = complex(v, 0)
	}

	return a, nil
}

// FromComplex128 builds a Complex128 array copying values (len must equal Π shape).
func FromComplex128(shape []int, values []complex128) (*Array, error) {
	a, err := New(shape, Complex128)
	if err != nil {
		return nil, err
	}
	if len(values) != len(a.data) {
		return nil, arrayErrorf("FromComplex128", ErrDimensionMismatch, "len %d, shape %v", len(values), shape)
	}
	copy(a.data, values)

	return a, nil
}

// ValidateShape checks that shape is non-empty with strictly positive extents.
func ValidateShape(shape []int) error {
	if len(shape) == 0 {
		return ErrBadShape
	}
	for _, n := range shape {
		if n <= 0 {
			return ErrBadShape
		}
	}

	return nil
}

// Prod returns the product of the extents (1 for an empty slice).
func Prod(shape []int) int {
	p := 1
	for _, n := range shape {
		p *= n
	}

	return p
}

func stridesOf(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}

	return s
}

// Shape returns a copy of the per-axis extents.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// Dim returns the extent along axis (no bounds check beyond the slice index).
func (a *Array) Dim(axis int) int { return a.shape[axis] }

// NDim returns the number of axes.
func (a *Array) NDim() int { return len(a.shape) }

// Size returns the number of elements.
func (a *Array) Size() int { return len(a.data) }

// Dtype returns the element type tag.
func (a *Array) Dtype() Dtype { return a.dtype }

// Data exposes the flat row-major buffer. Writes into a Float64 array must keep
// imaginary parts at zero.
func (a *Array) Data() []complex128 { return a.data }

// Strides returns a copy of the row-major strides.
func (a *Array) Strides() []int { return append([]int(nil), a.strides...) }

// offset bounds-checks idx and computes the flat offset.
func (a *Array) offset(idx []int) (int, error) {
	if len(idx) != len(a.shape) {
		return 0, ErrDimensionMismatch
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			return 0, ErrOutOfRange
		}
		off += v * a.strides[i]
	}

	return off, nil
}

// At returns the element at idx.
func (a *Array) At(idx ...int) (complex128, error) {
	off, err := a.offset(idx)
	if err != nil {
		return 0, arrayErrorf("At", err, "index %v, shape %v", idx, a.shape)
	}

	return a.data[off], nil
}

// Set stores v at idx. For Float64 arrays the imaginary part is discarded.
func (a *Array) Set(v complex128, idx ...int) error {
	off, err := a.offset(idx)
	if err != nil {
		return arrayErrorf("Set", err, "index %v, shape %v", idx, a.shape)
	}
	if a.dtype == Float64 {
		v = complex(real(v), 0)
	}
	a.data[off] = v

	return nil
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{
		shape:   append([]int(nil), a.shape...),
		strides: append([]int(nil), a.strides...),
		dtype:   a.dtype,
		data:    append([]complex128(nil), a.data...),
	}
}

// Zero resets every element to 0.
func (a *Array) Zero() {
	for i := range a.data {
		a.data[i] = 0
	}
}

// SameShape reports whether a and b have identical shapes.
func (a *Array) SameShape(b *Array) bool {
	if b == nil || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}

	return true
}

// CopyFrom copies src into a. Shapes must match; dtypes may differ, in which
// case a Complex128→Float64 copy drops imaginary parts.
func (a *Array) CopyFrom(src *Array) error {
	if src == nil {
		return arrayErrorf("CopyFrom", ErrNilArray, "")
	}
	if !a.SameShape(src) {
		return arrayErrorf("CopyFrom", ErrDimensionMismatch, "dst %v, src %v", a.shape, src.shape)
	}
	if a.dtype == Float64 && src.dtype == Complex128 {
		for i, v := range src.data {
			a.data[i] = complex(real(v), 0)
		}

		return nil
	}
	copy(a.data, src.data)

	return nil
}

// AsDtype returns a copy converted to dtype.
func (a *Array) AsDtype(dtype Dtype) (*Array, error) {
	out, err := New(a.shape, dtype)
	if err != nil {
		return nil, err
	}
	if err = out.CopyFrom(a); err != nil {
		return nil, err
	}

	return out, nil
}

// Real returns the real parts in row-major order.
func (a *Array) Real() []float64 {
	out := make([]float64, len(a.data))
	for i, v := range a.data {
		out[i] = real(v)
	}

	return out
}

// Scale multiplies every element by alpha.
func (a *Array) Scale(alpha complex128) {
	if a.dtype == Float64 {
		alpha = complex(real(alpha), 0)
	}
	for i := range a.data {
		a.data[i] *= alpha
	}
}

// String renders the shape and dtype, e.g. "Array[8 8 5]complex128".
func (a *Array) String() string {
	parts := make([]string, len(a.shape))
	for i, n := range a.shape {
		parts[i] = fmt.Sprint(n)
	}

	return "Array[" + strings.Join(parts, " ") + "]" + a.dtype.String()
}
