// SPDX-License-Identifier: MIT

package ndarray

// Lines returns the number of 1D fibres along axis (Size / shape[axis]).
func (a *Array) Lines(axis int) int { return len(a.data) / a.shape[axis] }

// lineOffsets returns the flat offset of element 0 of fibre k along axis and the
// stride between consecutive elements of that fibre. Fibres are numbered in
// row-major order of the remaining axes.
func (a *Array) lineOffsets(axis, k int) (base, stride int) {
	stride = a.strides[axis]
	outer, inner := k/stride, k%stride

	return outer*a.shape[axis]*stride + inner, stride
}

// ReadLine copies fibre k along axis into dst (len(dst) >= shape[axis]).
func (a *Array) ReadLine(axis, k int, dst []complex128) {
	base, stride := a.lineOffsets(axis, k)
	for i, n := 0, a.shape[axis]; i < n; i++ {
		dst[i] = a.data[base+i*stride]
	}
}

// WriteLine stores src into fibre k along axis. Float64 arrays keep real parts only.
func (a *Array) WriteLine(axis, k int, src []complex128) {
	base, stride := a.lineOffsets(axis, k)
	if a.dtype == Float64 {
		for i, n := 0, a.shape[axis]; i < n; i++ {
			a.data[base+i*stride] = complex(real(src[i]), 0)
		}

		return
	}
	for i, n := 0, a.shape[axis]; i < n; i++ {
		a.data[base+i*stride] = src[i]
	}
}

// CheckBatch verifies that in and out have equal rank and equal extents on every
// axis except axis; the extent along axis may differ (truncation/padding).
func CheckBatch(in, out *Array, axis int) error {
	if in == nil || out == nil {
		return arrayErrorf("CheckBatch", ErrNilArray, "")
	}
	if len(in.shape) != len(out.shape) || axis < 0 || axis >= len(in.shape) {
		return arrayErrorf("CheckBatch", ErrDimensionMismatch, "in %v, out %v, axis %d", in.shape, out.shape, axis)
	}
	for i := range in.shape {
		if i != axis && in.shape[i] != out.shape[i] {
			return arrayErrorf("CheckBatch", ErrDimensionMismatch, "in %v, out %v differ on axis %d", in.shape, out.shape, i)
		}
	}

	return nil
}

// MapLines applies fn to every fibre along axis, reading from in and writing
// the result into the matching fibre of out. Shapes must agree on every other
// axis (see CheckBatch). fn receives scratch slices sized to the respective
// extents; dst is zeroed before each call.
func MapLines(in, out *Array, axis int, fn func(src, dst []complex128) error) error {
	if err := CheckBatch(in, out, axis); err != nil {
		return err
	}
	src := make([]complex128, in.shape[axis])
	dst := make([]complex128, out.shape[axis])
	for k, n := 0, in.Lines(axis); k < n; k++ {
		in.ReadLine(axis, k, src)
		for i := range dst {
			dst[i] = 0
		}
		if err := fn(src, dst); err != nil {
			return err
		}
		out.WriteLine(axis, k, dst)
	}

	return nil
}
