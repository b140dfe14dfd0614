// SPDX-License-Identifier: MIT

package ndarray

// checkBlock validates a rectangular block [start, start+extent) against the shape.
func (a *Array) checkBlock(start, extent []int) error {
	if len(start) != len(a.shape) || len(extent) != len(a.shape) {
		return ErrDimensionMismatch
	}
	for i := range a.shape {
		if start[i] < 0 || extent[i] < 0 || start[i]+extent[i] > a.shape[i] {
			return ErrOutOfRange
		}
	}

	return nil
}

// walkBlock calls fn(offset, run) for each contiguous run of the block along the
// last axis, in row-major order.
func (a *Array) walkBlock(start, extent []int, fn func(off, run int)) {
	nd := len(a.shape)
	if Prod(extent) == 0 {
		return
	}
	idx := make([]int, nd-1)
	run := extent[nd-1]
	for {
		off := start[nd-1]
		for i := 0; i < nd-1; i++ {
			off += (start[i] + idx[i]) * a.strides[i]
		}
		fn(off, run)

		// odometer over the leading axes
		i := nd - 2
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < extent[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// Pack appends the block [start, start+extent) to buf in row-major order.
func (a *Array) Pack(start, extent []int, buf []complex128) ([]complex128, error) {
	if err := a.checkBlock(start, extent); err != nil {
		return buf, arrayErrorf("Pack", err, "start %v, extent %v, shape %v", start, extent, a.shape)
	}
	a.walkBlock(start, extent, func(off, run int) {
		buf = append(buf, a.data[off:off+run]...)
	})

	return buf, nil
}

// Unpack writes buf (row-major, len == Π extent) into the block [start, start+extent).
func (a *Array) Unpack(start, extent []int, buf []complex128) error {
	if err := a.checkBlock(start, extent); err != nil {
		return arrayErrorf("Unpack", err, "start %v, extent %v, shape %v", start, extent, a.shape)
	}
	if len(buf) != Prod(extent) {
		return arrayErrorf("Unpack", ErrDimensionMismatch, "buffer %d, extent %v", len(buf), extent)
	}
	pos := 0
	a.walkBlock(start, extent, func(off, run int) {
		if a.dtype == Float64 {
			for i := 0; i < run; i++ {
				a.data[off+i] = complex(real(buf[pos+i]), 0)
			}
		} else {
			copy(a.data[off:off+run], buf[pos:pos+run])
		}
		pos += run
	})

	return nil
}

// sliceShape returns a.shape with axis collapsed to 1.
func (a *Array) sliceShape(axis int) []int {
	s := append([]int(nil), a.shape...)
	s[axis] = 1

	return s
}

func (a *Array) checkIndex(method string, axis, index int) error {
	if axis < 0 || axis >= len(a.shape) {
		return arrayErrorf(method, ErrDimensionMismatch, "axis %d, rank %d", axis, len(a.shape))
	}
	if index < 0 || index >= a.shape[axis] {
		return arrayErrorf(method, ErrOutOfRange, "index %d on axis %d (extent %d)", index, axis, a.shape[axis])
	}

	return nil
}

// Take copies the hyperplane at index along axis into a new array whose extent
// along axis is 1 (dimensions are kept).
func (a *Array) Take(axis, index int) (*Array, error) {
	if err := a.checkIndex("Take", axis, index); err != nil {
		return nil, err
	}
	out := Zeros(a.sliceShape(axis), a.dtype)
	start := make([]int, len(a.shape))
	start[axis] = index
	buf, err := a.Pack(start, out.shape, make([]complex128, 0, len(out.data)))
	if err != nil {
		return nil, err
	}
	copy(out.data, buf)

	return out, nil
}

// Put overwrites the hyperplane at index along axis with src (extent 1 along axis).
func (a *Array) Put(axis, index int, src *Array) error {
	return a.AddScaled(axis, index, src, 0, true)
}

// AddScaled adds alpha*src into the hyperplane at index along axis; with
// overwrite set the hyperplane is replaced by src instead.
func (a *Array) AddScaled(axis, index int, src *Array, alpha complex128, overwrite bool) error {
	if err := a.checkIndex("AddScaled", axis, index); err != nil {
		return err
	}
	if src == nil {
		return arrayErrorf("AddScaled", ErrNilArray, "")
	}
	want := a.sliceShape(axis)
	if len(src.shape) != len(want) {
		return arrayErrorf("AddScaled", ErrDimensionMismatch, "src %v, want %v", src.shape, want)
	}
	for i := range want {
		if src.shape[i] != want[i] {
			return arrayErrorf("AddScaled", ErrDimensionMismatch, "src %v, want %v", src.shape, want)
		}
	}
	start := make([]int, len(a.shape))
	start[axis] = index
	pos := 0
	a.walkBlock(start, want, func(off, run int) {
		for i := 0; i < run; i++ {
			v := src.data[pos+i]
			if !overwrite {
				v = a.data[off+i] + alpha*v
			}
			if a.dtype == Float64 {
				v = complex(real(v), 0)
			}
			a.data[off+i] = v
		}
		pos += run
	})

	return nil
}
