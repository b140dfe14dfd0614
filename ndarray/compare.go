// SPDX-License-Identifier: MIT

package ndarray

import "math/cmplx"

// AllClose checks element-wise |a-b| <= atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
// NaN compares unequal to everything. Dtypes are not compared.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol|.
func AllClose(a, b *Array, rtol, atol float64) (bool, error) {
	if a == nil || b == nil {
		return false, arrayErrorf("AllClose", ErrNilArray, "")
	}
	if !a.SameShape(b) {
		return false, arrayErrorf("AllClose", ErrDimensionMismatch, "%v vs %v", a.shape, b.shape)
	}
	if rtol < 0 {
		rtol = -rtol
	}
	if atol < 0 {
		atol = -atol
	}
	for i, av := range a.data {
		bv := b.data[i]
		d := cmplx.Abs(av - bv)
		if d != d || d > atol+rtol*cmplx.Abs(bv) { // d != d catches NaN
			return false, nil
		}
	}

	return true, nil
}

// MaxAbsDiff returns max_i |a_i - b_i| for identical shapes.
func MaxAbsDiff(a, b *Array) (float64, error) {
	if a == nil || b == nil {
		return 0, arrayErrorf("MaxAbsDiff", ErrNilArray, "")
	}
	if !a.SameShape(b) {
		return 0, arrayErrorf("MaxAbsDiff", ErrDimensionMismatch, "%v vs %v", a.shape, b.shape)
	}
	m := 0.0
	for i, av := range a.data {
		if d := cmplx.Abs(av - b.data[i]); d > m {
			m = d
		}
	}

	return m, nil
}

// MaxAbs returns max_i |a_i|.
func (a *Array) MaxAbs() float64 {
	m := 0.0
	for _, v := range a.data {
		if d := cmplx.Abs(v); d > m {
			m = d
		}
	}

	return m
}
