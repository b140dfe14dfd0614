// Package ndarray_test contains unit tests for the Array storage and accessors.
package ndarray_test

import (
	"testing"

	"github.com/katalvlaran/spectral/ndarray"
	"github.com/stretchr/testify/require"
)

// TestNewInvalidShape ensures New rejects empty shapes and non-positive extents.
func TestNewInvalidShape(t *testing.T) {
	_, err := ndarray.New(nil, ndarray.Float64)
	require.ErrorIs(t, err, ndarray.ErrBadShape)

	_, err = ndarray.New([]int{4, 0}, ndarray.Float64)
	require.ErrorIs(t, err, ndarray.ErrBadShape)

	_, err = ndarray.New([]int{-2}, ndarray.Complex128)
	require.ErrorIs(t, err, ndarray.ErrBadShape)
}

// TestShapeStrides verifies the row-major stride layout.
func TestShapeStrides(t *testing.T) {
	a, err := ndarray.New([]int{2, 3, 4}, ndarray.Complex128)
	require.NoError(t, err)

	require.Equal(t, []int{2, 3, 4}, a.Shape())
	require.Equal(t, []int{12, 4, 1}, a.Strides())
	require.Equal(t, 24, a.Size())
	require.Equal(t, 3, a.NDim())
	require.Equal(t, "Array[2 3 4]complex128", a.String())
}

// TestAtSetOutOfRange ensures At/Set return ErrOutOfRange instead of panicking.
func TestAtSetOutOfRange(t *testing.T) {
	a := ndarray.Zeros([]int{2, 2}, ndarray.Float64)

	_, err := a.At(2, 0)
	require.ErrorIs(t, err, ndarray.ErrOutOfRange)

	err = a.Set(1, 0, -1)
	require.ErrorIs(t, err, ndarray.ErrOutOfRange)

	_, err = a.At(0)
	require.ErrorIs(t, err, ndarray.ErrDimensionMismatch)
}

// TestFloat64DropsImaginary checks that real arrays never store imaginary parts.
func TestFloat64DropsImaginary(t *testing.T) {
	a := ndarray.Zeros([]int{3}, ndarray.Float64)
	require.NoError(t, a.Set(complex(1.5, 2), 1))

	v, err := a.At(1)
	require.NoError(t, err)
	require.Equal(t, complex(1.5, 0), v)

	c, err := ndarray.FromComplex128([]int{3}, []complex128{1i, 2 + 1i, 3})
	require.NoError(t, err)
	require.NoError(t, a.CopyFrom(c))
	require.Equal(t, []float64{0, 2, 3}, a.Real())
	for _, v := range a.Data() {
		require.Zero(t, imag(v))
	}
}

// TestCloneIndependence ensures Clone returns a deep copy.
func TestCloneIndependence(t *testing.T) {
	a, err := ndarray.FromFloat64([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	b := a.Clone()
	require.NoError(t, b.Set(9, 0, 0))

	v, err := a.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, complex(1, 0), v)
}

// TestAllClose checks tolerance handling and shape validation.
func TestAllClose(t *testing.T) {
	a, _ := ndarray.FromFloat64([]int{3}, []float64{1, 2, 3})
	b, _ := ndarray.FromFloat64([]int{3}, []float64{1, 2, 3 + 1e-12})

	ok, err := ndarray.AllClose(a, b, 0, 1e-10)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ndarray.AllClose(a, b, 0, 1e-14)
	require.NoError(t, err)
	require.False(t, ok)

	c := ndarray.Zeros([]int{4}, ndarray.Float64)
	_, err = ndarray.AllClose(a, c, 0, 0)
	require.ErrorIs(t, err, ndarray.ErrDimensionMismatch)

	d, err := ndarray.MaxAbsDiff(a, b)
	require.NoError(t, err)
	require.InDelta(t, 1e-12, d, 1e-15)
}
