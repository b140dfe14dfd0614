package ndarray_test

import (
	"testing"

	"github.com/katalvlaran/spectral/ndarray"
	"github.com/stretchr/testify/require"
)

// iota3 returns a 2x3x4 Float64 array holding 0..23.
func iota3(t *testing.T) *ndarray.Array {
	t.Helper()
	vals := make([]float64, 24)
	for i := range vals {
		vals[i] = float64(i)
	}
	a, err := ndarray.FromFloat64([]int{2, 3, 4}, vals)
	require.NoError(t, err)

	return a
}

// TestReadWriteLine checks fibre addressing along every axis.
func TestReadWriteLine(t *testing.T) {
	a := iota3(t)
	require.Equal(t, 6, a.Lines(2))
	require.Equal(t, 8, a.Lines(1))
	require.Equal(t, 12, a.Lines(0))

	buf := make([]complex128, 4)
	a.ReadLine(2, 1, buf) // [0,1,:]
	require.Equal(t, []complex128{4, 5, 6, 7}, buf)

	buf = make([]complex128, 3)
	a.ReadLine(1, 5, buf) // [1,:,1]
	require.Equal(t, []complex128{13, 17, 21}, buf)

	buf = make([]complex128, 2)
	a.ReadLine(0, 7, buf) // [:,1,3]
	require.Equal(t, []complex128{7, 19}, buf)

	a.WriteLine(0, 7, []complex128{-1, -2})
	v, _ := a.At(1, 1, 3)
	require.Equal(t, complex(-2, 0), v)
}

// TestMapLinesChangesExtent verifies that MapLines accepts a different extent along the mapped axis.
func TestMapLinesChangesExtent(t *testing.T) {
	a := iota3(t)
	out := ndarray.Zeros([]int{2, 1, 4}, ndarray.Complex128)

	err := ndarray.MapLines(a, out, 1, func(src, dst []complex128) error {
		dst[0] = src[0] + src[1] + src[2]
		return nil
	})
	require.NoError(t, err)

	v, _ := out.At(1, 0, 2)
	require.Equal(t, complex(14+18+22, 0), v)

	bad := ndarray.Zeros([]int{3, 1, 4}, ndarray.Complex128)
	err = ndarray.MapLines(a, bad, 1, func(src, dst []complex128) error { return nil })
	require.ErrorIs(t, err, ndarray.ErrDimensionMismatch)
}

// TestPackUnpackRoundTrip checks that a packed block unpacks into the same place bit-for-bit.
func TestPackUnpackRoundTrip(t *testing.T) {
	a := iota3(t)
	start, extent := []int{1, 1, 1}, []int{1, 2, 3}

	buf, err := a.Pack(start, extent, nil)
	require.NoError(t, err)
	require.Equal(t, []complex128{17, 18, 19, 21, 22, 23}, buf)

	b := ndarray.Zeros(a.Shape(), ndarray.Float64)
	require.NoError(t, b.Unpack(start, extent, buf))
	v, _ := b.At(1, 2, 3)
	require.Equal(t, complex(23, 0), v)

	_, err = a.Pack([]int{1, 2, 0}, []int{1, 2, 1}, nil)
	require.ErrorIs(t, err, ndarray.ErrOutOfRange)

	err = b.Unpack(start, extent, buf[:2])
	require.ErrorIs(t, err, ndarray.ErrDimensionMismatch)
}

// TestTakePutAddScaled exercises hyperplane access along one axis.
func TestTakePutAddScaled(t *testing.T) {
	a := iota3(t)

	row, err := a.Take(1, 2)
	require.NoError(t, err)
	require.Equal(t, []int{2, 1, 4}, row.Shape())
	require.Equal(t, []float64{8, 9, 10, 11, 20, 21, 22, 23}, row.Real())

	require.NoError(t, a.Put(1, 0, row))
	v, _ := a.At(1, 0, 3)
	require.Equal(t, complex(23, 0), v)

	require.NoError(t, a.AddScaled(1, 0, row, 0.5, false))
	v, _ = a.At(1, 0, 3)
	require.Equal(t, complex(34.5, 0), v)

	_, err = a.Take(1, 3)
	require.ErrorIs(t, err, ndarray.ErrOutOfRange)

	err = a.Put(2, 0, row)
	require.ErrorIs(t, err, ndarray.ErrDimensionMismatch)
}
