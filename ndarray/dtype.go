// SPDX-License-Identifier: MIT

package ndarray

// Dtype is the element type of an Array.
type Dtype int

const (
	// Float64 arrays hold real values (imaginary parts are kept at zero).
	Float64 Dtype = iota

	// Complex128 arrays hold complex values.
	Complex128
)

// String returns the Go name of the element type ("float64", "complex128").
func (d Dtype) String() string {
	switch d {
	case Float64:
		return "float64"
	case Complex128:
		return "complex128"
	default:
		return "unknown"
	}
}

// IsComplex reports whether d is a complex dtype.
func (d Dtype) IsComplex() bool { return d == Complex128 }

// Valid reports whether d is one of the declared dtypes.
func (d Dtype) Valid() bool { return d == Float64 || d == Complex128 }
