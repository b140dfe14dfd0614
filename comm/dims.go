// SPDX-License-Identifier: MIT

package comm

import (
	"fmt"
	"sort"
)

// Dims fills the zero entries of dims so that the product of all entries
// equals size, keeping the free entries as balanced as possible and in
// non-increasing order (MPI_Dims_create). Non-zero entries are kept.
//
// Errors:
//   - ErrBadDims for a negative entry, or when the fixed entries do not divide size.
func Dims(size int, dims []int) ([]int, error) {
	if size < 1 {
		return nil, fmt.Errorf("Dims(%d, %v): %w", size, dims, ErrBadSize)
	}
	out := append([]int(nil), dims...)
	fixed := 1
	var free []int
	for i, d := range out {
		switch {
		case d < 0:
			return nil, fmt.Errorf("Dims(%d, %v): negative entry at %d: %w", size, dims, i, ErrBadDims)
		case d == 0:
			free = append(free, i)
		default:
			fixed *= d
		}
	}
	if size%fixed != 0 {
		return nil, fmt.Errorf("Dims(%d, %v): fixed product %d does not divide %d: %w", size, dims, fixed, size, ErrBadDims)
	}
	rest := size / fixed
	if len(free) == 0 {
		if rest != 1 {
			return nil, fmt.Errorf("Dims(%d, %v): product %d != %d: %w", size, dims, fixed, size, ErrBadDims)
		}

		return out, nil
	}

	// Hand out prime factors, largest first, to the currently smallest slot.
	slots := make([]int, len(free))
	for i := range slots {
		slots[i] = 1
	}
	primes := primeFactors(rest)
	for i := len(primes) - 1; i >= 0; i-- {
		lo := 0
		for j := range slots {
			if slots[j] < slots[lo] {
				lo = j
			}
		}
		slots[lo] *= primes[i]
	}
	sort.Sort(sort.Reverse(sort.IntSlice(slots)))
	for i, idx := range free {
		out[idx] = slots[i]
	}

	return out, nil
}

// primeFactors returns the prime factors of n in ascending order.
func primeFactors(n int) []int {
	var f []int
	for p := 2; p*p <= n; p++ {
		for n%p == 0 {
			f = append(f, p)
			n /= p
		}
	}
	if n > 1 {
		f = append(f, n)
	}

	return f
}
