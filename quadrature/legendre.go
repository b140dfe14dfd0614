// SPDX-License-Identifier: MIT

package quadrature

// Legendre returns L_n(x) by the three-term recurrence
//
//	(k+1) L_{k+1} = (2k+1) x L_k - k L_{k-1}.
func Legendre(n int, x float64) float64 {
	p, _, _ := LegendreDerivs(n, x)

	return p
}

// LegendreDerivs returns L_n(x), L'_n(x) and L''_n(x).
// Derivatives use the recurrence L'_{k+1} = L'_{k-1} + (2k+1) L_k and its
// derivative, which stay finite at x = ±1.
func LegendreDerivs(n int, x float64) (p, dp, d2p float64) {
	if n == 0 {
		return 1, 0, 0
	}
	p0, p1 := 1.0, x
	dp0, dp1 := 0.0, 1.0
	d2p0, d2p1 := 0.0, 0.0
	for k := 1; k < n; k++ {
		fk := float64(k)
		p2 := ((2*fk+1)*x*p1 - fk*p0) / (fk + 1)
		dp2 := dp0 + (2*fk+1)*p1
		d2p2 := d2p0 + (2*fk+1)*dp1
		p0, p1 = p1, p2
		dp0, dp1 = dp1, dp2
		d2p0, d2p1 = d2p1, d2p2
	}

	return p1, dp1, d2p1
}

// LegendreAll fills dst[k] = L_k(x) for k = 0..len(dst)-1.
func LegendreAll(x float64, dst []float64) {
	if len(dst) == 0 {
		return
	}
	dst[0] = 1
	if len(dst) == 1 {
		return
	}
	dst[1] = x
	for k := 1; k+1 < len(dst); k++ {
		fk := float64(k)
		dst[k+1] = ((2*fk+1)*x*dst[k] - fk*dst[k-1]) / (fk + 1)
	}
}
