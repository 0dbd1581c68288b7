package lateral

import "math"

// Interp linearly interpolates fp at x over the ascending breakpoints xp,
// holding the end values flat outside the table. Tables of length one are
// treated as constants. Used for gain schedules where a table may hold a
// single point.
func Interp(x float64, xp, fp []float64) float64 {
	n := len(xp)
	if n == 0 || len(fp) == 0 {
		return 0
	}
	if len(fp) < n {
		n = len(fp)
	}
	if n == 1 || x <= xp[0] {
		return fp[0]
	}
	if x >= xp[n-1] {
		return fp[n-1]
	}
	for i := 1; i < n; i++ {
		if x <= xp[i] {
			span := xp[i] - xp[i-1]
			if span <= 0 {
				return fp[i]
			}
			frac := (x - xp[i-1]) / span
			return fp[i-1] + frac*(fp[i]-fp[i-1])
		}
	}
	return fp[n-1]
}

// Clip bounds v to [lo, hi]. NaN maps to zero.
func Clip(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
