// Package buf contains bounds helpers for offset arithmetic over a segment.
package buf

import "math"

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int64.
func AddOverflowSafe(a, b int64) (int64, bool) {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return 0, false
	case b < 0 && a < math.MinInt64-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int64) ([]byte, bool) {
	if off < 0 || n < 0 || off > int64(len(b)) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > int64(len(b)) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int64) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// Within reports whether [off, off+n) lies inside [lo, hi).
func Within(off, n, lo, hi int64) bool {
	if off < lo || n < 0 {
		return false
	}
	end, ok := AddOverflowSafe(off, n)
	return ok && end <= hi
}
