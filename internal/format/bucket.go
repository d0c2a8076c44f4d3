package format

// BucketIndex maps an object size in bytes to its free bucket.
//
// Sizes below ExactBuckets granules get the exact bucket numbered by their
// granule count. Larger sizes fall into VarBuckets exponential buckets: the
// first covers [256, 512) granules, each next one doubles the interval, and
// the last one also takes everything beyond. The DV cache slots are never
// returned.
//
// Callers reject sizes <= 0 before getting here.
func BucketIndex(size int64) int {
	units := size / Granularity
	if units < ExactBuckets {
		return int(units)
	}
	limit := int64(ExactBuckets) * 2
	for i := 0; i < VarBuckets-1; i++ {
		if units < limit {
			return ExactBuckets + i
		}
		limit *= 2
	}
	return ExactBuckets + VarBuckets - 1
}

// IsExactBucket reports whether every object in bucket b has the same size.
func IsExactBucket(b int) bool {
	return b >= 0 && b < ExactBuckets
}

// BucketBounds returns the byte interval [lo, hi) of sizes that map to
// bucket b. The last variable bucket reports hi = -1 (unbounded).
func BucketBounds(b int) (lo, hi int64) {
	if IsExactBucket(b) {
		lo = int64(b) * Granularity
		return lo, lo + Granularity
	}
	k := b - ExactBuckets
	lo = int64(ExactBuckets) << k * Granularity
	if k == VarBuckets-1 {
		return lo, -1
	}
	return lo, lo * 2
}

// NextProbe returns the bucket searched after b when looking upward for a
// fit, or -1 when none is left. Only variable buckets are probed upward:
// larger exact buckets are left for requests of their own size.
func NextProbe(b int) int {
	next := b + 1
	if next < ExactBuckets {
		next = ExactBuckets
	}
	if next >= ExactBuckets+VarBuckets {
		return -1
	}
	return next
}
