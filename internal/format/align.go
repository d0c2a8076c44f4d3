package format

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int64) int64 {
	return (n + ObjectAlignmentMask) &^ ObjectAlignmentMask
}

// AlignUp returns n aligned up to a power-of-two boundary.
func AlignUp(n, boundary int64) int64 {
	return (n + boundary - 1) &^ (boundary - 1)
}

// AlignDown returns n aligned down to a power-of-two boundary.
func AlignDown(n, boundary int64) int64 {
	return n &^ (boundary - 1)
}

// RoundObjectSize turns a requested byte count into the size a variable
// length object really occupies: at least MinObjectSize and a multiple of
// the granularity.
//
// Example:
//
//	RoundObjectSize(1)  = 32
//	RoundObjectSize(33) = 40
func RoundObjectSize(n int64) int64 {
	if n <= MinObjectSize {
		return MinObjectSize
	}
	return AlignUp(n, Granularity)
}
