package heap

import "errors"

var (
	// ErrNotSegment indicates the bytes do not start with the segment mark.
	ErrNotSegment = errors.New("heap: not a database segment")

	// ErrVersionMismatch indicates a segment written by an incompatible format version.
	ErrVersionMismatch = errors.New("heap: segment format version mismatch")

	// ErrTooSmall indicates a segment size below the minimal segment size.
	ErrTooSmall = errors.New("heap: segment too small")

	// ErrSizeMismatch indicates the recorded segment size disagrees with the mapped size.
	ErrSizeMismatch = errors.New("heap: segment size mismatch")

	// ErrUnknownConfigKey indicates a configuration key Config has no field for.
	ErrUnknownConfigKey = errors.New("heap: unknown config key")

	// ErrBadArea indicates an area identifier outside the known categories.
	ErrBadArea = errors.New("heap: unknown area")
)
