package format

import "encoding/binary"

// Gints are stored little-endian.

// PutGint writes a gint at off.
func PutGint(b []byte, off int64, v int64) {
	binary.LittleEndian.PutUint64(b[off:off+WordSize], uint64(v))
}

// ReadGint reads the gint at off.
func ReadGint(b []byte, off int64) int64 {
	return int64(binary.LittleEndian.Uint64(b[off : off+WordSize]))
}

// PutTag writes a raw boundary tag word at off.
func PutTag(b []byte, off int64, w uint64) {
	binary.LittleEndian.PutUint64(b[off:off+WordSize], w)
}

// ReadTag reads a raw boundary tag word at off.
func ReadTag(b []byte, off int64) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+WordSize])
}
