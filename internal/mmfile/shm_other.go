//go:build !linux

package mmfile

// AttachShared is not available on this platform.
func AttachShared(int, int) ([]byte, func() error, error) {
	return nil, nil, ErrSharedUnsupported
}

// RemoveShared is not available on this platform.
func RemoveShared(int) error {
	return ErrSharedUnsupported
}
