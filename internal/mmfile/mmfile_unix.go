//go:build unix

// Package mmfile provides platform-specific helpers for mapping segment
// backing storage: memory-mapped files and System V shared memory.
package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps the file at path read-write and shared, so every process mapping
// the same file sees the same segment. When size > 0 the file is created if
// missing and resized to size; when size == 0 the existing file is mapped
// as is.
//
// The returned cleanup unmaps the region and closes the file.
func Map(path string, size int64) (*os.File, []byte, func() error, error) {
	flag := os.O_RDWR
	if size > 0 {
		flag |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0o600)
	if err != nil {
		return nil, nil, nil, err
	}

	if size > 0 {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, nil, nil, fmt.Errorf("mmfile: resize %s: %w", path, err)
		}
	} else {
		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, nil, nil, err
		}
		size = info.Size()
	}
	if size == 0 {
		_ = f.Close()
		return nil, nil, nil, fmt.Errorf("mmfile: empty file %s", path)
	}
	if size > int64(^uint(0)>>1) {
		_ = f.Close()
		return nil, nil, nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, nil, nil, fmt.Errorf("mmfile: mmap %s: %w", path, err)
	}

	cleanup := func() error {
		var unmapErr error
		if data != nil {
			unmapErr = unix.Munmap(data)
			if errors.Is(unmapErr, unix.EINVAL) {
				// Treat double-unmap as no-op for callers.
				unmapErr = nil
			}
			data = nil
		}
		return errors.Join(unmapErr, f.Close())
	}
	return f, data, cleanup, nil
}
