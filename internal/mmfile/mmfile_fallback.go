//go:build !unix

package mmfile

import (
	"fmt"
	"io"
	"os"
)

// Map loads the file into memory where mmap is not available. The cleanup
// writes the buffer back before closing, so the file still holds the
// segment afterwards; other processes do not see changes in between.
func Map(path string, size int64) (*os.File, []byte, func() error, error) {
	flag := os.O_RDWR
	if size > 0 {
		flag |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0o600)
	if err != nil {
		return nil, nil, nil, err
	}
	if size == 0 {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, nil, nil, err
		}
		size = info.Size()
	}
	if size == 0 {
		f.Close()
		return nil, nil, nil, fmt.Errorf("mmfile: empty file %s", path)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, nil, nil, err
	}
	cleanup := func() error {
		if _, err := f.WriteAt(data, 0); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return f, data, cleanup, nil
}
