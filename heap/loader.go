package heap

import (
	"errors"
	"fmt"

	"github.com/springgod/whitedb/internal/format"
	"github.com/springgod/whitedb/internal/mmfile"
)

// ErrSharedUnsupported is returned by the shared segment loaders on
// platforms without System V shared memory.
var ErrSharedUnsupported = mmfile.ErrSharedUnsupported

func checkSize(size int64) (int64, error) {
	size = format.AlignDown(size, format.WordSize)
	if size < format.MinimalSegmentSize {
		return 0, fmt.Errorf("%w: %d bytes, need at least %d", ErrTooSmall, size, format.MinimalSegmentSize)
	}
	return size, nil
}

// New allocates a zeroed segment of size bytes in process memory.
func New(size int64) (*Segment, error) {
	size, err := checkSize(size)
	if err != nil {
		return nil, err
	}
	return &Segment{data: make([]byte, size)}, nil
}

// Create maps the file at path as a new segment of size bytes, creating or
// resizing the file. The contents are whatever the file held; initialise
// before use.
func Create(path string, size int64) (*Segment, error) {
	size, err := checkSize(size)
	if err != nil {
		return nil, err
	}
	f, data, cleanup, err := mmfile.Map(path, size)
	if err != nil {
		return nil, fmt.Errorf("heap: create %s: %w", path, err)
	}
	return &Segment{f: f, data: data, release: cleanup}, nil
}

// Open maps an existing segment file and validates its header.
func Open(path string) (*Segment, error) {
	f, data, cleanup, err := mmfile.Map(path, 0)
	if err != nil {
		return nil, fmt.Errorf("heap: open %s: %w", path, err)
	}
	s := &Segment{f: f, data: data, release: cleanup}
	if err := s.Validate(); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// CreateShared creates (or attaches to) the shared segment for key with
// size bytes. As with Create, the caller initialises it.
func CreateShared(key int, size int64) (*Segment, error) {
	size, err := checkSize(size)
	if err != nil {
		return nil, err
	}
	data, cleanup, err := mmfile.AttachShared(key, int(size))
	if err != nil {
		return nil, fmt.Errorf("heap: create shared %d: %w", key, err)
	}
	return &Segment{data: data, release: cleanup, shmKey: key}, nil
}

// AttachShared attaches an existing shared segment and validates its header.
func AttachShared(key int) (*Segment, error) {
	data, cleanup, err := mmfile.AttachShared(key, 0)
	if err != nil {
		return nil, fmt.Errorf("heap: attach shared %d: %w", key, err)
	}
	s := &Segment{data: data, release: cleanup, shmKey: key}
	if err := s.Validate(); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// RemoveShared destroys the shared segment for key once every process has
// detached.
func RemoveShared(key int) error {
	return mmfile.RemoveShared(key)
}
