//go:build darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges syncs the whole mapping. macOS msync wants the address the
// region was mapped at; the kernel only writes pages that are dirty.
func (t *Tracker) flushRanges(ctx context.Context, ranges []Range) error {
	if len(ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return unix.Msync(t.seg.Bytes(), unix.MS_SYNC)
}

// sync uses F_FULLFSYNC when asked; macOS has no fdatasync.
func (t *Tracker) sync(fullfsync bool) error {
	fd := t.seg.FD()
	if fullfsync {
		_, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(fd)
}
