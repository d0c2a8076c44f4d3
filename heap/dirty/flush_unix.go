//go:build linux || freebsd

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges msyncs each range. Linux accepts page-aligned sub-slices of
// the mapping.
func (t *Tracker) flushRanges(ctx context.Context, ranges []Range) error {
	data := t.seg.Bytes()
	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := unix.Msync(data[r.Off:r.Off+r.Len], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return nil
}

// sync fdatasyncs the backing file. fullfsync only matters on macOS.
func (t *Tracker) sync(_ bool) error {
	return unix.Fdatasync(t.seg.FD())
}
