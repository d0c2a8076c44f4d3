//go:build !linux && !freebsd && !darwin

package dirty

import "context"

// flushRanges writes each range back to the file. Segments on these
// platforms are in-memory copies of the file rather than mappings.
func (t *Tracker) flushRanges(ctx context.Context, ranges []Range) error {
	data := t.seg.Bytes()
	f := t.seg.File()
	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.WriteAt(data[r.Off:r.Off+r.Len], r.Off); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) sync(_ bool) error {
	return t.seg.File().Sync()
}
