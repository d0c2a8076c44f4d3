package alloc

import (
	"fmt"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/buf"
	"github.com/springgod/whitedb/internal/format"
	"github.com/springgod/whitedb/internal/logger"
)

// AllocVar returns the offset of a new object of at least size bytes in
// variable-length area id. The object starts with its boundary tag; the
// caller owns the bytes after it.
//
// Search order: the request's own bucket (the head of an exact bucket, or
// the first large enough entry of a variable one), then the heads of the
// larger variable buckets, then the designated victim. When all of those
// miss the area grows by one subarea whose space becomes the new victim.
func (a *Allocator) AllocVar(id heap.AreaID, size int64) (int64, error) {
	h, err := a.varArea(id)
	if err != nil {
		return 0, err
	}
	if size <= 0 {
		return 0, fmt.Errorf("%w: %d bytes", ErrBadSize, size)
	}
	if size > a.seg.Size() {
		return 0, a.outOfSpace(h, size, "larger than the segment")
	}
	n := format.RoundObjectSize(size)

	off, src := a.fromBuckets(h, n)
	if off == 0 {
		off = a.fromDV(h, n)
		src = "dv"
	}
	if off == 0 {
		if err := a.extendVar(h, n); err != nil {
			return 0, err
		}
		off = a.fromDV(h, n)
		src = "new subarea"
	}
	if off == 0 {
		return 0, a.outOfSpace(h, n, "new subarea too small")
	}

	occupied := format.UsedObjectSize(format.ReadTag(a.seg.Bytes(), off))
	a.stats.VarAllocs++
	a.stats.BytesAllocated += occupied
	if logger.LogAlloc {
		logger.Debug("alloc", "area", id.String(), "size", size, "off", off, "occupied", occupied, "from", src)
	}
	return off, nil
}

// FreeVar returns the object at off to variable-length area id, merging it
// with free neighbours.
func (a *Allocator) FreeVar(id heap.AreaID, off int64) error {
	h, err := a.varArea(id)
	if err != nil {
		return err
	}
	t, _, err := a.usedVarObject(h, off)
	if err != nil {
		return err
	}
	size := format.UsedObjectSize(t.Word())
	a.release(h, off, size, t.PrevFree())

	a.stats.VarFrees++
	a.stats.BytesFreed += size
	if logger.LogAlloc {
		logger.Debug("free", "area", id.String(), "off", off, "size", size, "prev_free", t.PrevFree())
	}
	return nil
}

func (a *Allocator) AllocRecord(size int64) (int64, error) { return a.AllocVar(heap.AreaDataRec, size) }
func (a *Allocator) AllocLongStr(size int64) (int64, error) { return a.AllocVar(heap.AreaLongStr, size) }
func (a *Allocator) FreeRecord(off int64) error            { return a.FreeVar(heap.AreaDataRec, off) }
func (a *Allocator) FreeLongStr(off int64) error           { return a.FreeVar(heap.AreaLongStr, off) }

// usedVarObject checks that off is the start of an in-use object of h and
// returns its tag and subarea.
func (a *Allocator) usedVarObject(h heap.AreaHeader, off int64) (format.Tag, heap.SubareaHeader, error) {
	if off <= 0 || off%format.ObjectAlignment != 0 {
		return format.Tag{}, heap.SubareaHeader{}, fmt.Errorf("%w: %s object at %d", ErrInvalidOffset, h.ID(), off)
	}
	_, sa, ok := h.SubareaFor(off)
	if !ok {
		return format.Tag{}, heap.SubareaHeader{}, fmt.Errorf("%w: %s object at %d", ErrInvalidOffset, h.ID(), off)
	}
	t := a.seg.Tag(off)
	switch {
	case t.IsFree():
		return t, sa, fmt.Errorf("%w: %s object at %d", ErrDoubleFree, h.ID(), off)
	case t.IsSpecial():
		return t, sa, fmt.Errorf("%w: %s object at %d", ErrSpecialObject, h.ID(), off)
	}
	lo := sa.AlignedOffset + format.MarkerSize
	hi := sa.End() - format.MarkerSize
	if !buf.Within(off, format.UsedObjectSize(t.Word()), lo, hi) {
		return t, sa, fmt.Errorf("%w: %s object at %d overruns subarea [%d, %d)", ErrInvalidOffset, h.ID(), off, lo, hi)
	}
	return t, sa, nil
}

// fromBuckets serves n bytes from the free buckets, or returns 0.
func (a *Allocator) fromBuckets(h heap.AreaHeader, n int64) (int64, string) {
	b := format.BucketIndex(n)
	if off := a.firstFit(h, b, n); off != 0 {
		a.takeFree(h, off, n)
		a.stats.BucketHits++
		return off, "bucket"
	}
	for p := format.NextProbe(max(b, format.ExactBuckets-1)); p >= 0; p = format.NextProbe(p) {
		if off := h.Bucket(p); off != 0 {
			a.takeFree(h, off, n)
			a.stats.ProbeHits++
			return off, "probe"
		}
	}
	return 0, ""
}

// firstFit returns the first object of bucket b that holds n bytes. Every
// object of an exact bucket has the same size, so only the head is looked at.
func (a *Allocator) firstFit(h heap.AreaHeader, b int, n int64) int64 {
	off := h.Bucket(b)
	if format.IsExactBucket(b) {
		return off
	}
	for limit := a.seg.Size() / format.MinObjectSize; off != 0 && limit > 0; limit-- {
		if a.seg.Tag(off).Size >= n {
			return off
		}
		off = a.seg.Gint(off + nextField)
	}
	return 0
}

// takeFree unlinks the free object at off and hands out its first n bytes.
// A tail of at least one minimum object goes back to the buckets; a
// smaller tail stays part of the served object.
func (a *Allocator) takeFree(h heap.AreaHeader, off, n int64) {
	size := a.seg.Tag(off).Size
	a.unlink(off)
	if rest := size - n; rest >= format.MinObjectSize {
		a.putTag(off, format.EncodeTag(n, format.StateUsed))
		a.makeFree(h, off+n, rest)
		a.stats.Splits++
		return
	}
	a.putTag(off, format.EncodeTag(size, format.StateUsed))
	a.setPrevFree(off+size, false)
}

// fromDV serves n bytes from the front of the designated victim, or
// returns 0 when the victim is missing or too small.
func (a *Allocator) fromDV(h heap.AreaHeader, n int64) int64 {
	dv, size := h.DV()
	if dv == 0 || size < n {
		return 0
	}
	if rest := size - n; rest >= format.MinObjectSize {
		a.putTag(dv, format.EncodeTag(n, format.StateUsed))
		a.writeDV(h, dv+n, rest)
	} else {
		a.putTag(dv, format.EncodeTag(size, format.StateUsed))
		a.setDV(h, 0, 0)
	}
	a.stats.DVHits++
	return dv
}

// extendVar adds a subarea to h big enough for one object of n bytes.
func (a *Allocator) extendVar(h heap.AreaHeader, n int64) error {
	size, err := a.growSize(h, n)
	if err != nil {
		return err
	}
	sa, err := a.newSubarea(h, size)
	if err != nil {
		return err
	}
	a.formatVarSubarea(h, sa)
	a.stats.SubareasCreated++
	a.stats.SubareaBytes += sa.Size
	return nil
}
