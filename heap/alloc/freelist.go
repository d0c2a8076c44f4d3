package alloc

import (
	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/format"
)

// Free object layout:
//
//	+0        tag (size | 01)
//	+8        next free object in the bucket, 0 at the tail
//	+16       previous free object, or the bucket slot for the head
//	...
//	+size-8   tag mirror
const (
	nextField = format.WordSize
	prevField = 2 * format.WordSize
)

// push makes the free object at off the head of bucket b.
func (a *Allocator) push(h heap.AreaHeader, b int, off int64) {
	slot := h.BucketOffset(b)
	head := a.seg.Gint(slot)
	a.put(off+nextField, head)
	a.put(off+prevField, slot)
	if head != 0 {
		a.put(head+prevField, off)
	}
	a.put(slot, off)
}

// unlink removes the free object at off from whichever bucket holds it.
// A prev link inside the segment header is the bucket slot itself.
func (a *Allocator) unlink(off int64) {
	next := a.seg.Gint(off + nextField)
	prev := a.seg.Gint(off + prevField)
	if prev < format.SegmentDataStart {
		a.put(prev, next)
	} else {
		a.put(prev+nextField, next)
	}
	if next != 0 {
		a.put(next+prevField, prev)
	}
}

// makeFree tags [off, off+size) free at both ends and buckets it.
func (a *Allocator) makeFree(h heap.AreaHeader, off, size int64) {
	w := format.EncodeTag(size, format.StateFree)
	a.putTag(off, w)
	a.putTag(off+size-format.WordSize, w)
	a.push(h, format.BucketIndex(size), off)
}

// release turns the in-use span [off, off+size) into free space. It merges
// with a free predecessor when prevFree is set and with a free successor,
// and hands the result to the designated victim when that comes next.
func (a *Allocator) release(h heap.AreaHeader, off, size int64, prevFree bool) {
	orig := off
	if prevFree {
		psize := format.DecodeTag(format.ReadTag(a.seg.Bytes(), off-format.WordSize)).Size
		off -= psize
		size += psize
		a.unlink(off)
		a.stats.CoalesceBackward++
	}

	next := off + size
	nt := a.seg.Tag(next)
	switch {
	case nt.IsFree():
		a.unlink(next)
		size += nt.Size
		a.stats.CoalesceForward++
	case nt.IsSpecial() && a.isDV(h, next):
		_, dvSize := h.DV()
		a.writeDV(h, off, size+dvSize)
		a.stats.DVAbsorbs++
		a.stampReleased(orig, off)
		return
	}

	a.makeFree(h, off, size)
	a.setPrevFree(off+size, true)
	a.stampReleased(orig, off)
}

// stampReleased marks the old tag word of an object that ended up inside
// a larger free span, so freeing the same offset again is caught.
func (a *Allocator) stampReleased(orig, start int64) {
	if orig != start {
		a.putTag(orig, format.EncodeTag(format.MinObjectSize, format.StateFree))
	}
}

// setPrevFree updates the predecessor-free bit of the in-use object at off.
// Markers, the victim and free objects are left alone.
func (a *Allocator) setPrevFree(off int64, free bool) {
	w := format.ReadTag(a.seg.Bytes(), off)
	if nw := format.SetPrevFree(w, free); nw != w {
		a.putTag(off, nw)
	}
}

func (a *Allocator) isDV(h heap.AreaHeader, off int64) bool {
	dv, _ := h.DV()
	return dv != 0 && dv == off && a.seg.Gint(off+format.WordSize) == format.KindDV
}

// writeDV installs [off, off+size) as the designated victim of h.
func (a *Allocator) writeDV(h heap.AreaHeader, off, size int64) {
	a.putTag(off, format.EncodeTag(size, format.StateSpecial))
	a.put(off+format.WordSize, format.KindDV)
	a.setDV(h, off, size)
}

func (a *Allocator) setDV(h heap.AreaHeader, off, size int64) {
	a.put(h.BucketOffset(format.DVBucket), off)
	a.put(h.BucketOffset(format.DVSizeBucket), size)
}
