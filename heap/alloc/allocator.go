package alloc

import (
	"fmt"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/heap/dirty"
	"github.com/springgod/whitedb/internal/format"
)

// Allocator hands out and takes back objects in the areas of one segment.
//
// Every method assumes the caller holds the database lock for the whole
// call. No method blocks, and none can be cancelled midway: a call either
// returns an error before touching the segment or runs to completion.
//
// NOT thread-safe.
type Allocator struct {
	seg   *heap.Segment
	dt    DirtyTracker
	stats Stats
}

// New attaches an allocator to an already initialised segment. Writes are
// reported to dt; pass nil when nothing needs flushing.
func New(seg *heap.Segment, dt DirtyTracker) (*Allocator, error) {
	if err := seg.Validate(); err != nil {
		return nil, err
	}
	return newAllocator(seg, dt), nil
}

func newAllocator(seg *heap.Segment, dt DirtyTracker) *Allocator {
	if dt == nil {
		dt = dirty.Discard
	}
	return &Allocator{seg: seg, dt: dt}
}

// Segment returns the segment the allocator works on.
func (a *Allocator) Segment() *heap.Segment { return a.seg }

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats { return a.stats }

// Parent returns the parent database offset stored in the header.
func (a *Allocator) Parent() int64 { return a.seg.Parent() }

// SetParent records the offset of a parent database in the header.
func (a *Allocator) SetParent(off int64) { a.put(format.HdrParentOffset, off) }

// LockOffset returns the offset of the lock word the external lock
// protocol synchronises on.
func (a *Allocator) LockOffset() int64 { return a.seg.LockOffset() }

// BucketIndexFor maps an object size in bytes to its free bucket.
func BucketIndexFor(size int64) int { return format.BucketIndex(size) }

// ObjectSize returns the bytes an in-use object at off really occupies:
// objlength for fixed-length areas, the decoded boundary tag otherwise.
func (a *Allocator) ObjectSize(id heap.AreaID, off int64) (int64, error) {
	if !id.Valid() {
		return 0, fmt.Errorf("%w: %w %d", ErrWrongArea, heap.ErrBadArea, int(id))
	}
	h := a.seg.Area(id)
	if h.IsFixed() {
		if _, _, ok := h.SubareaFor(off); !ok {
			return 0, fmt.Errorf("%w: %s object at %d", ErrInvalidOffset, id, off)
		}
		return h.ObjLength(), nil
	}
	t, _, err := a.usedVarObject(h, off)
	if err != nil {
		return 0, err
	}
	return format.UsedObjectSize(t.Word()), nil
}

func (a *Allocator) put(off, v int64) {
	a.seg.PutGint(off, v)
	a.dt.Add(off, format.WordSize)
}

func (a *Allocator) putTag(off int64, w uint64) {
	a.put(off, int64(w))
}

func (a *Allocator) fixedArea(id heap.AreaID) (heap.AreaHeader, error) {
	if !id.Valid() {
		return heap.AreaHeader{}, fmt.Errorf("%w: %w %d", ErrWrongArea, heap.ErrBadArea, int(id))
	}
	h := a.seg.Area(id)
	if !h.IsFixed() {
		return heap.AreaHeader{}, fmt.Errorf("%w: %s is variable-length", ErrWrongArea, id)
	}
	return h, nil
}

func (a *Allocator) varArea(id heap.AreaID) (heap.AreaHeader, error) {
	if !id.Valid() {
		return heap.AreaHeader{}, fmt.Errorf("%w: %w %d", ErrWrongArea, heap.ErrBadArea, int(id))
	}
	h := a.seg.Area(id)
	if h.IsFixed() {
		return heap.AreaHeader{}, fmt.Errorf("%w: %s is fixed-length", ErrWrongArea, id)
	}
	return h, nil
}
