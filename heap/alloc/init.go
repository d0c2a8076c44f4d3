package alloc

import (
	"fmt"
	"unsafe"

	"github.com/dustin/go-humanize"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/format"
	"github.com/springgod/whitedb/internal/logger"
)

// Init lays out a fresh database in seg and returns an allocator for it.
//
// The whole header is zeroed, including the blocks owned by the hash,
// index and logging collaborators. Every area gets its first subarea of
// InitialSubareaSize bytes: fixed-length areas as one freelist chain,
// variable-length areas as a designated victim between two markers. The
// identity mark is written last, so a segment interrupted halfway through
// never validates.
func Init(seg *heap.Segment, key int64, dt DirtyTracker) (*Allocator, error) {
	size := seg.Size()
	if size < format.MinimalSegmentSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", heap.ErrTooSmall, size, format.MinimalSegmentSize)
	}
	a := newAllocator(seg, dt)

	clear(seg.Bytes()[:format.SegmentDataStart])
	a.dt.Add(0, format.SegmentDataStart)

	a.put(format.HdrVersionOffset, format.Version)
	a.put(format.HdrSizeOffset, size)
	a.put(format.HdrFreeOffset, format.SegmentDataStart)
	a.put(format.HdrInitialAdrOffset, int64(uintptr(unsafe.Pointer(unsafe.SliceData(seg.Bytes())))))
	a.put(format.HdrKeyOffset, key)
	a.put(format.HdrParentOffset, 0)

	for _, id := range heap.Areas {
		if err := a.initArea(id); err != nil {
			return nil, fmt.Errorf("alloc: init %s: %w", id, err)
		}
	}
	a.initLock()

	a.put(format.HdrMarkOffset, format.MagicMark)
	a.stats = Stats{}

	logger.Info("segment initialised",
		"size", humanize.IBytes(uint64(size)),
		"key", key,
		"header", humanize.IBytes(format.HeaderSize),
		"free", humanize.IBytes(uint64(size-seg.Free())))
	return a, nil
}

func (a *Allocator) initArea(id heap.AreaID) error {
	h := a.seg.Area(id)
	objlen, fixed := id.FixedLength()
	if fixed {
		a.put(h.FixedLengthOffset(), 1)
		a.put(h.ObjLengthOffset(), objlen)
	}
	a.put(h.LastSubareaOffset(), -1)

	sa, err := a.newSubarea(h, format.InitialSubareaSize)
	if err != nil {
		return err
	}
	if fixed {
		a.formatFixedSubarea(h, sa)
	} else {
		a.formatVarSubarea(h, sa)
	}
	return nil
}

// initLock points the lock word at the first cache-line boundary inside the
// padded lock storage, so the synchronisation slot never shares a line with
// other header fields.
func (a *Allocator) initLock() {
	slot := format.AlignUp(format.LockStorageOffset, format.SynVarPadding)
	a.put(format.LocksOffset, slot)
}
