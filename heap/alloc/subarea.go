package alloc

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/format"
	"github.com/springgod/whitedb/internal/logger"
)

// newSubarea carves size bytes off the segment's free cursor and records
// them as the next subarea of h. The usable start is aligned to
// SubareaAlignment; the raw placement is kept in the header as well.
func (a *Allocator) newSubarea(h heap.AreaHeader, size int64) (heap.SubareaHeader, error) {
	if size < format.MinimalSubareaSize {
		return heap.SubareaHeader{}, fmt.Errorf("%w: subarea of %d bytes, minimum %d",
			ErrBadSize, size, format.MinimalSubareaSize)
	}
	idx := h.LastSubarea() + 1
	if idx >= format.SubareaArraySize {
		return heap.SubareaHeader{}, a.outOfSpace(h, size, "subarea table full")
	}

	free := a.seg.Free()
	end := free + size
	if end > a.seg.Size() || end < free {
		return heap.SubareaHeader{}, a.outOfSpace(h, size, "segment exhausted")
	}
	start := format.AlignUp(free, format.SubareaAlignment)
	sa := heap.SubareaHeader{
		Size:          size,
		Offset:        free,
		AlignedSize:   format.AlignDown(end-start, format.SubareaAlignment),
		AlignedOffset: start,
	}

	o := h.SubareaOffset(idx)
	a.put(o+format.SubareaSizeField, sa.Size)
	a.put(o+format.SubareaOffsetField, sa.Offset)
	a.put(o+format.SubareaAlignedSizeField, sa.AlignedSize)
	a.put(o+format.SubareaAlignedOffsetField, sa.AlignedOffset)
	a.put(h.LastSubareaOffset(), int64(idx))
	a.put(format.HdrFreeOffset, end)

	logger.Debug("subarea created",
		"area", h.ID().String(),
		"index", idx,
		"offset", sa.AlignedOffset,
		"size", humanize.IBytes(uint64(sa.AlignedSize)),
		"segment_left", humanize.IBytes(uint64(a.seg.Size()-end)))
	return sa, nil
}

// growSize picks the size of the next subarea of h so that one object of
// need bytes fits. The newest subarea size is doubled until it does; when
// the doubled size does not fit in the segment the smallest size that
// still holds the object is used instead.
func (a *Allocator) growSize(h heap.AreaHeader, need int64) (int64, error) {
	overhead := int64(format.SubareaAlignment)
	if !h.IsFixed() {
		overhead += 2 * format.MarkerSize
	}
	required := format.AlignUp(need+overhead, format.SubareaAlignment)
	if required < format.MinimalSubareaSize {
		required = format.MinimalSubareaSize
	}

	size := int64(format.InitialSubareaSize)
	if last := h.LastSubarea(); last >= 0 {
		size = h.Subarea(last).Size
	}
	size *= 2
	for size < required {
		if size > a.seg.Size() {
			break
		}
		size *= 2
	}

	room := a.seg.Size() - a.seg.Free()
	if size <= room && size >= required {
		return size, nil
	}
	if required <= room {
		return required, nil
	}
	return 0, a.outOfSpace(h, need, "no room for a subarea")
}

func (a *Allocator) outOfSpace(h heap.AreaHeader, size int64, reason string) error {
	a.stats.OutOfSpace++
	logger.Warn("allocation failed",
		"area", h.ID().String(),
		"size", size,
		"reason", reason,
		"subareas", h.LastSubarea()+1,
		"segment_free", humanize.IBytes(uint64(a.seg.Size()-a.seg.Free())))
	return fmt.Errorf("%w: %s: %s for %d bytes", ErrOutOfSpace, h.ID(), reason, size)
}

// formatVarSubarea installs the start and end markers of a fresh
// variable-length subarea and makes the space between them the area's
// designated victim. A previous victim is demoted to an ordinary free
// object first.
func (a *Allocator) formatVarSubarea(h heap.AreaHeader, sa heap.SubareaHeader) {
	start := sa.AlignedOffset
	end := sa.End() - format.MarkerSize
	a.writeMarker(start, format.KindStart)
	a.writeMarker(end, format.KindEnd)

	if dv, size := h.DV(); dv != 0 {
		a.setDV(h, 0, 0)
		if size > 0 {
			a.release(h, dv, size, false)
		}
	}
	a.writeDV(h, start+format.MarkerSize, end-start-format.MarkerSize)
}

// formatFixedSubarea chains every objlength cell of sa into the freelist,
// in address order, ahead of whatever the freelist held.
func (a *Allocator) formatFixedSubarea(h heap.AreaHeader, sa heap.SubareaHeader) int {
	objlen := h.ObjLength()
	n := sa.AlignedSize / objlen
	if n == 0 {
		return 0
	}
	next := h.Freelist()
	for i := n - 1; i >= 0; i-- {
		off := sa.AlignedOffset + i*objlen
		a.seg.PutGint(off, next)
		next = off
	}
	a.dt.Add(sa.AlignedOffset, n*objlen)
	a.put(h.FreelistOffset(), next)
	return int(n)
}

func (a *Allocator) writeMarker(off int64, kind int64) {
	a.putTag(off, format.EncodeTag(format.MarkerSize, format.StateSpecial))
	a.put(off+format.WordSize, kind)
	a.put(off+2*format.WordSize, 0)
	a.put(off+3*format.WordSize, 0)
}
