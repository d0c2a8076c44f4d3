package alloc

import (
	"fmt"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/buf"
	"github.com/springgod/whitedb/internal/format"
)

// AllocFixed pops one object off the freelist of fixed-length area id. An
// empty freelist is refilled from a new subarea first.
func (a *Allocator) AllocFixed(id heap.AreaID) (int64, error) {
	h, err := a.fixedArea(id)
	if err != nil {
		return 0, err
	}
	head := h.Freelist()
	if head == 0 {
		size, err := a.growSize(h, h.ObjLength())
		if err != nil {
			return 0, err
		}
		sa, err := a.newSubarea(h, size)
		if err != nil {
			return 0, err
		}
		a.formatFixedSubarea(h, sa)
		a.stats.SubareasCreated++
		a.stats.SubareaBytes += sa.Size
		head = h.Freelist()
	}
	a.put(h.FreelistOffset(), a.seg.Gint(head))
	a.stats.FixedAllocs++
	return head, nil
}

// FreeFixed pushes the object at off back onto the freelist of area id.
// Only the bounds of the space handed out to areas are checked; use the
// consistency checker to find objects freed into the wrong area.
func (a *Allocator) FreeFixed(id heap.AreaID, off int64) error {
	h, err := a.fixedArea(id)
	if err != nil {
		return err
	}
	limit := min(a.seg.Free(), a.seg.Size())
	if off%format.ObjectAlignment != 0 || !buf.Within(off, h.ObjLength(), format.SegmentDataStart, limit) {
		return fmt.Errorf("%w: %s object at %d", ErrInvalidOffset, id, off)
	}
	a.put(off, h.Freelist())
	a.put(h.FreelistOffset(), off)
	a.stats.FixedFrees++
	return nil
}

func (a *Allocator) AllocListCell() (int64, error)   { return a.AllocFixed(heap.AreaListCell) }
func (a *Allocator) AllocShortStr() (int64, error)   { return a.AllocFixed(heap.AreaShortStr) }
func (a *Allocator) AllocWord() (int64, error)       { return a.AllocFixed(heap.AreaWord) }
func (a *Allocator) AllocDoubleWord() (int64, error) { return a.AllocFixed(heap.AreaDoubleWord) }

func (a *Allocator) FreeListCell(off int64) error   { return a.FreeFixed(heap.AreaListCell, off) }
func (a *Allocator) FreeShortStr(off int64) error   { return a.FreeFixed(heap.AreaShortStr, off) }
func (a *Allocator) FreeWord(off int64) error       { return a.FreeFixed(heap.AreaWord, off) }
func (a *Allocator) FreeDoubleWord(off int64) error { return a.FreeFixed(heap.AreaDoubleWord, off) }
