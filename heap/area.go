package heap

import (
	"fmt"

	"github.com/springgod/whitedb/internal/format"
)

// AreaID names one allocator-managed area. The numeric order is the order
// of the area headers in the segment header.
type AreaID int

const (
	AreaDataRec AreaID = iota
	AreaLongStr
	AreaListCell
	AreaShortStr
	AreaWord
	AreaDoubleWord
)

// Areas lists every managed area in header order.
var Areas = [format.AreaCount]AreaID{
	AreaDataRec, AreaLongStr, AreaListCell, AreaShortStr, AreaWord, AreaDoubleWord,
}

var areaNames = [format.AreaCount]string{
	"datarec", "longstr", "listcell", "shortstr", "word", "doubleword",
}

func (a AreaID) String() string {
	if !a.Valid() {
		return fmt.Sprintf("AreaID(%d)", int(a))
	}
	return areaNames[a]
}

func (a AreaID) Valid() bool { return a >= 0 && int(a) < format.AreaCount }

// FixedLength returns the object length of a fixed-length area and true,
// or 0 and false for variable-length areas.
func (a AreaID) FixedLength() (int64, bool) {
	switch a {
	case AreaListCell:
		return format.ListCellSize, true
	case AreaShortStr:
		return format.ShortStrSize, true
	case AreaWord:
		return format.WordObjSize, true
	case AreaDoubleWord:
		return format.DoubleWordSize, true
	default:
		return 0, false
	}
}

// HeaderOffset returns the absolute offset of the area's header.
func (a AreaID) HeaderOffset() int64 {
	return format.AreaHeadersOffset + int64(a)*format.AreaHeaderSize
}

// SubareaHeader describes one contiguous region owned by an area.
type SubareaHeader struct {
	Size          int64 // bytes requested from the segment
	Offset        int64 // raw start
	AlignedSize   int64 // usable bytes after alignment
	AlignedOffset int64 // usable start
}

// End returns the first offset past the usable region.
func (s SubareaHeader) End() int64 { return s.AlignedOffset + s.AlignedSize }

// Contains reports whether off lies in the usable region.
func (s SubareaHeader) Contains(off int64) bool {
	return off >= s.AlignedOffset && off < s.End()
}

// AreaHeader is a read-only view over one area header in the segment.
type AreaHeader struct {
	seg  *Segment
	id   AreaID
	base int64
}

func (h AreaHeader) ID() AreaID { return h.id }

// Offset returns the absolute offset of the header.
func (h AreaHeader) Offset() int64 { return h.base }

// IsFixed reports the fixedlength flag.
func (h AreaHeader) IsFixed() bool { return h.seg.Gint(h.base+format.AreaFixedLengthField) != 0 }

// ObjLength returns the object length of a fixed-length area.
func (h AreaHeader) ObjLength() int64 { return h.seg.Gint(h.base + format.AreaObjLengthField) }

// Freelist returns the head of the fixed-length free chain, 0 when empty.
func (h AreaHeader) Freelist() int64 { return h.seg.Gint(h.FreelistOffset()) }

// LastSubarea returns the index of the newest subarea, -1 before the first.
func (h AreaHeader) LastSubarea() int { return int(h.seg.Gint(h.LastSubareaOffset())) }

// Subarea returns the header of subarea i.
func (h AreaHeader) Subarea(i int) SubareaHeader {
	o := h.SubareaOffset(i)
	return SubareaHeader{
		Size:          h.seg.Gint(o + format.SubareaSizeField),
		Offset:        h.seg.Gint(o + format.SubareaOffsetField),
		AlignedSize:   h.seg.Gint(o + format.SubareaAlignedSizeField),
		AlignedOffset: h.seg.Gint(o + format.SubareaAlignedOffsetField),
	}
}

// Subareas returns every recorded subarea in creation order.
func (h AreaHeader) Subareas() []SubareaHeader {
	last := h.LastSubarea()
	if last < 0 {
		return nil
	}
	if last >= format.SubareaArraySize {
		last = format.SubareaArraySize - 1
	}
	out := make([]SubareaHeader, 0, last+1)
	for i := 0; i <= last; i++ {
		out = append(out, h.Subarea(i))
	}
	return out
}

// SubareaFor returns the subarea whose usable region holds off.
func (h AreaHeader) SubareaFor(off int64) (int, SubareaHeader, bool) {
	for i, sa := range h.Subareas() {
		if sa.Contains(off) {
			return i, sa, true
		}
	}
	return -1, SubareaHeader{}, false
}

// Bucket returns the head of free bucket b, 0 when empty.
func (h AreaHeader) Bucket(b int) int64 { return h.seg.Gint(h.BucketOffset(b)) }

// DV returns the designated victim offset and size; off is 0 when there is none.
func (h AreaHeader) DV() (off, size int64) {
	return h.Bucket(format.DVBucket), h.Bucket(format.DVSizeBucket)
}

func (h AreaHeader) FixedLengthOffset() int64 { return h.base + format.AreaFixedLengthField }
func (h AreaHeader) ObjLengthOffset() int64   { return h.base + format.AreaObjLengthField }
func (h AreaHeader) FreelistOffset() int64    { return h.base + format.AreaFreelistField }
func (h AreaHeader) LastSubareaOffset() int64 { return h.base + format.AreaLastSubareaField }

func (h AreaHeader) SubareaOffset(i int) int64 {
	return h.base + format.AreaSubareaArray + int64(i)*format.SubareaHeaderSize
}

func (h AreaHeader) BucketOffset(b int) int64 {
	return h.base + format.AreaFreeBuckets + int64(b)*format.WordSize
}

// IsBucketSlot reports whether off is one of this area's bucket slots. The
// prev link of a bucket's first object points at its slot.
func (h AreaHeader) IsBucketSlot(off int64) bool {
	first := h.BucketOffset(0)
	last := h.BucketOffset(format.ExactBuckets + format.VarBuckets - 1)
	return off >= first && off <= last && (off-first)%format.WordSize == 0
}

// BucketOfSlot returns the bucket number of slot offset off.
func (h AreaHeader) BucketOfSlot(off int64) int {
	return int((off - h.BucketOffset(0)) / format.WordSize)
}
