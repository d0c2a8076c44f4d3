package verify

import (
	"errors"
	"fmt"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/buf"
	"github.com/springgod/whitedb/internal/format"
)

// ErrCorruption matches every Inconsistency via errors.Is.
var ErrCorruption = errors.New("verify: segment corrupted")

// Inconsistency is one violated allocator invariant.
type Inconsistency struct {
	Area     string // area name, or "header"
	Offset   int64  // segment offset of the offending word, -1 if none
	Check    string // short name of the failed check
	Expected int64
	Observed int64
	Message  string
}

func (e Inconsistency) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s at offset %d: %s (expected %d, observed %d)",
			e.Area, e.Check, e.Offset, e.Message, e.Expected, e.Observed)
	}
	return fmt.Sprintf("%s: %s: %s (expected %d, observed %d)",
		e.Area, e.Check, e.Message, e.Expected, e.Observed)
}

// Is reports ErrCorruption.
func (e Inconsistency) Is(target error) bool { return target == ErrCorruption }

// Segment checks the header and then every area. It returns the first
// inconsistency found, or nil.
func Segment(seg *heap.Segment) error {
	if err := seg.Validate(); err != nil {
		return Inconsistency{
			Area: "header", Offset: -1, Check: "identity",
			Message: err.Error(),
		}
	}
	lock := seg.LockOffset()
	if lock%format.SynVarPadding != 0 || !buf.Within(lock, format.WordSize,
		format.LockStorageOffset, format.LockStorageOffset+format.LockStorageSize) {
		return Inconsistency{
			Area: "header", Offset: format.LocksOffset, Check: "lock slot",
			Expected: format.AlignUp(format.LockStorageOffset, format.SynVarPadding), Observed: lock,
			Message: "lock word outside its padded storage",
		}
	}
	for _, id := range heap.Areas {
		if incs := Area(seg, id); len(incs) > 0 {
			return incs[0]
		}
	}
	return nil
}

// Area checks one area and returns everything that is wrong with it, in
// the order found.
func Area(seg *heap.Segment, id heap.AreaID) []Inconsistency {
	c := &checker{seg: seg, h: seg.Area(id)}
	if !id.Valid() {
		c.report(-1, "area", 0, int64(id), "unknown area")
		return c.out
	}
	if !c.checkHeader() {
		return c.out
	}
	if c.h.IsFixed() {
		c.checkFixed()
	} else {
		c.checkVar()
	}
	return c.out
}

type checker struct {
	seg *heap.Segment
	h   heap.AreaHeader
	out []Inconsistency

	// free objects seen by the subarea walk, false until found in a bucket
	free map[int64]bool
}

func (c *checker) report(off int64, check string, expected, observed int64, msg string, args ...any) {
	c.out = append(c.out, Inconsistency{
		Area:     c.h.ID().String(),
		Offset:   off,
		Check:    check,
		Expected: expected,
		Observed: observed,
		Message:  fmt.Sprintf(msg, args...),
	})
}

// checkHeader validates the area header fields the walks rely on. It
// returns false when walking would read outside the segment.
func (c *checker) checkHeader() bool {
	objlen, fixed := c.h.ID().FixedLength()
	flag := int64(0)
	if fixed {
		flag = 1
	}
	if got := c.seg.Gint(c.h.FixedLengthOffset()); got != flag {
		c.report(c.h.FixedLengthOffset(), "fixedlength", flag, got, "area kind flag")
		return false
	}
	if fixed && c.h.ObjLength() != objlen {
		c.report(c.h.ObjLengthOffset(), "objlength", objlen, c.h.ObjLength(), "fixed object length")
		return false
	}
	last := c.h.LastSubarea()
	if last < 0 || last >= format.SubareaArraySize {
		c.report(c.h.LastSubareaOffset(), "subarea count", format.SubareaArraySize-1, int64(last),
			"last subarea index out of range")
		return false
	}
	// The free cursor itself may be corrupt; never trust it past the mapping.
	limit := min(c.seg.Free(), c.seg.Size())
	ok := true
	for i, sa := range c.h.Subareas() {
		o := c.h.SubareaOffset(i)
		switch {
		case sa.AlignedSize <= 0 || !buf.Within(sa.AlignedOffset, sa.AlignedSize, format.SegmentDataStart, limit):
			c.report(o, "subarea bounds", limit, sa.End(),
				"subarea %d [%d, %d) outside allocated segment space", i, sa.AlignedOffset, sa.End())
			ok = false
		case sa.AlignedOffset%format.SubareaAlignment != 0:
			c.report(o, "subarea alignment", 0, sa.AlignedOffset%format.SubareaAlignment,
				"subarea %d start not aligned", i)
			ok = false
		case !fixedOK(fixed, sa):
			c.report(o, "subarea size", 2*format.MarkerSize+format.MinObjectSize, sa.AlignedSize,
				"subarea %d too small for its markers", i)
			ok = false
		}
	}
	return ok
}

func fixedOK(fixed bool, sa heap.SubareaHeader) bool {
	return fixed || sa.AlignedSize >= 2*format.MarkerSize+format.MinObjectSize
}

func (c *checker) checkFixed() {
	objlen := c.h.ObjLength()
	var total int64
	subs := c.h.Subareas()
	for _, sa := range subs {
		total += sa.AlignedSize / objlen
	}

	seen := make(map[int64]struct{})
	for off := c.h.Freelist(); off != 0; off = c.seg.Gint(off) {
		i, sa, ok := c.h.SubareaFor(off)
		if !ok || off+objlen > sa.End() {
			c.report(off, "freelist bounds", 0, off, "free cell outside every subarea")
			return
		}
		if rem := (off - sa.AlignedOffset) % objlen; rem != 0 {
			c.report(off, "freelist stride", 0, rem, "free cell off the %d-byte stride of subarea %d", objlen, i)
			return
		}
		if _, dup := seen[off]; dup || int64(len(seen)) >= total {
			c.report(off, "freelist cycle", total, int64(len(seen)), "freelist revisits a cell")
			return
		}
		seen[off] = struct{}{}
	}
}

func (c *checker) checkVar() {
	c.free = make(map[int64]bool)
	dv, dvSize := c.h.DV()
	dvSeen := false

	for i, sa := range c.h.Subareas() {
		if c.walkSubarea(i, sa, dv, dvSize) {
			dvSeen = true
		}
	}
	if dv != 0 && !dvSeen {
		c.report(c.h.BucketOffset(format.DVBucket), "dv", dv, 0, "recorded victim not found by the walk")
	}
	if dv == 0 && dvSize != 0 {
		c.report(c.h.BucketOffset(format.DVSizeBucket), "dv size", 0, dvSize, "size recorded without a victim")
	}
	c.walkBuckets()
	for off, listed := range c.free {
		if !listed {
			c.report(off, "bucket membership", 1, 0, "free object in no bucket list")
		}
	}
}

// walkSubarea jumps from the start marker to the end marker by object
// size. It reports whether the victim was met.
func (c *checker) walkSubarea(i int, sa heap.SubareaHeader, dv, dvSize int64) bool {
	start := sa.AlignedOffset
	end := sa.End() - format.MarkerSize
	c.checkMarker(start, format.KindStart, "start marker")
	c.checkMarker(end, format.KindEnd, "end marker")

	dvSeen := false
	prevFree := false
	cur := start + format.MarkerSize
	for cur < end {
		w := format.ReadTag(c.seg.Bytes(), cur)
		t := format.DecodeTag(w)
		var size int64
		switch {
		case t.IsSpecial():
			size = t.Size
			kind := c.seg.Gint(cur + format.WordSize)
			if kind != format.KindDV || cur != dv {
				c.report(cur, "special object", dv, cur, "special tag (kind %d) that is not the recorded victim", kind)
				return dvSeen
			}
			dvSeen = true
			if size != dvSize {
				c.report(cur, "dv size", dvSize, size, "victim tag disagrees with recorded size")
			}
			if prevFree {
				c.report(cur, "free before dv", 0, 1, "free object right before the victim")
			}
			prevFree = false
		case t.IsFree():
			size = t.Size
			if size < format.MinObjectSize || size%format.Granularity != 0 || cur+size > end {
				c.report(cur, "free size", format.MinObjectSize, size, "bad free object size in subarea %d", i)
				return dvSeen
			}
			if mirror := format.ReadTag(c.seg.Bytes(), cur+size-format.WordSize); mirror != w {
				c.report(cur+size-format.WordSize, "mirror tag", int64(w), int64(mirror), "mirrored tag differs")
			}
			if prevFree {
				c.report(cur, "adjacent free", 0, 1, "two adjacent free objects")
			}
			c.free[cur] = false
			prevFree = true
		default:
			size = format.UsedObjectSize(w)
			if t.PrevFree() != prevFree {
				c.report(cur, "prev free bit", boolInt(prevFree), boolInt(t.PrevFree()),
					"predecessor-free bit disagrees with the walk")
			}
			prevFree = false
		}
		if size <= 0 || size%format.Granularity != 0 || cur+size > end {
			c.report(cur, "overrun", end, cur+size, "object runs past the end marker of subarea %d", i)
			return dvSeen
		}
		cur += size
	}
	if cur != end {
		c.report(cur, "walk end", end, cur, "walk missed the end marker of subarea %d", i)
	}
	return dvSeen
}

func (c *checker) checkMarker(off, kind int64, check string) {
	t := c.seg.Tag(off)
	if !t.IsSpecial() || t.Size != format.MarkerSize {
		c.report(off, check, int64(format.EncodeTag(format.MarkerSize, format.StateSpecial)), int64(t.Word()),
			"marker tag")
		return
	}
	if got := c.seg.Gint(off + format.WordSize); got != kind {
		c.report(off+format.WordSize, check, kind, got, "marker kind")
	}
}

func (c *checker) walkBuckets() {
	limit := c.seg.Size() / format.MinObjectSize
	for b := 0; b < format.ExactBuckets+format.VarBuckets; b++ {
		prev := c.h.BucketOffset(b)
		off := c.seg.Gint(prev)
		for n := int64(0); off != 0; n++ {
			if n > limit {
				c.report(c.h.BucketOffset(b), "bucket cycle", limit, n, "bucket %d list does not end", b)
				break
			}
			listed, known := c.free[off]
			if !known {
				c.report(off, "bucket entry", 0, off, "bucket %d links to something that is not a free object", b)
				break
			}
			if listed {
				c.report(off, "bucket duplicate", 1, 2, "free object listed twice (bucket %d)", b)
				break
			}
			c.free[off] = true

			size := c.seg.Tag(off).Size
			if got := format.BucketIndex(size); got != b {
				c.report(off, "bucket class", int64(b), int64(got), "object of %d bytes in the wrong bucket", size)
			}
			if back := c.seg.Gint(off + 2*format.WordSize); back != prev {
				c.report(off+2*format.WordSize, "back link", prev, back, "prev link of bucket %d entry", b)
			}
			prev = off
			off = c.seg.Gint(off + format.WordSize)
		}
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
