package wgdb

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/format"
)

// AreaUsage summarises one area.
type AreaUsage struct {
	Area     heap.AreaID
	Subareas int
	Capacity int64 // bytes objects can occupy
	Free     int64 // of which free: freelist cells, or bucketed objects plus the victim
}

// Used returns Capacity - Free.
func (u AreaUsage) Used() int64 { return u.Capacity - u.Free }

func (u AreaUsage) String() string {
	return fmt.Sprintf("%-10s %2d subareas  %9s capacity  %9s used  %9s free",
		u.Area, u.Subareas,
		humanize.IBytes(uint64(u.Capacity)),
		humanize.IBytes(uint64(u.Used())),
		humanize.IBytes(uint64(u.Free)))
}

// Usage is a snapshot of every area and the segment's unassigned space.
type Usage struct {
	Areas       []AreaUsage
	SegmentSize int64
	Unassigned  int64 // bytes after the free cursor
}

func (u Usage) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "segment %s, %s not yet assigned to an area\n",
		humanize.IBytes(uint64(u.SegmentSize)), humanize.IBytes(uint64(u.Unassigned)))
	for _, a := range u.Areas {
		b.WriteString(a.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Usage walks the freelists and buckets of every area. Run Check first on
// a segment that may be corrupt; the walks trust the links.
func (db *DB) Usage() Usage {
	u := Usage{
		SegmentSize: db.seg.Size(),
		Unassigned:  db.seg.Size() - db.seg.Free(),
	}
	for _, id := range heap.Areas {
		u.Areas = append(u.Areas, areaUsage(db.seg, id))
	}
	return u
}

func areaUsage(seg *heap.Segment, id heap.AreaID) AreaUsage {
	h := seg.Area(id)
	subs := h.Subareas()
	u := AreaUsage{Area: id, Subareas: len(subs)}
	limit := seg.Size() / format.WordSize

	if h.IsFixed() {
		objlen := h.ObjLength()
		for _, sa := range subs {
			u.Capacity += sa.AlignedSize / objlen * objlen
		}
		for off, n := h.Freelist(), int64(0); off != 0 && n < limit; off, n = seg.Gint(off), n+1 {
			u.Free += objlen
		}
		return u
	}

	for _, sa := range subs {
		u.Capacity += sa.AlignedSize - 2*format.MarkerSize
	}
	for b := 0; b < format.ExactBuckets+format.VarBuckets; b++ {
		for off, n := h.Bucket(b), int64(0); off != 0 && n < limit; off, n = seg.Gint(off+format.WordSize), n+1 {
			u.Free += seg.Tag(off).Size
		}
	}
	_, dvSize := h.DV()
	u.Free += dvSize
	return u
}
