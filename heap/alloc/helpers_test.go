package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/heap/verify"
	"github.com/springgod/whitedb/internal/format"
)

// newTestAllocator initialises a fresh in-memory segment of size bytes.
func newTestAllocator(t testing.TB, size int64) *Allocator {
	t.Helper()
	seg, err := heap.New(size)
	require.NoError(t, err)
	a, err := Init(seg, 0, nil)
	require.NoError(t, err)
	return a
}

// requireConsistent fails the test on any inconsistency in any area.
func requireConsistent(t testing.TB, a *Allocator) {
	t.Helper()
	for _, id := range heap.Areas {
		incs := verify.Area(a.seg, id)
		require.Empty(t, incs, "area %s", id)
	}
	require.NoError(t, verify.Segment(a.seg))
}

// freelistLen counts the cells on a fixed-length freelist.
func freelistLen(a *Allocator, id heap.AreaID) int {
	n := 0
	for off := a.seg.Area(id).Freelist(); off != 0; off = a.seg.Gint(off) {
		n++
	}
	return n
}

// walkObjects returns (offset, tag) for every object between the markers
// of subarea i of area id, in address order.
func walkObjects(t testing.TB, a *Allocator, id heap.AreaID, i int) []format.Tag {
	t.Helper()
	sa := a.seg.Area(id).Subarea(i)
	end := sa.End() - format.MarkerSize
	var out []format.Tag
	for cur := sa.AlignedOffset + format.MarkerSize; cur < end; {
		w := format.ReadTag(a.seg.Bytes(), cur)
		tag := format.DecodeTag(w)
		size := tag.Size
		if tag.IsUsed() {
			size = format.UsedObjectSize(w)
		}
		require.Positive(t, size)
		out = append(out, tag)
		cur += size
		require.LessOrEqual(t, cur, end)
	}
	return out
}

// bucketMembers lists the offsets on bucket b.
func bucketMembers(a *Allocator, id heap.AreaID, b int) []int64 {
	var out []int64
	for off := a.seg.Area(id).Bucket(b); off != 0; off = a.seg.Gint(off + nextField) {
		out = append(out, off)
	}
	return out
}
