package dirty

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/format"
)

func setupFileSegment(t testing.TB) *heap.Segment {
	t.Helper()
	seg, err := heap.Create(filepath.Join(t.TempDir(), "test.seg"), format.MinimalSegmentSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = seg.Close() })
	return seg
}

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := NewTracker(setupFileSegment(t))
	page := int64(os.Getpagesize())

	tracker.Add(page+100, 200)
	coalesced := tracker.coalesce()
	require.Equal(t, []Range{{Off: page, Len: page}}, coalesced)
}

func Test_DirtyTracker_CoalesceAdjacentAndOverlapping(t *testing.T) {
	tracker := NewTracker(setupFileSegment(t))
	page := int64(os.Getpagesize())

	tracker.Add(5*page, 10)
	tracker.Add(page, page)
	tracker.Add(2*page, page)
	tracker.Add(2*page+5, 3*page) // overlaps page 2..5
	tracker.Add(9*page, 1)

	require.Equal(t, []Range{
		{Off: page, Len: 5 * page},
		{Off: 9 * page, Len: page},
	}, tracker.DebugCoalescedRanges())
	require.Len(t, tracker.DebugRanges(), 5)
}

func Test_DirtyTracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := NewTracker(setupFileSegment(t))
	tracker.Add(100, 0)
	tracker.Add(100, -8)
	require.Zero(t, tracker.Len())
	require.Nil(t, tracker.DebugCoalescedRanges())
}

func Test_DirtyTracker_DataRangesSkipHeader(t *testing.T) {
	seg := setupFileSegment(t)
	tracker := NewTracker(seg)

	tracker.Add(format.HdrFreeOffset, format.WordSize)
	require.Empty(t, tracker.dataRanges())

	tracker.Add(seg.Size()-8, 8)
	ranges := tracker.dataRanges()
	require.Len(t, ranges, 1)
	require.Equal(t, seg.Size(), ranges[0].Off+ranges[0].Len)
	require.GreaterOrEqual(t, ranges[0].Off, format.AlignUp(format.SegmentDataStart, int64(os.Getpagesize())))
}

func Test_DirtyTracker_FlushPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flush.seg")
	seg, err := heap.Create(path, format.MinimalSegmentSize)
	require.NoError(t, err)
	defer seg.Close()
	tracker := NewTracker(seg)

	off := seg.Size() - 64
	seg.PutGint(off, 0x1234)
	tracker.Add(off, format.WordSize)
	seg.PutGint(format.HdrParentOffset, 99)
	tracker.Add(format.HdrParentOffset, format.WordSize)

	require.NoError(t, tracker.FlushDataOnly(context.Background()))
	require.Zero(t, tracker.Len())
	require.NoError(t, tracker.FlushHeaderAndMeta(context.Background(), FlushAuto))

	disk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, int64(0x1234), format.ReadGint(disk, off))
	require.Equal(t, int64(99), format.ReadGint(disk, format.HdrParentOffset))
}

func Test_DirtyTracker_MemorySegmentIsNoop(t *testing.T) {
	seg, err := heap.New(format.MinimalSegmentSize)
	require.NoError(t, err)
	tracker := NewTracker(seg)
	tracker.Add(format.SegmentDataStart, 128)

	require.NoError(t, tracker.FlushDataOnly(context.Background()))
	require.Zero(t, tracker.Len())
	require.NoError(t, tracker.FlushHeaderAndMeta(context.Background(), FlushFull))
}

func Test_DirtyTracker_Reset(t *testing.T) {
	tracker := NewTracker(setupFileSegment(t))
	tracker.Add(4096, 8)
	tracker.Reset()
	require.Zero(t, tracker.Len())
}
