package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/format"
)

type recordingTracker struct {
	ranges [][2]int64
}

func (r *recordingTracker) Add(off, length int64) {
	r.ranges = append(r.ranges, [2]int64{off, length})
}

func (r *recordingTracker) covers(off int64) bool {
	for _, rg := range r.ranges {
		if off >= rg[0] && off < rg[0]+rg[1] {
			return true
		}
	}
	return false
}

func TestInitLayout(t *testing.T) {
	a := newTestAllocator(t, format.MinimalSegmentSize)
	seg := a.Segment()

	require.Equal(t, int64(format.MagicMark), seg.Mark())
	require.Equal(t, int64(format.Version), seg.Version())
	require.Equal(t, seg.Size(), seg.RecordedSize())
	require.Equal(t, seg.Size(), seg.Free(), "six initial subareas fill a minimal segment")
	require.NoError(t, seg.Validate())

	next := int64(format.SegmentDataStart)
	for _, id := range heap.Areas {
		h := seg.Area(id)
		require.Equal(t, 0, h.LastSubarea(), id.String())
		sa := h.Subarea(0)
		require.Equal(t, next, sa.AlignedOffset, id.String())
		require.Equal(t, int64(format.InitialSubareaSize), sa.AlignedSize, id.String())
		next = sa.End()

		if objlen, fixed := id.FixedLength(); fixed {
			require.True(t, h.IsFixed())
			require.Equal(t, objlen, h.ObjLength())
			require.Equal(t, int(format.InitialSubareaSize/objlen), freelistLen(a, id))
			require.Equal(t, sa.AlignedOffset, h.Freelist())
			continue
		}
		require.False(t, h.IsFixed())
		dv, size := h.DV()
		require.Equal(t, sa.AlignedOffset+format.MarkerSize, dv)
		require.Equal(t, int64(format.InitialSubareaSize-2*format.MarkerSize), size)
		require.True(t, seg.Tag(sa.AlignedOffset).IsSpecial())
		require.Equal(t, int64(format.KindStart), seg.Gint(sa.AlignedOffset+format.WordSize))
		require.Equal(t, int64(format.KindEnd), seg.Gint(sa.End()-format.MarkerSize+format.WordSize))
		require.Equal(t, int64(format.KindDV), seg.Gint(dv+format.WordSize))
	}

	lock := a.LockOffset()
	require.Zero(t, lock%format.SynVarPadding)
	require.GreaterOrEqual(t, lock, int64(format.LockStorageOffset))
	require.LessOrEqual(t, lock+format.WordSize, int64(format.LockStorageOffset+format.LockStorageSize))

	requireConsistent(t, a)
}

func TestInitRecordsKeyAndParent(t *testing.T) {
	seg, err := heap.New(format.MinimalSegmentSize)
	require.NoError(t, err)
	a, err := Init(seg, 4242, nil)
	require.NoError(t, err)
	require.Equal(t, int64(4242), seg.Key())
	require.Zero(t, a.Parent())

	a.SetParent(1 << 20)
	require.Equal(t, int64(1<<20), a.Parent())
}

func TestInitZeroesCollaboratorBlocks(t *testing.T) {
	seg, err := heap.New(format.MinimalSegmentSize)
	require.NoError(t, err)
	for i := range seg.Bytes()[:format.SegmentDataStart] {
		seg.Bytes()[i] = 0xAA
	}
	_, err = Init(seg, 0, nil)
	require.NoError(t, err)

	for off := int64(format.StrHashHeaderOffset); off < format.LocksOffset; off += format.WordSize {
		require.Zero(t, seg.Gint(off), "offset %d", off)
	}
}

func TestInitTooSmall(t *testing.T) {
	_, err := Init(heap.FromBytes(make([]byte, 4096)), 0, nil)
	require.ErrorIs(t, err, heap.ErrTooSmall)
}

func TestNewRequiresInitialisedSegment(t *testing.T) {
	seg, err := heap.New(format.MinimalSegmentSize)
	require.NoError(t, err)
	_, err = New(seg, nil)
	require.ErrorIs(t, err, heap.ErrNotSegment)

	_, err = Init(seg, 0, nil)
	require.NoError(t, err)
	a, err := New(seg, nil)
	require.NoError(t, err)
	require.Zero(t, a.Stats().VarAllocs)
}

func TestInitReportsDirtyRanges(t *testing.T) {
	seg, err := heap.New(format.MinimalSegmentSize)
	require.NoError(t, err)
	rec := &recordingTracker{}
	a, err := Init(seg, 0, rec)
	require.NoError(t, err)

	require.True(t, rec.covers(format.HdrMarkOffset))
	require.True(t, rec.covers(format.LocksOffset))
	sa := seg.Area(heap.AreaWord).Subarea(0)
	require.True(t, rec.covers(sa.End()-format.WordSize), "fixed chain is dirty")

	rec.ranges = nil
	off, err := a.AllocRecord(100)
	require.NoError(t, err)
	require.True(t, rec.covers(off))
	require.True(t, rec.covers(seg.Area(heap.AreaDataRec).BucketOffset(format.DVBucket)))
}
