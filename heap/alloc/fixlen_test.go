package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/format"
)

var fixedAreas = []heap.AreaID{heap.AreaListCell, heap.AreaShortStr, heap.AreaWord, heap.AreaDoubleWord}

func TestFixedAllocFreeRoundTrip(t *testing.T) {
	a := newTestAllocator(t, 1<<20)
	for _, id := range fixedAreas {
		t.Run(id.String(), func(t *testing.T) {
			h := a.Segment().Area(id)
			head, n := h.Freelist(), freelistLen(a, id)

			off, err := a.AllocFixed(id)
			require.NoError(t, err)
			require.Equal(t, head, off)
			require.Equal(t, n-1, freelistLen(a, id))

			require.NoError(t, a.FreeFixed(id, off))
			require.Equal(t, head, h.Freelist())
			require.Equal(t, n, freelistLen(a, id))
		})
	}
	requireConsistent(t, a)
}

func TestFixedAllocAddressOrder(t *testing.T) {
	a := newTestAllocator(t, 1<<20)
	sa := a.Segment().Area(heap.AreaListCell).Subarea(0)
	for i := int64(0); i < 10; i++ {
		off, err := a.AllocListCell()
		require.NoError(t, err)
		require.Equal(t, sa.AlignedOffset+i*format.ListCellSize, off)
	}
}

func TestFixedNamedHelpers(t *testing.T) {
	a := newTestAllocator(t, 1<<20)
	type pair struct {
		id    heap.AreaID
		alloc func() (int64, error)
		free  func(int64) error
	}
	for _, p := range []pair{
		{heap.AreaListCell, a.AllocListCell, a.FreeListCell},
		{heap.AreaShortStr, a.AllocShortStr, a.FreeShortStr},
		{heap.AreaWord, a.AllocWord, a.FreeWord},
		{heap.AreaDoubleWord, a.AllocDoubleWord, a.FreeDoubleWord},
	} {
		off, err := p.alloc()
		require.NoError(t, err)
		_, _, in := a.Segment().Area(p.id).SubareaFor(off)
		require.True(t, in, p.id.String())
		size, err := a.ObjectSize(p.id, off)
		require.NoError(t, err)
		objlen, _ := p.id.FixedLength()
		require.Equal(t, objlen, size)
		require.NoError(t, p.free(off))
	}
	require.Equal(t, 4, a.Stats().FixedAllocs)
	require.Equal(t, 4, a.Stats().FixedFrees)
}

func TestFixedGrowsByDoubling(t *testing.T) {
	a := newTestAllocator(t, 1<<20)
	h := a.Segment().Area(heap.AreaWord)
	n := freelistLen(a, heap.AreaWord)
	for i := 0; i < n; i++ {
		_, err := a.AllocWord()
		require.NoError(t, err)
	}
	require.Zero(t, h.Freelist())

	off, err := a.AllocWord()
	require.NoError(t, err)
	require.Equal(t, 1, h.LastSubarea())
	sa := h.Subarea(1)
	require.Equal(t, int64(2*format.InitialSubareaSize), sa.Size)
	require.Equal(t, sa.AlignedOffset, off)
	require.Equal(t, int(sa.AlignedSize/format.WordObjSize)-1, freelistLen(a, heap.AreaWord))
	require.Equal(t, 1, a.Stats().SubareasCreated)
	requireConsistent(t, a)
}

func TestFixedOutOfSpace(t *testing.T) {
	a := newTestAllocator(t, format.MinimalSegmentSize)
	n := freelistLen(a, heap.AreaDoubleWord)
	for i := 0; i < n; i++ {
		_, err := a.AllocDoubleWord()
		require.NoError(t, err)
	}
	free := a.Segment().Free()

	_, err := a.AllocDoubleWord()
	require.ErrorIs(t, err, ErrOutOfSpace)
	require.Equal(t, free, a.Segment().Free())
	require.Equal(t, 0, a.Segment().Area(heap.AreaDoubleWord).LastSubarea())
	require.Equal(t, 1, a.Stats().OutOfSpace)
}

func TestFixedWrongArea(t *testing.T) {
	a := newTestAllocator(t, 1<<20)
	_, err := a.AllocFixed(heap.AreaDataRec)
	require.ErrorIs(t, err, ErrWrongArea)
	require.ErrorIs(t, err, ErrBadRequest)

	_, err = a.AllocFixed(heap.AreaID(42))
	require.ErrorIs(t, err, ErrWrongArea)
	require.ErrorIs(t, err, heap.ErrBadArea)
	_, err = a.ObjectSize(heap.AreaID(-1), format.SegmentDataStart)
	require.ErrorIs(t, err, heap.ErrBadArea)

	require.ErrorIs(t, a.FreeFixed(heap.AreaLongStr, format.SegmentDataStart), ErrWrongArea)
	require.ErrorIs(t, a.FreeFixed(heap.AreaWord, 0), ErrInvalidOffset)
	require.ErrorIs(t, a.FreeFixed(heap.AreaWord, a.Segment().Size()), ErrInvalidOffset)
}

func TestFreeFixedRejectsHeaderAndUnassignedSpace(t *testing.T) {
	a := newTestAllocator(t, 1<<20)
	seg := a.Segment()
	version := seg.Version()
	head := seg.Area(heap.AreaWord).Freelist()

	// Header fields, the end of the header, space after the free cursor
	// and an unaligned offset inside the word subarea.
	for _, off := range []int64{
		format.HdrVersionOffset,
		format.AreaHeadersOffset,
		format.SegmentDataStart - format.WordSize,
		seg.Free(),
		seg.Area(heap.AreaWord).Subarea(0).AlignedOffset + 4,
	} {
		require.ErrorIs(t, a.FreeFixed(heap.AreaWord, off), ErrInvalidOffset, "offset %d", off)
	}
	require.Equal(t, version, seg.Version())
	require.Equal(t, head, seg.Area(heap.AreaWord).Freelist())
	require.NoError(t, seg.Validate())
	requireConsistent(t, a)
}
