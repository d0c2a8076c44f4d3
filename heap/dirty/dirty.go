package dirty

import (
	"context"
	"os"
	"sort"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/format"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// FlushMode controls durability of FlushHeaderAndMeta.
type FlushMode int

const (
	// FlushAuto syncs the header pages, then fdatasync()s the file. On
	// macOS this uses F_FULLFSYNC.
	FlushAuto FlushMode = iota

	// FlushDataOnly syncs the header pages without fdatasync. The caller
	// syncs later, e.g. after batching several operations.
	FlushDataOnly

	// FlushFull syncs the header pages and fdatasync()s, with F_FULLFSYNC
	// on macOS.
	FlushFull
)

// Range is a dirty byte range in segment offsets.
type Range struct {
	Off int64
	Len int64
}

// Tracker accumulates dirty ranges of one segment and flushes them.
//
// NOT thread-safe.
type Tracker struct {
	seg       *heap.Segment
	ranges    []Range
	pageSize  int64
	headerEnd int64
}

// NewTracker creates a dirty tracker for seg.
func NewTracker(seg *heap.Segment) *Tracker {
	page := int64(os.Getpagesize())
	return &Tracker{
		seg:       seg,
		ranges:    make([]Range, 0, defaultRangeCapacity),
		pageSize:  page,
		headerEnd: format.AlignUp(format.SegmentDataStart, page),
	}
}

// Add records a dirty range. It only appends; alignment and merging
// happen at flush time.
func (t *Tracker) Add(off, length int64) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: off, Len: length})
}

// Len returns the number of raw ranges recorded since the last flush.
func (t *Tracker) Len() int { return len(t.ranges) }

// FlushDataOnly flushes all dirty pages past the header pages.
//
// The context is checked before starting and between ranges. If it is
// cancelled midway some ranges are on disk and some are not; the ranges
// are kept so a later flush retries all of them.
func (t *Tracker) FlushDataOnly(ctx context.Context) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.persistent() {
		t.ranges = t.ranges[:0]
		return nil
	}
	if err := t.flushRanges(ctx, t.dataRanges()); err != nil {
		return err
	}
	t.ranges = t.ranges[:0]
	return nil
}

// FlushHeaderAndMeta flushes the header pages and, unless mode is
// FlushDataOnly, syncs the file descriptor.
func (t *Tracker) FlushHeaderAndMeta(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.persistent() {
		return nil
	}
	n := t.headerEnd
	if n > t.seg.Size() {
		n = t.seg.Size()
	}
	if err := t.flushRanges(ctx, []Range{{Off: 0, Len: n}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if mode == FlushDataOnly {
		return nil
	}
	return t.sync(mode == FlushFull)
}

// Reset drops every tracked range.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns a copy of the raw ranges.
func (t *Tracker) DebugRanges() []Range {
	out := make([]Range, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// DebugCoalescedRanges returns the page-aligned ranges a flush would write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

func (t *Tracker) persistent() bool {
	return t.seg != nil && t.seg.File() != nil && t.seg.Size() > 0
}

// dataRanges clips the coalesced ranges to the data pages.
func (t *Tracker) dataRanges() []Range {
	coalesced := t.coalesce()
	out := coalesced[:0]
	for _, r := range coalesced {
		end := r.Off + r.Len
		if end > t.seg.Size() {
			end = t.seg.Size()
		}
		if r.Off < t.headerEnd {
			r.Off = t.headerEnd
		}
		if end <= r.Off {
			continue
		}
		out = append(out, Range{Off: r.Off, Len: end - r.Off})
	}
	return out
}

// coalesce page-aligns all ranges, sorts them and merges overlapping or
// adjacent ones.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := format.AlignDown(r.Off, t.pageSize)
		end := format.AlignUp(r.Off+r.Len, t.pageSize)
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			if end := next.Off + next.Len; end > current.Off+current.Len {
				current.Len = end - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
