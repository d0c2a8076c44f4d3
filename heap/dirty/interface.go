package dirty

import "context"

// DirtyTracker is the minimal interface for reporting modified byte ranges.
// The allocator only needs this; it never decides when to flush.
type DirtyTracker interface {
	// Add marks [off, off+length) of the segment dirty.
	Add(off, length int64)
}

// FlushableTracker is implemented by trackers that can persist what they
// track. The database facade holds one of these.
type FlushableTracker interface {
	DirtyTracker

	// FlushDataOnly flushes dirty data pages, not the header.
	FlushDataOnly(ctx context.Context) error

	// FlushHeaderAndMeta flushes the header pages and syncs per mode.
	FlushHeaderAndMeta(ctx context.Context, mode FlushMode) error
}

// Discard drops every range. Use it when nothing needs persisting.
var Discard DirtyTracker = discard{}

type discard struct{}

func (discard) Add(int64, int64) {}
