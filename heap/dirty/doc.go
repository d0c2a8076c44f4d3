// Package dirty tracks which byte ranges of a file-backed segment the
// allocator has modified and flushes them to disk.
//
// # Overview
//
// Every write the allocator makes to a segment (tags, links, header
// fields) is reported through the DirtyTracker interface. A Tracker keeps
// the raw ranges and coalesces them into sorted, page-aligned,
// non-overlapping ranges only when flushing.
//
// # Flush Order
//
// The segment header (everything before the first subarea, rounded up to
// a page) is flushed separately from the data pages:
//
//	tracker.FlushDataOnly(ctx)                  // subarea pages
//	tracker.FlushHeaderAndMeta(ctx, FlushAuto)  // header page(s) + fdatasync
//
// so a crash between the two leaves the old header describing data that
// is at least as new as it expects.
//
// # Backings
//
// Only file-backed segments have anything to flush. For process memory
// and shared memory segments both flush calls just clear the ranges.
//
// # Thread Safety
//
// Tracker instances are not thread-safe. They are used under the same
// database lock as the segment they track.
package dirty
