// Package heap owns the memory segment a database lives in.
//
// # Overview
//
// A Segment is one contiguous byte region. It can be plain process memory
// (New), a memory-mapped file (Create, Open) or a System V shared memory
// segment (CreateShared, AttachShared). Everything stored inside it refers to
// other parts of it by byte offset from the segment base, so the same bytes
// are valid at any address and in any process.
//
// # Layout
//
// The segment starts with a fixed header (see internal/format): identity
// fields, one area header per object category, blocks owned by the hash,
// index and logging collaborators, and the lock slot. Area data lives in
// subareas placed after the header by the allocator (package heap/alloc).
//
// # Header Views
//
// Segment.Area returns an AreaHeader, a read-only view over one area header.
// Only heap/alloc writes area headers.
//
// # Thread Safety
//
// Segments are not thread-safe. Every reader and writer must hold the
// database lock; the lock slot at LockOffset is laid out here but its
// protocol belongs to the caller.
package heap
