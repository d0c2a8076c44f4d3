// Package alloc implements object allocation inside a database segment.
//
// # Overview
//
// A segment holds six areas, one per object category. Four hold
// fixed-length objects and two hold variable-length ones:
//
//	listcell, shortstr, word, doubleword   fixed length, one freelist each
//	datarec, longstr                        variable length, boundary tags
//
// Each area owns up to 64 subareas. Init creates the first one of every
// area; later ones are carved off the segment's free cursor when an area
// runs dry, each twice the size of the one before while that still fits.
//
// # Fixed-Length Areas
//
// A free cell holds the offset of the next free cell, 0 at the end of the
// chain. AllocFixed pops the head and FreeFixed pushes onto it.
//
// # Variable-Length Areas
//
// Objects carry a one-word boundary tag: the size with two state bits in
// the low end (see internal/format). Free objects are kept in 288 doubly
// linked bucket lists, 256 of a single size each plus 32 for exponentially
// growing size ranges, and repeat their tag in their last word so a
// following object can find their start when it is freed.
//
// One free span per area, the designated victim, is kept out of the
// buckets. Requests no bucket can serve are split off its front. Every
// subarea starts and ends with a four-word marker so neighbour lookups
// never leave the subarea.
//
// Invariants kept by every call:
//   - no two free objects are adjacent
//   - nothing free sits right before the designated victim
//   - an in-use object's predecessor-free bit matches its predecessor
//
// # Usage
//
//	seg, _ := heap.New(64 << 20)
//	a, err := alloc.Init(seg, 0, nil)
//	if err != nil {
//	    return err
//	}
//	rec, err := a.AllocRecord(120)
//	...
//	err = a.FreeRecord(rec)
//
// Offsets returned by AllocVar point at the object's tag word; payload
// starts one word later.
//
// # Thread Safety
//
// An Allocator is not safe for concurrent use. Callers hold the database
// lock (see Allocator.LockOffset) across every call, including read-only
// ones such as ObjectSize.
package alloc
