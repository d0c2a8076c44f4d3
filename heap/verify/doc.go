// Package verify checks the allocator structures of a segment out of band.
//
// # Overview
//
// The allocator does no validation on its hot paths. This package is the
// tool for finding corruption after the fact: it walks every subarea of
// an area from start marker to end marker, every free bucket list and
// every fixed-length freelist, and reports what disagrees.
//
// Checks on variable-length areas:
//   - start and end markers in place and tagged special
//   - the size-jump walk lands exactly on the end marker
//   - predecessor-free bits match the object before
//   - no two adjacent free objects, nothing free right before the victim
//   - leading and mirrored tags of free objects agree
//   - the victim's tag matches its recorded offset and size
//   - bucket lists hold only free objects of their own size class, with
//     consistent back links, no cycles and no object missing from a list
//
// Checks on fixed-length areas:
//   - freelist cells lie inside a subarea on an objlength stride
//   - the freelist has no cycles
//
// # Usage
//
//	for _, inc := range verify.Area(seg, heap.AreaDataRec) {
//	    fmt.Println(inc)
//	}
//
//	if err := verify.Segment(seg); errors.Is(err, verify.ErrCorruption) {
//	    // discard or rebuild the segment
//	}
//
// Nothing here repairs a segment. The checks read only and must run under
// the same database lock as the allocator.
package verify
