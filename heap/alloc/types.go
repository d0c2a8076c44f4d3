package alloc

import "github.com/springgod/whitedb/heap/dirty"

// DirtyTracker is a type alias for the canonical interface defined in heap/dirty.
type DirtyTracker = dirty.DirtyTracker

// Stats counts allocator activity since the Allocator was created. It is
// process-local and not stored in the segment.
type Stats struct {
	FixedAllocs      int   // AllocFixed calls that succeeded
	FixedFrees       int   // FreeFixed calls that succeeded
	VarAllocs        int   // AllocVar calls that succeeded
	VarFrees         int   // FreeVar calls that succeeded
	BytesAllocated   int64 // occupied bytes handed out by AllocVar
	BytesFreed       int64 // occupied bytes returned by FreeVar
	BucketHits       int   // served from the request's own bucket
	ProbeHits        int   // served from a larger variable bucket
	DVHits           int   // served from the designated victim
	Splits           int   // bucket objects split with a re-bucketed tail
	CoalesceBackward int   // merges with a free predecessor
	CoalesceForward  int   // merges with a free successor
	DVAbsorbs        int   // frees that grew the designated victim
	SubareasCreated  int   // subareas added after initialisation
	SubareaBytes     int64 // bytes of those subareas
	OutOfSpace       int   // requests that failed with ErrOutOfSpace
}
