// Package format houses the binary layout of a database memory segment: the
// segment header, the per-area headers, the boundary tag encoding of heap
// objects and the free bucket numbering. Everything here is a pure function
// of its inputs so the allocator, the checker and tests can share one
// definition of the on-segment format.
package format

const (
	// WordSize is the byte width of a gint. Every header field, every offset
	// and every boundary tag is one gint.
	WordSize = 8

	// Granularity is the unit all variable-length object sizes are multiples of.
	Granularity = WordSize

	// ObjectAlignment is the strict alignment of every object start (8 bytes),
	// independent of the gint width.
	ObjectAlignment = 8

	// ObjectAlignmentMask is ObjectAlignment - 1.
	ObjectAlignmentMask = ObjectAlignment - 1

	// MinObjectSize is the smallest variable-length object: tag, next, prev
	// and the mirrored tag of a free object.
	MinObjectSize = 4 * WordSize

	// MarkerSize is the size of the start and end sentinels of a subarea.
	MarkerSize = 4 * WordSize
)

// Segment identity.
const (
	// MagicMark is stored in the first gint of every initialised segment.
	MagicMark = 1232319011

	VersionMajor = 0
	VersionMinor = 7
	VersionRev   = 2

	// Version is written to the header for compatibility checks by whoever
	// restores a persisted segment.
	Version = VersionMajor<<16 | VersionMinor<<8 | VersionRev
)

// Subarea policy.
const (
	// SubareaArraySize is the number of subareas an area can ever own.
	SubareaArraySize = 64

	// InitialSubareaSize is the size of the first subarea of every area.
	InitialSubareaSize = 8192

	// MinimalSubareaSize filters out pathological tiny growth requests.
	MinimalSubareaSize = 8192

	// SubareaAlignment is the alignment of the usable start of a subarea.
	SubareaAlignment = 8

	// SynVarPadding is the cache line padding of the lock word.
	SynVarPadding = 128
)

// Free bucket numbering.
const (
	ExactBuckets = 256
	VarBuckets   = 32
	CacheBuckets = 2

	// DVBucket holds the offset of the designated victim.
	DVBucket = ExactBuckets + VarBuckets
	// DVSizeBucket holds the byte size of the designated victim.
	DVSizeBucket = ExactBuckets + VarBuckets + 1

	TotalBuckets = ExactBuckets + VarBuckets + CacheBuckets
)

// Fixed object lengths.
const (
	ListCellSize   = 2 * WordSize
	ShortStrSize   = 32
	WordObjSize    = WordSize
	DoubleWordSize = 2 * WordSize
)

// Second gint of special objects. All three are tagged StateSpecial.
const (
	KindStart = 0
	KindDV    = 1
	KindEnd   = 2
)

// SubareaHeader layout (offsets within one subarea header).
const (
	SubareaSizeField          = 0
	SubareaOffsetField        = 1 * WordSize
	SubareaAlignedSizeField   = 2 * WordSize
	SubareaAlignedOffsetField = 3 * WordSize

	SubareaHeaderSize = 4 * WordSize
)

// AreaHeader layout (offsets within one area header).
const (
	AreaFixedLengthField = 0
	AreaObjLengthField   = 1 * WordSize
	AreaFreelistField    = 2 * WordSize
	AreaLastSubareaField = 3 * WordSize
	AreaSubareaArray     = 4 * WordSize
	AreaFreeBuckets      = AreaSubareaArray + SubareaArraySize*SubareaHeaderSize

	AreaHeaderSize = AreaFreeBuckets + TotalBuckets*WordSize
)

// AreaCount is the number of allocator-managed areas.
const AreaCount = 6

// Segment header layout (absolute offsets from the segment base).
const (
	HdrMarkOffset       = 0
	HdrVersionOffset    = 1 * WordSize
	HdrSizeOffset       = 2 * WordSize
	HdrFreeOffset       = 3 * WordSize
	HdrInitialAdrOffset = 4 * WordSize
	HdrKeyOffset        = 5 * WordSize
	HdrParentOffset     = 6 * WordSize

	// AreaHeadersOffset is where the first of AreaCount area headers starts,
	// in the order datarec, longstr, listcell, shortstr, word, doubleword.
	AreaHeadersOffset = 7 * WordSize

	StrHashHeaderOffset = AreaHeadersOffset + AreaCount*AreaHeaderSize
	StrHashHeaderSize   = 5 * WordSize

	IndexControlOffset = StrHashHeaderOffset + StrHashHeaderSize
	IndexControlSize   = (1 + MaxIndexedFieldNr + 1) * WordSize

	// TNodeAreaOffset and IndexHdrAreaOffset are area headers owned by the
	// index collaborator. The allocator lays them out and never touches them.
	TNodeAreaOffset    = IndexControlOffset + IndexControlSize
	IndexHdrAreaOffset = TNodeAreaOffset + AreaHeaderSize

	LoggingOffset = IndexHdrAreaOffset + AreaHeaderSize
	LoggingSize   = 6 * WordSize

	LocksOffset        = LoggingOffset + LoggingSize
	LockStorageOffset  = LocksOffset + WordSize
	LockStorageSize    = SynVarPadding << 1
	LocksSize          = WordSize + LockStorageSize
	HeaderSize         = LocksOffset + LocksSize
	MaxIndexedFieldNr  = 127
	SegmentDataStart   = (HeaderSize + SubareaAlignment - 1) &^ (SubareaAlignment - 1)
	MinimalSegmentSize = SegmentDataStart + AreaCount*InitialSubareaSize
)
