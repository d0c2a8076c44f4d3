package heap

import (
	"fmt"
	"os"

	"github.com/springgod/whitedb/internal/format"
)

// Segment is one database memory segment, backed by process memory, a
// mapped file or a shared memory segment.
type Segment struct {
	f       *os.File
	data    []byte
	release func() error
	shmKey  int
}

// FromBytes wraps b without copying. The caller keeps ownership of b;
// Close is a no-op.
func FromBytes(b []byte) *Segment {
	return &Segment{data: b}
}

func (s *Segment) Bytes() []byte { return s.data }

func (s *Segment) Size() int64 { return int64(len(s.data)) }

// FD returns the descriptor of the backing file, or -1 when the segment is
// not file backed.
func (s *Segment) FD() int {
	if s == nil || s.f == nil {
		return -1
	}
	return int(s.f.Fd())
}

// File returns the backing file, or nil.
func (s *Segment) File() *os.File { return s.f }

// SharedKey returns the System V key of a shared segment, or 0.
func (s *Segment) SharedKey() int { return s.shmKey }

// Close releases the backing storage. Offsets into the segment stay valid
// for whoever maps it next; pointers into Bytes do not.
func (s *Segment) Close() error {
	if s == nil || s.release == nil {
		return nil
	}
	release := s.release
	s.release = nil
	s.data = nil
	s.f = nil
	return release()
}

// Gint reads the gint at off.
func (s *Segment) Gint(off int64) int64 { return format.ReadGint(s.data, off) }

// PutGint writes the gint at off. Callers that track dirty ranges go
// through the allocator instead.
func (s *Segment) PutGint(off, v int64) { format.PutGint(s.data, off, v) }

// Tag reads the boundary tag word at off.
func (s *Segment) Tag(off int64) format.Tag {
	return format.DecodeTag(format.ReadTag(s.data, off))
}

// Mark returns the identity mark of the segment.
func (s *Segment) Mark() int64 { return s.Gint(format.HdrMarkOffset) }

// Version returns the format version the segment was initialised with.
func (s *Segment) Version() int64 { return s.Gint(format.HdrVersionOffset) }

// RecordedSize returns the segment size written at initialisation.
func (s *Segment) RecordedSize() int64 { return s.Gint(format.HdrSizeOffset) }

// Free returns the offset of the first byte never handed to a subarea.
func (s *Segment) Free() int64 { return s.Gint(format.HdrFreeOffset) }

// Key returns the shared memory key recorded in the header (0 for local).
func (s *Segment) Key() int64 { return s.Gint(format.HdrKeyOffset) }

// Parent returns the parent database offset recorded in the header.
func (s *Segment) Parent() int64 { return s.Gint(format.HdrParentOffset) }

// InitialAddress returns the informational base address recorded at
// initialisation.
func (s *Segment) InitialAddress() int64 { return s.Gint(format.HdrInitialAdrOffset) }

// LockOffset returns the offset of the cache-line aligned lock word.
func (s *Segment) LockOffset() int64 { return s.Gint(format.LocksOffset) }

// Area returns the read-only view of area id.
func (s *Segment) Area(id AreaID) AreaHeader {
	return AreaHeader{seg: s, id: id, base: id.HeaderOffset()}
}

// Validate checks the identity fields of an initialised segment.
func (s *Segment) Validate() error {
	if s.Size() < format.MinimalSegmentSize {
		return fmt.Errorf("%w: %d bytes", ErrTooSmall, s.Size())
	}
	if s.Mark() != format.MagicMark {
		return ErrNotSegment
	}
	if v := s.Version(); v != format.Version {
		return fmt.Errorf("%w: segment %d.%d.%d, library %d.%d.%d", ErrVersionMismatch,
			v>>16&0xff, v>>8&0xff, v&0xff,
			format.VersionMajor, format.VersionMinor, format.VersionRev)
	}
	if rec := s.RecordedSize(); rec != s.Size() {
		return fmt.Errorf("%w: header says %d, mapped %d", ErrSizeMismatch, rec, s.Size())
	}
	if free := s.Free(); free < format.SegmentDataStart || free > s.Size() {
		return fmt.Errorf("%w: free cursor %d outside [%d, %d]", ErrNotSegment,
			free, format.SegmentDataStart, s.Size())
	}
	return nil
}
