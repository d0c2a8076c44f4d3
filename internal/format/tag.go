package format

import "fmt"

// TagState is the two low bits of a boundary tag.
//
//	00  in use, predecessor in use
//	10  in use, predecessor free
//	01  free
//	11  special (designated victim, subarea start and end markers)
type TagState uint8

const (
	StateUsed         TagState = 0b00
	StateFree         TagState = 0b01
	StateUsedPrevFree TagState = 0b10
	StateSpecial      TagState = 0b11

	stateMask   = 0b11
	prevFreeBit = 0b10
	granuleMask = Granularity - 1
)

func (s TagState) String() string {
	switch s {
	case StateUsed:
		return "used"
	case StateFree:
		return "free"
	case StateUsedPrevFree:
		return "used(prev free)"
	case StateSpecial:
		return "special"
	default:
		return fmt.Sprintf("TagState(%d)", uint8(s))
	}
}

// Tag is a decoded boundary tag word.
type Tag struct {
	Size  int64
	State TagState
}

// EncodeTag masks size down to the granularity and ORs in the state bits.
func EncodeTag(size int64, st TagState) uint64 {
	return uint64(size)&^granuleMask | uint64(st&stateMask)
}

// DecodeTag splits a tag word into size and state. The size is the word
// with the two state bits masked off.
func DecodeTag(w uint64) Tag {
	return Tag{
		Size:  int64(w &^ stateMask),
		State: TagState(w & stateMask),
	}
}

// Word re-encodes t.
func (t Tag) Word() uint64 { return EncodeTag(t.Size, t.State) }

func (t Tag) IsFree() bool    { return t.State == StateFree }
func (t Tag) IsSpecial() bool { return t.State == StateSpecial }

// IsUsed reports a normal in-use object (00 or 10).
func (t Tag) IsUsed() bool { return t.State&StateFree == 0 }

// PrevFree reports the predecessor-free bit of a normal in-use object.
func (t Tag) PrevFree() bool { return t.State == StateUsedPrevFree }

func (t Tag) String() string {
	return fmt.Sprintf("%d/%s", t.Size, t.State)
}

// UsedObjectSize derives the bytes an in-use object really occupies from
// its stored tag. The stored size may be below the minimum or unaligned
// where the gint is narrower than the object alignment; the occupied size
// never is.
func UsedObjectSize(w uint64) int64 {
	size := DecodeTag(w).Size
	if size <= MinObjectSize {
		return MinObjectSize
	}
	if size%ObjectAlignment != 0 {
		return Align8(size)
	}
	return size
}

// SetPrevFree returns w with the predecessor-free bit of a normal in-use
// object set or cleared. Free and special words are returned unchanged.
func SetPrevFree(w uint64, free bool) uint64 {
	t := DecodeTag(w)
	if !t.IsUsed() {
		return w
	}
	if free {
		return w | prevFreeBit
	}
	return w &^ prevFreeBit
}
