package alloc

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/heap/dirty"
	"github.com/springgod/whitedb/heap/verify"
	"github.com/springgod/whitedb/internal/format"
)

type liveObject struct {
	id   heap.AreaID
	off  int64
	size int64
	fill byte
}

func fillObject(a *Allocator, o liveObject) {
	b := a.Segment().Bytes()
	start := o.off
	if _, fixed := o.id.FixedLength(); !fixed {
		start += format.WordSize
	}
	for i := start; i < o.off+o.size; i++ {
		b[i] = o.fill
	}
}

func requireFilled(t *testing.T, a *Allocator, o liveObject) {
	t.Helper()
	b := a.Segment().Bytes()
	start := o.off
	if _, fixed := o.id.FixedLength(); !fixed {
		start += format.WordSize
	}
	for i := start; i < o.off+o.size; i++ {
		if b[i] != o.fill {
			t.Fatalf("%s object at %d: byte %d overwritten (0x%02x, want 0x%02x)", o.id, o.off, i, b[i], o.fill)
		}
	}
}

// Test_Property_RandomAllocFree runs random allocations and frees over
// every area of a file-backed segment, checking after each batch that the
// structures are consistent and no live object was overwritten. Freeing
// everything at the end must leave exactly one span per subarea.
func Test_Property_RandomAllocFree(t *testing.T) {
	seg, err := heap.Create(filepath.Join(t.TempDir(), "prop.seg"), 4<<20)
	require.NoError(t, err)
	defer seg.Close()
	dt := dirty.NewTracker(seg)
	a, err := Init(seg, 0, dt)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	var live []liveObject
	steps := 3000
	if testing.Short() {
		steps = 600
	}

	for i := 0; i < steps; i++ {
		if len(live) == 0 || rng.Intn(100) < 60 {
			id := heap.Areas[rng.Intn(len(heap.Areas))]
			var off, size int64
			if objlen, fixed := id.FixedLength(); fixed {
				off, err = a.AllocFixed(id)
				size = objlen
			} else {
				req := int64(1 + rng.Intn(3000))
				if rng.Intn(20) == 0 {
					req = int64(4096 + rng.Intn(40000))
				}
				off, err = a.AllocVar(id, req)
				if err == nil {
					size, err = a.ObjectSize(id, off)
				}
			}
			if err != nil {
				require.ErrorIs(t, err, ErrOutOfSpace, "step %d", i)
				continue
			}
			o := liveObject{id: id, off: off, size: size, fill: byte(rng.Intn(255) + 1)}
			fillObject(a, o)
			live = append(live, o)
		} else {
			k := rng.Intn(len(live))
			o := live[k]
			requireFilled(t, a, o)
			if _, fixed := o.id.FixedLength(); fixed {
				require.NoError(t, a.FreeFixed(o.id, o.off), "step %d", i)
			} else {
				require.NoError(t, a.FreeVar(o.id, o.off), "step %d", i)
			}
			live[k] = live[len(live)-1]
			live = live[:len(live)-1]
		}

		if i%50 == 0 {
			requireConsistent(t, a)
			for _, o := range live {
				requireFilled(t, a, o)
			}
		}
	}

	require.NoError(t, dt.FlushDataOnly(context.Background()))
	require.NoError(t, dt.FlushHeaderAndMeta(context.Background(), dirty.FlushAuto))

	for _, o := range live {
		requireFilled(t, a, o)
		if _, fixed := o.id.FixedLength(); fixed {
			require.NoError(t, a.FreeFixed(o.id, o.off))
		} else {
			require.NoError(t, a.FreeVar(o.id, o.off))
		}
	}
	requireConsistent(t, a)

	for _, id := range []heap.AreaID{heap.AreaDataRec, heap.AreaLongStr} {
		h := seg.Area(id)
		for i := 0; i <= h.LastSubarea(); i++ {
			objs := walkObjects(t, a, id, i)
			require.Len(t, objs, 1, "%s subarea %d", id, i)
			require.False(t, objs[0].IsUsed(), "%s subarea %d", id, i)
		}
	}
	st := a.Stats()
	require.Equal(t, st.BytesAllocated, st.BytesFreed)
	require.Equal(t, st.VarAllocs, st.VarFrees)
	require.Equal(t, st.FixedAllocs, st.FixedFrees)
	require.Empty(t, verify.Area(seg, heap.AreaDataRec))
}
