package dirty_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/heap/dirty"
	"github.com/springgod/whitedb/internal/format"
)

func TestTracker_FlushDataOnly_PreCancelled(t *testing.T) {
	seg, err := heap.Create(filepath.Join(t.TempDir(), "c.seg"), format.MinimalSegmentSize)
	require.NoError(t, err)
	defer seg.Close()

	tracker := dirty.NewTracker(seg)
	tracker.Add(seg.Size()-4096, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, tracker.FlushDataOnly(ctx), context.Canceled)
	// Ranges survive a cancelled flush.
	require.Equal(t, 1, tracker.Len())

	require.ErrorIs(t, tracker.FlushHeaderAndMeta(ctx, dirty.FlushAuto), context.Canceled)
}

func TestTracker_ImplementsInterfaces(t *testing.T) {
	var _ dirty.FlushableTracker = (*dirty.Tracker)(nil)
	dirty.Discard.Add(0, 8)
}
