//go:build linux

package mmfile

import (
	"os"
	"testing"
)

func TestAttachSharedRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping shared memory test in short mode")
	}
	key := 0x5747000 + os.Getpid()%0x1000

	data, detach, err := AttachShared(key, 16384)
	if err != nil {
		t.Skipf("shared memory unavailable: %v", err)
	}
	defer func() { _ = RemoveShared(key) }()

	if len(data) < 16384 {
		t.Fatalf("segment too small: %d", len(data))
	}
	data[100] = 0x7f
	if err := detach(); err != nil {
		t.Fatalf("detach: %v", err)
	}

	again, detach2, err := AttachShared(key, 0)
	if err != nil {
		t.Fatalf("reattach: %v", err)
	}
	defer detach2()
	if again[100] != 0x7f {
		t.Fatalf("shared write lost: got 0x%x", again[100])
	}
}
