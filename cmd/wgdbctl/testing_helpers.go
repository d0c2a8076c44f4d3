package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetFlags restores every package-level flag to its default.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut = false, false, false
	logLevel, configPath, shmKey = "", "", 0
	initSize, initKey, initForce = "512KiB", 0, false
	stressOps, stressSeed, stressMaxSize, stressRelease = 500, 1, 2048, false
}

// newSegmentPath returns a path for a segment file in a per-test directory.
func newSegmentPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.seg")
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs cannot block the pipe.
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON and returns it decoded
func assertJSON(t *testing.T, output string) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}
	return result
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
