package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitWritesAtLevel(t *testing.T) {
	defer Init(Options{})

	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelWarn})
	Info("hidden")
	Warn("subarea table full", "area", "datarec")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "subarea table full")
	require.Contains(t, out, "area=datarec")
}

func TestInitJSON(t *testing.T) {
	defer Init(Options{})

	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelInfo, JSON: true})
	Info("segment initialised", "size", 1<<20)
	require.Contains(t, buf.String(), `"msg":"segment initialised"`)
}

func TestDisabledDiscards(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Enabled: false, Writer: &buf})
	Error("boom")
	require.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
