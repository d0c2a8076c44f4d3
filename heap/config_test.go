package heap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	n, err := cfg.SizeBytes()
	require.NoError(t, err)
	require.Equal(t, int64(16<<20), n)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(`
backing = "file"
path = "/tmp/x.seg"
size = "64 MiB"

[log]
enabled = true
level = "debug"
`)
	require.NoError(t, err)
	require.Equal(t, BackingFile, cfg.Backing)
	require.True(t, cfg.Log.Enabled)
	require.Equal(t, "debug", cfg.Log.Level)
	n, err := cfg.SizeBytes()
	require.NoError(t, err)
	require.Equal(t, int64(64<<20), n)
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]string{
		"too small":       `size = "4 KiB"`,
		"bad size":        `size = "lots"`,
		"file no path":    `backing = "file"`,
		"shared no key":   `backing = "shared"`,
		"unknown backing": `backing = "tape"`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(text)
			require.Error(t, err)
		})
	}

	_, err := ParseConfig(`size = "4 KiB"`)
	require.ErrorIs(t, err, ErrTooSmall)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wgdb.toml")
	require.NoError(t, os.WriteFile(path, []byte("size = \"1 MiB\"\nsiez = 3\n"), 0o600))
	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrUnknownConfigKey)
	require.ErrorContains(t, err, "siez")

	require.NoError(t, os.WriteFile(path, []byte("backing = \"shared\"\nkey = 4242\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4242, cfg.Key)
}

func TestParseConfigRejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig("sizee = \"64 MiB\"\n")
	require.ErrorIs(t, err, ErrUnknownConfigKey)
	require.ErrorContains(t, err, "sizee")

	_, err = ParseConfig("size = \"1 MiB\"\n[log]\nlevle = \"debug\"\n")
	require.ErrorIs(t, err, ErrUnknownConfigKey)
	require.ErrorContains(t, err, "log.levle")
}
