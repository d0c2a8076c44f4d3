package heap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"

	"github.com/springgod/whitedb/internal/format"
)

// Backing selects where a segment lives.
type Backing string

const (
	BackingMemory Backing = "memory"
	BackingFile   Backing = "file"
	BackingShared Backing = "shared"
)

// Config describes how to provision a segment.
//
//	backing = "file"
//	path    = "/var/lib/wgdb/main.seg"
//	size    = "64 MiB"
//
//	[log]
//	enabled = true
//	level   = "debug"
type Config struct {
	Backing Backing   `toml:"backing"`
	Path    string    `toml:"path"`
	Key     int       `toml:"key"`
	Size    string    `toml:"size"`
	Log     LogConfig `toml:"log"`
}

// LogConfig mirrors logger.Options in file form.
type LogConfig struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	JSON    bool   `toml:"json"`
}

// DefaultSize is used when Config.Size is empty.
const DefaultSize = "16 MiB"

// DefaultConfig returns an in-memory configuration with logging off.
func DefaultConfig() Config {
	return Config{
		Backing: BackingMemory,
		Size:    DefaultSize,
		Log:     LogConfig{Level: "info"},
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Unknown keys are an
// error so typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("heap: config %s: %w", path, err)
	}
	if err := rejectUndecoded(md); err != nil {
		return Config{}, fmt.Errorf("heap: config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ParseConfig decodes TOML text over DefaultConfig with the same rules as
// LoadConfig.
func ParseConfig(text string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("heap: config: %w", err)
	}
	if err := rejectUndecoded(md); err != nil {
		return Config{}, fmt.Errorf("heap: config: %w", err)
	}
	return cfg, cfg.Validate()
}

func rejectUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return fmt.Errorf("%w: %s", ErrUnknownConfigKey, strings.Join(keys, ", "))
}

// SizeBytes parses Size ("64MiB", "1 GB", "100000") into bytes.
func (c Config) SizeBytes() (int64, error) {
	s := c.Size
	if s == "" {
		s = DefaultSize
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("heap: size %q: %w", s, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("heap: size %q out of range", s)
	}
	return int64(n), nil
}

// Validate checks the configuration without touching any storage.
func (c Config) Validate() error {
	size, err := c.SizeBytes()
	if err != nil {
		return err
	}
	if size < format.MinimalSegmentSize {
		return fmt.Errorf("%w: %s, need at least %s", ErrTooSmall,
			humanize.IBytes(uint64(size)), humanize.IBytes(format.MinimalSegmentSize))
	}
	switch c.Backing {
	case BackingMemory, "":
	case BackingFile:
		if c.Path == "" {
			return errors.New("heap: file backing needs a path")
		}
	case BackingShared:
		if c.Key <= 0 {
			return errors.New("heap: shared backing needs a positive key")
		}
	default:
		return fmt.Errorf("heap: unknown backing %q", c.Backing)
	}
	return nil
}
