package wgdb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/heap/alloc"
	"github.com/springgod/whitedb/heap/dirty"
	"github.com/springgod/whitedb/heap/verify"
	"github.com/springgod/whitedb/internal/logger"
)

// DB is an open database segment with its allocator.
type DB struct {
	cfg     heap.Config
	seg     *heap.Segment
	alloc   *alloc.Allocator
	tracker *dirty.Tracker
}

// Open provisions the segment described by cfg. When cfg.Log.Enabled is
// set the process logger is configured from cfg.Log first; otherwise it
// is left as it is.
func Open(cfg heap.Config) (*DB, error) {
	if cfg.Log.Enabled {
		logger.Init(logger.Options{
			Enabled: true,
			Level:   logger.ParseLevel(cfg.Log.Level),
			JSON:    cfg.Log.JSON,
		})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	size, err := cfg.SizeBytes()
	if err != nil {
		return nil, err
	}

	seg, fresh, err := provision(cfg, size)
	if err != nil {
		return nil, err
	}
	db := &DB{cfg: cfg, seg: seg, tracker: dirty.NewTracker(seg)}
	if fresh {
		db.alloc, err = alloc.Init(seg, int64(cfg.Key), db.tracker)
	} else {
		db.alloc, err = alloc.New(seg, db.tracker)
	}
	if err != nil {
		return nil, errors.Join(err, seg.Close())
	}
	logger.Info("database opened",
		"backing", string(backing(cfg)),
		"path", cfg.Path,
		"key", cfg.Key,
		"fresh", fresh)
	return db, nil
}

// OpenFile loads a TOML configuration and opens the database it describes.
func OpenFile(configPath string) (*DB, error) {
	cfg, err := heap.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return Open(cfg)
}

func backing(cfg heap.Config) heap.Backing {
	if cfg.Backing == "" {
		return heap.BackingMemory
	}
	return cfg.Backing
}

// provision returns the segment and whether it still needs initialising.
func provision(cfg heap.Config, size int64) (*heap.Segment, bool, error) {
	switch backing(cfg) {
	case heap.BackingFile:
		if info, err := os.Stat(cfg.Path); err == nil && info.Size() > 0 {
			seg, err := heap.Open(cfg.Path)
			return seg, false, err
		}
		seg, err := heap.Create(cfg.Path, size)
		return seg, true, err
	case heap.BackingShared:
		if seg, err := heap.AttachShared(cfg.Key); err == nil {
			return seg, false, nil
		} else if errors.Is(err, heap.ErrSharedUnsupported) {
			return nil, false, err
		}
		seg, err := heap.CreateShared(cfg.Key, size)
		return seg, true, err
	default:
		seg, err := heap.New(size)
		return seg, true, err
	}
}

// Alloc returns the allocator of the database.
func (db *DB) Alloc() *alloc.Allocator { return db.alloc }

// Segment returns the underlying segment.
func (db *DB) Segment() *heap.Segment { return db.seg }

// Tracker returns the dirty range tracker the allocator reports to.
func (db *DB) Tracker() *dirty.Tracker { return db.tracker }

// Flush writes dirty data pages and then the header of a file-backed
// database. It does nothing for other backings.
func (db *DB) Flush(ctx context.Context) error {
	if err := db.tracker.FlushDataOnly(ctx); err != nil {
		return fmt.Errorf("wgdb: flush data: %w", err)
	}
	if err := db.tracker.FlushHeaderAndMeta(ctx, dirty.FlushAuto); err != nil {
		return fmt.Errorf("wgdb: flush header: %w", err)
	}
	return nil
}

// Check runs the consistency checker over the whole segment.
func (db *DB) Check() error {
	return verify.Segment(db.seg)
}

// Close flushes a file-backed database and releases the segment. A shared
// segment stays in the system until heap.RemoveShared.
func (db *DB) Close() error {
	if db.seg == nil {
		return nil
	}
	flushErr := db.Flush(context.Background())
	err := errors.Join(flushErr, db.seg.Close())
	db.seg = nil
	return err
}
