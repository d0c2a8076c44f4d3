package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/pkg/wgdb"
)

var (
	initSize  string
	initKey   int
	initForce bool
)

func init() {
	cmd := newInitCmd()
	cmd.Flags().StringVar(&initSize, "size", heap.DefaultSize, "Segment size (e.g. 512KiB, 64MiB)")
	cmd.Flags().IntVar(&initKey, "key", 0, "Database key recorded in the header")
	cmd.Flags().BoolVarP(&initForce, "force", "f", false, "Replace an existing segment")
	rootCmd.AddCommand(cmd)
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <segment>",
		Short: "Create and initialise a segment",
		Long: `The init command creates a segment of the given size and lays out
the header and the first subarea of every area.

Example:
  wgdbctl init main.seg --size 64MiB
  wgdbctl init --shm-key 1000 --size 16MiB
  wgdbctl init main.seg --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args)
		},
	}
	return cmd
}

func runInit(args []string) error {
	cfg, err := segmentConfig(args)
	if err != nil {
		return err
	}
	if configPath == "" {
		cfg.Size = initSize
		if cfg.Backing == heap.BackingFile {
			cfg.Key = initKey
		}
	}

	if err := clearExisting(cfg); err != nil {
		return err
	}

	printVerbose("Creating segment: %s\n", describe(cfg))
	db, err := wgdb.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to create segment: %w", err)
	}
	seg := db.Segment()
	size, unassigned := seg.Size(), seg.Size()-seg.Free()
	key := seg.Key()
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close segment: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"segment":    describe(cfg),
			"size":       size,
			"unassigned": unassigned,
			"key":        key,
		})
	}
	printInfo("Initialised %s: %s, %s unassigned\n", describe(cfg),
		humanize.IBytes(uint64(size)), humanize.IBytes(uint64(unassigned)))
	return nil
}

// clearExisting refuses to overwrite a segment unless --force is given.
func clearExisting(cfg heap.Config) error {
	switch cfg.Backing {
	case heap.BackingFile:
		info, err := os.Stat(cfg.Path)
		if errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stat segment: %w", err)
		}
		if !initForce {
			return fmt.Errorf("%s already exists (use --force to replace it)", cfg.Path)
		}
		return os.Remove(cfg.Path)
	case heap.BackingShared:
		seg, err := heap.AttachShared(cfg.Key)
		if err != nil {
			return nil
		}
		_ = seg.Close()
		if !initForce {
			return fmt.Errorf("shared key %d already exists (use --force to replace it)", cfg.Key)
		}
		return heap.RemoveShared(cfg.Key)
	}
	return nil
}
