package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/internal/logger"
	"github.com/springgod/whitedb/pkg/wgdb"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	logLevel   string
	configPath string
	shmKey     int
)

var rootCmd = &cobra.Command{
	Use:   "wgdbctl",
	Short: "Create, inspect and exercise database segments",
	Long: `wgdbctl works on database segments kept in a file or in a System V
shared memory segment. It can initialise a segment, print its header,
run the consistency checker, summarise area usage and drive a random
allocation workload against it.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			logger.Init(logger.Options{Enabled: true, Level: logger.ParseLevel(logLevel)})
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Enable structured logs at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "TOML configuration describing the segment")
	rootCmd.PersistentFlags().
		IntVar(&shmKey, "shm-key", 0, "Use the shared memory segment with this key instead of a file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// segmentConfig resolves the segment a command works on: --config wins,
// then --shm-key, then the path argument.
func segmentConfig(args []string) (heap.Config, error) {
	if configPath != "" {
		return heap.LoadConfig(configPath)
	}
	cfg := heap.DefaultConfig()
	if shmKey != 0 {
		cfg.Backing = heap.BackingShared
		cfg.Key = shmKey
		return cfg, nil
	}
	if len(args) == 0 {
		return cfg, fmt.Errorf("a segment path, --shm-key or --config is required")
	}
	cfg.Backing = heap.BackingFile
	cfg.Path = args[0]
	return cfg, nil
}

// openExisting opens a segment that must already exist. Commands that only
// inspect use it so a typo in a path does not create a fresh segment.
func openExisting(args []string) (*wgdb.DB, error) {
	cfg, err := segmentConfig(args)
	if err != nil {
		return nil, err
	}
	if cfg.Backing == heap.BackingFile {
		if _, err := os.Stat(cfg.Path); err != nil {
			return nil, fmt.Errorf("failed to stat segment: %w", err)
		}
	}
	if cfg.Backing == heap.BackingMemory {
		return nil, fmt.Errorf("an in-memory segment has nothing to inspect")
	}
	printVerbose("Opening segment: %s\n", describe(cfg))
	return wgdb.Open(cfg)
}

func describe(cfg heap.Config) string {
	if cfg.Backing == heap.BackingShared {
		return fmt.Sprintf("shared key %d", cfg.Key)
	}
	return cfg.Path
}
