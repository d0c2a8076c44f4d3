package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/springgod/whitedb/internal/format"
)

// Set by the linker.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print tool and segment format versions",
		Long: `The version command prints the build of wgdbctl and the segment
format it reads and writes. A segment whose header carries another
format version is refused on open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	}
}

// VersionInfo is the JSON form of the version output.
type VersionInfo struct {
	Tool           string `json:"tool"`
	Commit         string `json:"commit"`
	Built          string `json:"built"`
	Format         string `json:"format"`
	FormatWord     int64  `json:"format_word"`
	Mark           int64  `json:"mark"`
	HeaderSize     int64  `json:"header_size"`
	MinSegmentSize int64  `json:"min_segment_size"`
}

func formatVersion() string {
	return fmt.Sprintf("%d.%d.%d", format.VersionMajor, format.VersionMinor, format.VersionRev)
}

func runVersion() error {
	info := VersionInfo{
		Tool:           version,
		Commit:         commit,
		Built:          date,
		Format:         formatVersion(),
		FormatWord:     format.Version,
		Mark:           format.MagicMark,
		HeaderSize:     format.SegmentDataStart,
		MinSegmentSize: format.MinimalSegmentSize,
	}
	if jsonOut {
		return printJSON(info)
	}
	printInfo("wgdbctl %s\n", info.Tool)
	printInfo("  commit: %s\n", info.Commit)
	printInfo("  built: %s\n", info.Built)
	printInfo("segment format %s (header word %#x, mark %d)\n", info.Format, info.FormatWord, info.Mark)
	printInfo("  header: %s\n", humanize.IBytes(uint64(info.HeaderSize)))
	printInfo("  minimal segment: %s\n", humanize.IBytes(uint64(info.MinSegmentSize)))
	return nil
}
