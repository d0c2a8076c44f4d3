package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/heap/verify"
)

// errInconsistent is returned when the checker finds anything.
var errInconsistent = errors.New("segment is inconsistent")

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [segment]",
		Short: "Run the consistency checker",
		Long: `The check command walks every subarea, freelist and bucket of the
segment and reports every inconsistency it finds. The exit status is
non-zero when anything is wrong.

Example:
  wgdbctl check main.seg
  wgdbctl check --shm-key 1000 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	db, err := openExisting(args)
	if err != nil {
		return err
	}
	defer db.Close()

	var found []verify.Inconsistency
	var inc verify.Inconsistency
	if err := db.Check(); errors.As(err, &inc) && inc.Area == "header" {
		found = append(found, inc)
	}
	for _, id := range heap.Areas {
		found = append(found, verify.Area(db.Segment(), id)...)
	}

	if jsonOut {
		if err := printJSON(map[string]any{
			"consistent":      len(found) == 0,
			"inconsistencies": found,
		}); err != nil {
			return err
		}
	} else {
		printInfo("\nChecking %d areas...\n\n", len(heap.Areas))
		for _, inc := range found {
			printInfo("  ✗ %v\n", inc)
		}
		if len(found) == 0 {
			printInfo("Result: ✓ CONSISTENT\n")
		} else {
			printInfo("\nResult: ✗ %d inconsistencies\n", len(found))
		}
	}
	if len(found) > 0 {
		return fmt.Errorf("%w: %d problem(s)", errInconsistent, len(found))
	}
	return nil
}
