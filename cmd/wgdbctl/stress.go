package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/heap/alloc"
)

var (
	stressOps     int
	stressSeed    int64
	stressMaxSize int64
	stressRelease bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressOps, "ops", "n", 10000, "Number of allocate/free operations")
	cmd.Flags().Int64Var(&stressSeed, "seed", 0, "Random seed (0 picks one from the clock)")
	cmd.Flags().Int64Var(&stressMaxSize, "max-size", 4096, "Largest variable-length request in bytes")
	cmd.Flags().BoolVar(&stressRelease, "release", false, "Free every surviving object before exiting")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress [segment]",
		Short: "Drive a random allocation workload",
		Long: `The stress command allocates and frees objects of random sizes in
every area, checks the segment afterwards and prints the allocator
counters. Surviving objects stay allocated unless --release is given.

Example:
  wgdbctl stress main.seg --ops 100000 --seed 7
  wgdbctl stress main.seg --release --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(args)
		},
	}
	return cmd
}

type liveObject struct {
	area heap.AreaID
	off  int64
}

func runStress(args []string) error {
	if stressMaxSize < 1 {
		return fmt.Errorf("--max-size must be positive")
	}
	db, err := openExisting(args)
	if err != nil {
		return err
	}
	defer db.Close()

	seed := stressSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	printVerbose("Seed: %d\n", seed)
	rng := rand.New(rand.NewSource(seed))
	a := db.Alloc()

	var live []liveObject
	full := 0
	for i := 0; i < stressOps; i++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			j := rng.Intn(len(live))
			obj := live[j]
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			if err := free(a, obj); err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
			continue
		}
		id := heap.Areas[rng.Intn(len(heap.Areas))]
		var off int64
		if _, fixed := id.FixedLength(); fixed {
			off, err = a.AllocFixed(id)
		} else {
			off, err = a.AllocVar(id, 1+rng.Int63n(stressMaxSize))
		}
		if errors.Is(err, alloc.ErrOutOfSpace) {
			full++
			continue
		}
		if err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
		live = append(live, liveObject{area: id, off: off})
	}
	if stressRelease {
		for _, obj := range live {
			if err := free(a, obj); err != nil {
				return err
			}
		}
		live = nil
	}

	checkErr := db.Check()
	st := a.Stats()
	if jsonOut {
		out := map[string]any{
			"seed":         seed,
			"ops":          stressOps,
			"live":         len(live),
			"out_of_space": full,
			"consistent":   checkErr == nil,
			"stats":        st,
		}
		if err := printJSON(out); err != nil {
			return err
		}
		return checkErr
	}

	printInfo("\nWorkload (seed %d):\n", seed)
	printInfo("  Operations: %d (%d refused for space)\n", stressOps, full)
	printInfo("  Live objects: %d\n", len(live))
	printInfo("  Fixed: %d allocs, %d frees\n", st.FixedAllocs, st.FixedFrees)
	printInfo("  Variable: %d allocs (%s), %d frees (%s)\n",
		st.VarAllocs, humanize.IBytes(uint64(st.BytesAllocated)),
		st.VarFrees, humanize.IBytes(uint64(st.BytesFreed)))
	printInfo("  Served from: bucket %d, probe %d, victim %d (%d splits)\n",
		st.BucketHits, st.ProbeHits, st.DVHits, st.Splits)
	printInfo("  Coalesced: backward %d, forward %d, into victim %d\n",
		st.CoalesceBackward, st.CoalesceForward, st.DVAbsorbs)
	printInfo("  Subareas added: %d (%s)\n", st.SubareasCreated, humanize.IBytes(uint64(st.SubareaBytes)))
	if checkErr != nil {
		printInfo("\nResult: ✗ %v\n", checkErr)
		return checkErr
	}
	printInfo("\nResult: ✓ CONSISTENT\n")
	return nil
}

func free(a *alloc.Allocator, obj liveObject) error {
	if _, fixed := obj.area.FixedLength(); fixed {
		return a.FreeFixed(obj.area, obj.off)
	}
	return a.FreeVar(obj.area, obj.off)
}
