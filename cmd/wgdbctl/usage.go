package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newUsageCmd())
}

func newUsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage [segment]",
		Short: "Summarise capacity and free space per area",
		Long: `The usage command sums the freelists, buckets and designated victim
of every area and prints how much of each area is in use.

Example:
  wgdbctl usage main.seg
  wgdbctl usage main.seg --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsage(args)
		},
	}
	return cmd
}

type areaUsageJSON struct {
	Area     string `json:"area"`
	Subareas int    `json:"subareas"`
	Capacity int64  `json:"capacity"`
	Used     int64  `json:"used"`
	Free     int64  `json:"free"`
}

func runUsage(args []string) error {
	db, err := openExisting(args)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Check(); err != nil {
		return err
	}
	u := db.Usage()

	if jsonOut {
		out := map[string]any{
			"segment_size": u.SegmentSize,
			"unassigned":   u.Unassigned,
		}
		var areas []areaUsageJSON
		for _, a := range u.Areas {
			areas = append(areas, areaUsageJSON{
				Area:     a.Area.String(),
				Subareas: a.Subareas,
				Capacity: a.Capacity,
				Used:     a.Used(),
				Free:     a.Free,
			})
		}
		out["areas"] = areas
		return printJSON(out)
	}

	printInfo("%s", u)
	return nil
}
