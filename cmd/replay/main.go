package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/kdalton/phase-ensemble/internal/archive"
	"github.com/kdalton/phase-ensemble/internal/experiment"
)

// tolerance for summary comparison; runs are deterministic so any
// drift beyond float formatting indicates a real divergence.
const tolerance = 1e-9

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run archive database")
	runID := flag.String("run", "", "archived run to replay")
	flag.Parse()

	if *dbPath == "" || *runID == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/runs.db --run id")
		os.Exit(2)
	}

	store, err := archive.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(2)
	}
	defer store.Close()

	rec, err := store.GetRun(*runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get run: %v\n", err)
		os.Exit(2)
	}

	cfg := rec.Config
	cfg.Run.Experiment = rec.Experiment
	cfg.Run.Seed = rec.Seed
	cfg.Run.Iterations = rec.Iterations

	res, err := experiment.Run(rec.Experiment, cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay run: %v\n", err)
		os.Exit(2)
	}

	os.Exit(printComparison(rec.Summary, res.Summary))
}

// #endregion main

// #region output

// printComparison outputs an archived-vs-replayed summary table and
// returns the process exit code (1 on any divergence).
func printComparison(archived, replayed map[string]float64) int {
	keys := make(map[string]struct{}, len(archived))
	for k := range archived {
		keys[k] = struct{}{}
	}
	for k := range replayed {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	fmt.Printf("%-34s| %-14s| %-14s| %s\n", "Metric", "Archived", "Replayed", "Match")
	fmt.Printf("%-34s+%-15s+%-15s+%s\n",
		"----------------------------------", "---------------", "---------------", "------")

	matches := 0
	for _, k := range sorted {
		a, aOK := archived[k]
		r, rOK := replayed[k]
		match := "DIFF"
		if aOK && rOK && math.Abs(a-r) <= tolerance {
			match = "OK"
			matches++
		}
		fmt.Printf("%-34s| %14.6f| %14.6f| %s\n", k, a, r, match)
	}

	diverge := len(sorted) - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", len(sorted), matches, diverge)
	if diverge > 0 {
		return 1
	}
	return 0
}

// #endregion output
