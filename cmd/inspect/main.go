package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/kdalton/phase-ensemble/internal/archive"
	"github.com/kdalton/phase-ensemble/internal/metrics"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run archive database")
	runID := flag.String("run", "", "show single run detail")
	last := flag.Int("last", 20, "show N most recent runs")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/runs.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	store, err := archive.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(store, *runID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID      string `json:"run_id"`
	Experiment string `json:"experiment"`
	Seed       int64  `json:"seed"`
	Iterations int    `json:"iterations"`
	Finding    string `json:"finding"`
	CreatedAt  string `json:"created_at"`
}

func runListMode(store *archive.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:      r.RunID,
			Experiment: r.Experiment,
			Seed:       r.Seed,
			Iterations: r.Iterations,
			Finding:    r.Finding,
			CreatedAt:  r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-16s  %8s  %6s  %-20s  %s\n",
		"Run", "Experiment", "Seed", "Iters", "Time", "Finding")
	for _, r := range rows {
		fmt.Printf("%-10s  %-16s  %8d  %6d  %-20s  %s\n",
			shortID(r.RunID), r.Experiment, r.Seed, r.Iterations, r.CreatedAt, r.Finding)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type seriesRow struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Final float64 `json:"final"`
}

type detailOutput struct {
	listRow
	Summary map[string]float64   `json:"summary"`
	Weights map[string][]float64 `json:"weights,omitempty"`
	Series  []seriesRow          `json:"series"`
}

func runDetailMode(store *archive.Store, runID string, jsonOut bool) error {
	rec, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		listRow: listRow{
			RunID:      rec.RunID,
			Experiment: rec.Experiment,
			Seed:       rec.Seed,
			Iterations: rec.Iterations,
			Finding:    rec.Finding,
			CreatedAt:  rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		},
		Summary: rec.Summary,
		Weights: rec.Weights,
	}
	names := make([]string, 0, len(rec.Series))
	for name := range rec.Series {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := rec.Series[name]
		row := seriesRow{Name: name, Count: len(s), Mean: metrics.Mean(s)}
		if len(s) > 0 {
			row.Final = s[len(s)-1]
		}
		out.Series = append(out.Series, row)
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:        %s\n", out.RunID)
	fmt.Printf("Experiment: %s\n", out.Experiment)
	fmt.Printf("Seed:       %d\n", out.Seed)
	fmt.Printf("Iterations: %d\n", out.Iterations)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Finding:    %s\n", out.Finding)

	keys := make([]string, 0, len(out.Summary))
	for k := range out.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("\nSummary:\n")
	for _, k := range keys {
		fmt.Printf("  %-34s %10.4f\n", k, out.Summary[k])
	}

	if len(out.Weights) > 0 {
		wnames := make([]string, 0, len(out.Weights))
		for name := range out.Weights {
			wnames = append(wnames, name)
		}
		sort.Strings(wnames)
		fmt.Printf("\nWeights:\n")
		for _, name := range wnames {
			fmt.Printf("  %-16s", name)
			for _, v := range out.Weights[name] {
				fmt.Printf(" %.4f", v)
			}
			fmt.Println()
		}
	}

	fmt.Printf("\nSeries:\n")
	for _, row := range out.Series {
		fmt.Printf("  %-34s n=%-6d mean=%.4f final=%.4f\n", row.Name, row.Count, row.Mean, row.Final)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
