// Package report renders a run's Result as a JSON artifact and a
// human-readable text digest.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/kdalton/phase-ensemble/internal/experiment"
)

// #region report-types

// RunReport is the JSON artifact written after a run. Series are
// digested to scalars here; the full traces live in the archive.
type RunReport struct {
	Experiment  string               `json:"experiment"`
	Seed        int64                `json:"seed"`
	Iterations  int                  `json:"iterations"`
	GeneratedAt time.Time            `json:"generated_at"`
	Summary     map[string]float64   `json:"summary"`
	Weights     map[string][]float64 `json:"weights,omitempty"`
	Finding     string               `json:"finding"`
}

// FromResult digests a Result into a report.
func FromResult(res *experiment.Result) RunReport {
	return RunReport{
		Experiment:  res.Experiment,
		Seed:        res.Seed,
		Iterations:  res.Iterations,
		GeneratedAt: time.Now().UTC(),
		Summary:     res.Summary,
		Weights:     res.Weights,
		Finding:     res.Finding,
	}
}

// #endregion report-types

// #region writers

// WriteJSON writes the report as indented JSON to path.
func WriteJSON(rep RunReport, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a report artifact back.
func LoadJSON(path string) (RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunReport{}, fmt.Errorf("read report %s: %w", path, err)
	}
	var rep RunReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return RunReport{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	return rep, nil
}

// WriteText renders the digest for terminals: summary keys sorted,
// weights per tracker, finding last.
func WriteText(rep RunReport, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "experiment: %s  seed=%d  iterations=%d\n",
		rep.Experiment, rep.Seed, rep.Iterations); err != nil {
		return err
	}

	keys := make([]string, 0, len(rep.Summary))
	for k := range rep.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "  %-34s %10.4f\n", k, rep.Summary[k]); err != nil {
			return err
		}
	}

	if len(rep.Weights) > 0 {
		names := make([]string, 0, len(rep.Weights))
		for name := range rep.Weights {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, err := fmt.Fprintf(w, "  weights[%s]:", name); err != nil {
				return err
			}
			for _, v := range rep.Weights[name] {
				if _, err := fmt.Fprintf(w, " %.4f", v); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "finding: %s\n", rep.Finding)
	return err
}

// #endregion writers
