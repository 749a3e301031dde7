package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kdalton/phase-ensemble/internal/experiment"
)

func sampleReport() RunReport {
	return FromResult(&experiment.Result{
		Experiment: "standing_wave",
		Seed:       42,
		Iterations: 600,
		Summary: map[string]float64{
			"locked_persistence":   600,
			"baseline_persistence": 210,
		},
		Weights: map[string][]float64{
			"trust": {0.5, 0.3, 0.2},
		},
		Finding: "periodic phase locking sustained a standing wave longer than the free-running word",
	})
}

func TestJSONRoundTrip(t *testing.T) {
	rep := sampleReport()
	path := filepath.Join(t.TempDir(), "report.json")

	if err := WriteJSON(rep, path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}

	if got.Experiment != rep.Experiment || got.Seed != rep.Seed || got.Iterations != rep.Iterations {
		t.Fatalf("header round trip: %+v", got)
	}
	if got.Summary["locked_persistence"] != 600 {
		t.Fatalf("summary round trip: %v", got.Summary)
	}
	if len(got.Weights["trust"]) != 3 {
		t.Fatalf("weights round trip: %v", got.Weights)
	}
	if got.Finding != rep.Finding {
		t.Fatalf("finding round trip: %q", got.Finding)
	}
}

func TestLoadJSONMissing(t *testing.T) {
	if _, err := LoadJSON(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing report")
	}
}

func TestWriteText(t *testing.T) {
	var sb strings.Builder
	if err := WriteText(sampleReport(), &sb); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"experiment: standing_wave",
		"locked_persistence",
		"weights[trust]",
		"finding: periodic phase locking",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("digest missing %q:\n%s", want, out)
		}
	}
	// Summary keys print sorted
	if strings.Index(out, "baseline_persistence") > strings.Index(out, "locked_persistence") {
		t.Fatalf("summary keys not sorted:\n%s", out)
	}
}
