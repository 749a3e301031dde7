package archive

import (
	"path/filepath"
	"testing"

	"github.com/kdalton/phase-ensemble/internal/experiment"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *experiment.Result {
	return &experiment.Result{
		Experiment: "council",
		Seed:       7,
		Iterations: 40,
		Summary: map[string]float64{
			"trust_consensus_index": 0.91,
			"equal_consensus_index": 0.83,
		},
		Series: map[string][]float64{
			"trust_system_coherence": {0.9, 0.8, 0.85},
			"equal_system_coherence": {0.9, 0.7},
		},
		Weights: map[string][]float64{
			"trust": {0.4, 0.4, 0.2},
		},
		Finding: "trust weighting held a higher consensus index",
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := tempStore(t)
	cfg := experiment.DefaultConfig()
	cfg.Run.Seed = 7
	cfg.Run.Iterations = 40

	id, err := s.SaveRun(cfg, sampleResult())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty run ID")
	}

	rec, err := s.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if rec.Experiment != "council" || rec.Seed != 7 || rec.Iterations != 40 {
		t.Fatalf("run header: %+v", rec)
	}
	if rec.Config.Run.Seed != 7 || rec.Config.Council.LearningRate != 0.05 {
		t.Fatalf("config round trip: %+v", rec.Config.Run)
	}
	if rec.Summary["trust_consensus_index"] != 0.91 {
		t.Fatalf("summary round trip: %v", rec.Summary)
	}
	if rec.Finding == "" {
		t.Fatal("finding lost")
	}

	series := rec.Series["trust_system_coherence"]
	want := []float64{0.9, 0.8, 0.85}
	if len(series) != len(want) {
		t.Fatalf("series length: got %d, want %d", len(series), len(want))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Fatalf("series[%d]: got %f, want %f", i, series[i], want[i])
		}
	}
	if len(rec.Weights["trust"]) != 3 {
		t.Fatalf("weights round trip: %v", rec.Weights)
	}
}

func TestGetRunMissing(t *testing.T) {
	s := tempStore(t)
	if _, err := s.GetRun("nope"); err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestListRuns(t *testing.T) {
	s := tempStore(t)
	cfg := experiment.DefaultConfig()

	for i := 0; i < 3; i++ {
		res := sampleResult()
		res.Seed = int64(i)
		if _, err := s.SaveRun(cfg, res); err != nil {
			t.Fatalf("SaveRun %d: %v", i, err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// List mode skips series
	if runs[0].Series != nil {
		t.Fatal("list rows should not carry series")
	}
	if runs[0].Summary["trust_consensus_index"] != 0.91 {
		t.Fatalf("summary missing from list row: %v", runs[0].Summary)
	}
}

func TestSeriesEncodingRoundTrip(t *testing.T) {
	in := []float64{0.0, -1.5, 3.14159, 1e-12}
	out := decodeSeries(encodeSeries(in))
	if len(out) != len(in) {
		t.Fatalf("length: got %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d: got %v, want %v", i, out[i], in[i])
		}
	}
	if got := decodeSeries(nil); len(got) != 0 {
		t.Fatalf("nil blob should decode empty, got %v", got)
	}
}
