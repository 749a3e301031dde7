package metrics

import "math"

// #region recorder

// Recorder accumulates named per-step series for an experiment run.
// The core never pushes data anywhere: drivers append each step and
// the report/archive layers consume the plain slices afterward.
type Recorder struct {
	order  []string
	series map[string][]float64
}

// SeriesSummary is the scalar digest of one series.
type SeriesSummary struct {
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Final float64 `json:"final"`
	Count int     `json:"count"`
}

// NewRecorder creates a recorder with the given series pre-registered
// (in display order). Appending to an unregistered name registers it.
func NewRecorder(names ...string) *Recorder {
	r := &Recorder{series: make(map[string][]float64)}
	for _, name := range names {
		r.register(name)
	}
	return r
}

func (r *Recorder) register(name string) {
	if _, ok := r.series[name]; !ok {
		r.order = append(r.order, name)
		r.series[name] = nil
	}
}

// Append adds one sample to the named series.
func (r *Recorder) Append(name string, v float64) {
	r.register(name)
	r.series[name] = append(r.series[name], v)
}

// Series returns the backing slice for a series (nil if absent).
func (r *Recorder) Series(name string) []float64 {
	return r.series[name]
}

// Names returns the series names in registration order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Mean returns the series mean, 0 when empty.
func (r *Recorder) Mean(name string) float64 {
	return Mean(r.series[name])
}

// Max returns the series maximum, 0 when empty.
func (r *Recorder) Max(name string) float64 {
	s := r.series[name]
	if len(s) == 0 {
		return 0.0
	}
	max := math.Inf(-1)
	for _, v := range s {
		if v > max {
			max = v
		}
	}
	return max
}

// Final returns the last sample, 0 when empty.
func (r *Recorder) Final(name string) float64 {
	s := r.series[name]
	if len(s) == 0 {
		return 0.0
	}
	return s[len(s)-1]
}

// Summary digests every series into mean/max/final scalars.
func (r *Recorder) Summary() map[string]SeriesSummary {
	out := make(map[string]SeriesSummary, len(r.order))
	for _, name := range r.order {
		out[name] = SeriesSummary{
			Mean:  r.Mean(name),
			Max:   r.Max(name),
			Final: r.Final(name),
			Count: len(r.series[name]),
		}
	}
	return out
}

// AllSeries returns a copy of every series keyed by name.
func (r *Recorder) AllSeries() map[string][]float64 {
	out := make(map[string][]float64, len(r.order))
	for _, name := range r.order {
		s := make([]float64, len(r.series[name]))
		copy(s, r.series[name])
		out[name] = s
	}
	return out
}

// #endregion recorder
