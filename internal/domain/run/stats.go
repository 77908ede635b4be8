package run

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes run history since the server started. Outcome counts
// are totals; the duration and step aggregates cover a sliding window of
// the most recent runs.
type Stats struct {
	Count            int     `json:"count"`
	Completed        int     `json:"completed"`
	Errors           int     `json:"errors"`
	Timeouts         int     `json:"timeouts"`
	Truncated        int     `json:"truncated"`
	CacheHits        int     `json:"cache_hits"`
	MeanDurationMs   float64 `json:"mean_duration_ms"`
	StdDevDurationMs float64 `json:"stddev_duration_ms"`
	P95DurationMs    float64 `json:"p95_duration_ms"`
	MeanSteps        float64 `json:"mean_steps"`
	MaxSteps         int     `json:"max_steps"`
}

const historyWindow = 512

// history accumulates per-run observations.
type history struct {
	mu        sync.Mutex
	durations []float64 // milliseconds
	steps     []float64
	next      int
	counts    map[Outcome]int
	cacheHits int
	maxSteps  int
}

func newHistory() *history {
	return &history{
		durations: make([]float64, 0, historyWindow),
		steps:     make([]float64, 0, historyWindow),
		counts:    make(map[Outcome]int),
	}
}

func (h *history) observe(rec *Record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.counts[rec.Outcome]++
	if rec.Steps > h.maxSteps {
		h.maxSteps = rec.Steps
	}

	if len(h.durations) < historyWindow {
		h.durations = append(h.durations, rec.DurationMs)
		h.steps = append(h.steps, float64(rec.Steps))
		return
	}
	h.durations[h.next] = rec.DurationMs
	h.steps[h.next] = float64(rec.Steps)
	h.next = (h.next + 1) % historyWindow
}

func (h *history) hit() {
	h.mu.Lock()
	h.cacheHits++
	h.mu.Unlock()
}

// snapshot computes the aggregates. Quantiles want sorted data, so the
// window is copied out first.
func (h *history) snapshot() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := Stats{
		Completed: h.counts[OutcomeCompleted],
		Errors:    h.counts[OutcomeError],
		Timeouts:  h.counts[OutcomeTimeout],
		Truncated: h.counts[OutcomeTruncated],
		CacheHits: h.cacheHits,
		MaxSteps:  h.maxSteps,
	}
	st.Count = st.Completed + st.Errors + st.Timeouts + st.Truncated

	if len(h.durations) == 0 {
		return st
	}

	durs := append([]float64(nil), h.durations...)
	sort.Float64s(durs)

	st.MeanDurationMs = stat.Mean(durs, nil)
	st.P95DurationMs = stat.Quantile(0.95, stat.Empirical, durs, nil)
	st.MeanSteps = stat.Mean(h.steps, nil)
	if len(durs) > 1 {
		st.StdDevDurationMs = stat.StdDev(durs, nil)
	}
	return st
}
