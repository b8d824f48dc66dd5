// internal/metrics/aggregator.go
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/providers"
)

// Aggregator collects per-model provider call metrics for one process.
type Aggregator struct {
	mutex    sync.Mutex
	metrics  map[string]*ModelMetrics
	filePath string
}

// NewAggregator creates an Aggregator. When filePath is non-empty, previously
// saved metrics are loaded from it and Close writes the merged totals back.
func NewAggregator(filePath string) *Aggregator {
	agg := &Aggregator{
		metrics:  make(map[string]*ModelMetrics),
		filePath: filePath,
	}
	agg.load()
	return agg
}

// load reads metrics from the JSON file into memory.
func (a *Aggregator) load() {
	if a.filePath == "" {
		return
	}
	a.mutex.Lock()
	defer a.mutex.Unlock()

	data, err := os.ReadFile(a.filePath)
	if err != nil {
		return
	}

	var metricsSlice []*ModelMetrics
	if err := json.Unmarshal(data, &metricsSlice); err != nil {
		logging.LogEvent("[METRICS] ignoring unreadable metrics file %s: %v", a.filePath, err)
		return
	}

	for _, m := range metricsSlice {
		a.metrics[m.ModelName] = m
	}
}

// save writes the current metrics from memory to the JSON file.
func (a *Aggregator) save() error {
	if a.filePath == "" {
		return nil
	}
	logging.LogEvent("[METRICS] Saving provider metrics to %s", a.filePath)

	data, err := json.MarshalIndent(a.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(a.filePath, data, 0o644)
}

func (a *Aggregator) model(name string) *ModelMetrics {
	m, exists := a.metrics[name]
	if !exists {
		m = &ModelMetrics{ModelName: name}
		a.metrics[name] = m
	}
	m.LastUpdatedUTC = time.Now().UTC()
	return m
}

// Record updates the metrics for a model after a successful call.
func (a *Aggregator) Record(meta providers.StreamMetadata, ttft, elapsed time.Duration) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	stats := &a.model(meta.Model).OverallStats
	stats.TotalRequests++
	updateRunningStat(&stats.TTFTMillis, float64(ttft.Milliseconds()))
	updateRunningStat(&stats.InputTokens, float64(meta.PromptTokens))
	updateRunningStat(&stats.OutputTokens, float64(meta.CompletionTokens))
	updateRunningStat(&stats.TotalDurationMillis, float64(elapsed.Milliseconds()))
}

// RecordFailure counts a failed call for a model.
func (a *Aggregator) RecordFailure(model string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	stats := &a.model(model).OverallStats
	stats.TotalRequests++
	stats.FailedCalls++
}

// Snapshot returns a copy of the collected metrics ordered by model name.
func (a *Aggregator) Snapshot() []ModelMetrics {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	out := make([]ModelMetrics, 0, len(a.metrics))
	for _, m := range a.metrics {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelName < out[j].ModelName })
	return out
}

// WriteSummary prints one line per model.
func (a *Aggregator) WriteSummary(w io.Writer) {
	for _, m := range a.Snapshot() {
		s := m.OverallStats
		fmt.Fprintf(w, "%s: %d calls (%d failed), ttft %.0fms avg, duration %.0fms avg (sd %.0f), tokens in/out %.0f/%.0f avg\n",
			m.ModelName, s.TotalRequests, s.FailedCalls, s.TTFTMillis.Mean,
			s.TotalDurationMillis.Mean, s.TotalDurationMillis.StdDev(),
			s.InputTokens.Mean, s.OutputTokens.Mean)
	}
}

// updateRunningStat updates a single running statistic using Welford's online algorithm.
func updateRunningStat(rs *RunningStat, value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}

// StdDev returns the population standard deviation of the observed values.
func (rs RunningStat) StdDev() float64 {
	if rs.Count < 2 {
		return 0
	}
	return math.Sqrt(rs.M2 / float64(rs.Count))
}

// Close saves the metrics.
func (a *Aggregator) Close() error {
	return a.save()
}
