package metrics

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/fewshot/internal/providers"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{0.8, 0.2, 0.6, 0.4})

	if !approx(s.Average, 0.5) {
		t.Fatalf("average = %v, want 0.5", s.Average)
	}
	if !approx(s.Median, 0.5) {
		t.Fatalf("median = %v, want 0.5", s.Median)
	}
	if !approx(s.Std, math.Sqrt(0.05)) {
		t.Fatalf("std = %v, want %v", s.Std, math.Sqrt(0.05))
	}
	if s.NTests != 4 {
		t.Fatalf("n_tests = %d, want 4", s.NTests)
	}
	if !approx(s.Percentiles["50"], s.Median) {
		t.Fatalf("p50 = %v, want median %v", s.Percentiles["50"], s.Median)
	}

	want := map[string]float64{"10": 0.26, "25": 0.35, "75": 0.65, "90": 0.74}
	for k, v := range want {
		if !approx(s.Percentiles[k], v) {
			t.Fatalf("p%s = %v, want %v", k, s.Percentiles[k], v)
		}
	}
	if len(s.Percentiles) != len(PercentileLevels) {
		t.Fatalf("expected %d percentiles, got %d", len(PercentileLevels), len(s.Percentiles))
	}
}

func TestSummarizeEmptyAndSingle(t *testing.T) {
	empty := Summarize(nil)
	if empty.NTests != 0 || empty.Average != 0 || len(empty.Percentiles) != len(PercentileLevels) {
		t.Fatalf("unexpected empty summary: %+v", empty)
	}

	one := Summarize([]float64{0.3})
	if one.Average != 0.3 || one.Median != 0.3 || one.Std != 0 || one.Percentiles["90"] != 0.3 {
		t.Fatalf("unexpected single summary: %+v", one)
	}
}

func TestComputeBox(t *testing.T) {
	b := ComputeBox([]float64{100, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	if !approx(b.Q1, 3.25) || !approx(b.Q3, 7.75) || !approx(b.Median, 5.5) {
		t.Fatalf("unexpected quartiles: %+v", b)
	}
	if b.WhiskerLow != 1 || b.WhiskerHigh != 9 {
		t.Fatalf("unexpected whiskers: low=%v high=%v", b.WhiskerLow, b.WhiskerHigh)
	}
	if len(b.Fliers) != 1 || b.Fliers[0] != 100 {
		t.Fatalf("unexpected fliers: %v", b.Fliers)
	}
	if b.NotchLow >= b.Median || b.NotchHigh <= b.Median {
		t.Fatalf("notch should straddle the median: %+v", b)
	}
}

func TestRenderChartHTML(t *testing.T) {
	html, err := RenderChartHTML(Chart{
		Title:  []string{"grammar_correction", "model=gpt-4 k=0"},
		YLabel: "bleu",
		Series: []ChartSeries{
			{Label: []string{"0.500 ± 0.224", "med = 0.500", "system=<improve>"}, Scores: []float64{0.2, 0.4, 0.6, 0.8}},
			{Label: []string{"0.900 ± 0.000"}, Scores: []float64{0.9, 0.9}},
		},
	})
	if err != nil {
		t.Fatalf("RenderChartHTML returned error: %v", err)
	}
	for _, want := range []string{"<svg", "<h1>grammar_correction</h1>", "model=gpt-4 k=0", "0.500 ± 0.224", "&lt;improve&gt;", "<polygon"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in chart HTML", want)
		}
	}
	if strings.Count(html, "<polygon") != 2 {
		t.Fatalf("expected one box per series")
	}
}

type stubProvider struct {
	err error
}

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) Stream(ctx context.Context, req providers.StreamRequest, cb providers.StreamCallbacks) error {
	if s.err != nil {
		return s.err
	}
	if err := cb.OnChunk(providers.ChatMessage{Role: "assistant", Content: "hi"}); err != nil {
		return err
	}
	return cb.OnComplete(providers.StreamMetadata{PromptTokens: 10, CompletionTokens: 2, Done: true})
}

func (s stubProvider) Close() error { return nil }

func TestProviderRecordsCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics", "provider_metrics.json")
	agg := NewAggregator(path)

	var got string
	p := NewProvider(stubProvider{}, agg)
	err := p.Stream(context.Background(), providers.StreamRequest{Model: "m"}, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			got += msg.Content
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if got != "hi" {
		t.Fatalf("chunk not forwarded, got %q", got)
	}

	failing := NewProvider(stubProvider{err: errors.New("down")}, agg)
	if err := failing.Stream(context.Background(), providers.StreamRequest{Model: "m"}, providers.StreamCallbacks{}); err == nil {
		t.Fatal("expected error to propagate")
	}

	snap := agg.Snapshot()
	if len(snap) != 1 || snap[0].ModelName != "m" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	stats := snap[0].OverallStats
	if stats.TotalRequests != 2 || stats.FailedCalls != 1 || stats.InputTokens.Mean != 10 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := agg.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	reloaded := NewAggregator(path)
	if s := reloaded.Snapshot(); len(s) != 1 || s[0].OverallStats.TotalRequests != 2 {
		t.Fatalf("metrics not persisted: %+v", s)
	}

	var sb strings.Builder
	reloaded.WriteSummary(&sb)
	if !strings.Contains(sb.String(), "m: 2 calls (1 failed)") {
		t.Fatalf("unexpected summary: %s", sb.String())
	}
}
