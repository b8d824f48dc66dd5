package scoring

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func assertClose(t *testing.T, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLookup(t *testing.T) {
	s, err := Lookup("bleu")
	if err != nil {
		t.Fatalf("Lookup(bleu) error: %v", err)
	}
	if s.Name() != "bleu" {
		t.Fatalf("unexpected scorer name %q", s.Name())
	}

	_, err = Lookup("rouge")
	if !errors.Is(err, ErrUnsupportedMetric) {
		t.Fatalf("expected ErrUnsupportedMetric, got %v", err)
	}
	var unsupported *UnsupportedMetricError
	if !errors.As(err, &unsupported) || unsupported.Name != "rouge" {
		t.Fatalf("expected UnsupportedMetricError for rouge, got %v", err)
	}
	if !strings.Contains(err.Error(), "bleu") {
		t.Fatalf("expected supported metrics in message, got %v", err)
	}
}

func TestTokenize(t *testing.T) {
	cases := map[string][]string{
		"Don't stop, 1,000 times!": {"do", "n't", "stop", ",", "1,000", "times", "!"},
		"He said (hello).":         {"he", "said", "(", "hello", ")", "."},
		"See e.g. the notes...":    {"see", "e.g.", "the", "notes", "..."},
		"It's 3.14, right?":        {"it", "'s", "3.14", ",", "right", "?"},
		"  multiple\n\tspaces  ":   {"multiple", "spaces"},
		"'quoted' words":           {"'", "quoted", "'", "words"},
		"":                         nil,
	}
	for in, want := range cases {
		if got := Tokenize(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("Tokenize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBLEUIdenticalIsOne(t *testing.T) {
	assertClose(t, 1.0, BLEU{}.Score("The cat sat on the mat.", "the cat sat on the mat"))
}

func TestBLEUKnownValue(t *testing.T) {
	got := BLEU{}.Score(
		"the quick brown fox jumps over the lazy dog",
		"the quick brown fox jumped over the lazy dog",
	)
	// precisions 8/9, 6/8, 4/7, 2/6 with no brevity penalty
	assertClose(t, math.Pow((8.0/9)*(6.0/8)*(4.0/7)*(2.0/6), 0.25), got)
}

func TestBLEUBrevityPenalty(t *testing.T) {
	got := BLEU{}.Score(
		"the quick brown fox jumps over the lazy dog",
		"the quick brown fox jumps over",
	)
	assertClose(t, math.Exp(1-9.0/6.0), got)
}

func TestBLEUZeroCases(t *testing.T) {
	cases := []struct {
		name           string
		expected, text string
	}{
		{"empty candidate", "hello world", ""},
		{"empty reference", "", "some words here now"},
		{"no 4-grams without smoothing", "hello world", "hello world"},
		{"no overlap", "a b c d e", "v w x y z"},
	}
	for _, tc := range cases {
		if got := (BLEU{}).Score(tc.expected, tc.text); got != 0 {
			t.Fatalf("%s: expected 0, got %v", tc.name, got)
		}
	}
}

func TestBLEUPunctuationOnlyIgnored(t *testing.T) {
	assertClose(t, 1.0, BLEU{}.Score("one two three four five", "one, two. three? four! five"))
}

func TestSentenceBLEUClipsCounts(t *testing.T) {
	ref := []string{"the", "cat", "is", "here", "now"}
	cand := []string{"the", "the", "the", "the", "the"}
	if got := SentenceBLEU(ref, cand); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}

	matched, total := clippedMatches(ref, cand, 1)
	if matched != 1 || total != 5 {
		t.Fatalf("expected 1/5 clipped unigram matches, got %d/%d", matched, total)
	}
}
