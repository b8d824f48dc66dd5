package scoring

import (
	"math"
	"strings"
)

const maxOrder = 4

// BLEU is sentence-level BLEU against a single reference with uniform
// weights over 1 to 4-grams and no smoothing. The punctuation tokens
// ". , ? !" are dropped from both sides before scoring.
type BLEU struct{}

// Name returns "bleu".
func (BLEU) Name() string { return "bleu" }

// Score returns the BLEU score of actual against expected in [0, 1].
func (BLEU) Score(expected, actual string) float64 {
	return SentenceBLEU(stripPunctuation(Tokenize(expected)), stripPunctuation(Tokenize(actual)))
}

func stripPunctuation(tokens []string) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		switch t {
		case ".", ",", "?", "!":
			continue
		}
		out = append(out, t)
	}
	return out
}

// SentenceBLEU scores candidate tokens against reference tokens. Any order
// with no matching n-gram yields 0.
func SentenceBLEU(reference, candidate []string) float64 {
	if len(candidate) == 0 {
		return 0
	}

	logSum := 0.0
	for n := 1; n <= maxOrder; n++ {
		matched, total := clippedMatches(reference, candidate, n)
		if matched == 0 || total == 0 {
			return 0
		}
		logSum += math.Log(float64(matched)/float64(total)) / maxOrder
	}

	return brevityPenalty(len(reference), len(candidate)) * math.Exp(logSum)
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return counts
}

// clippedMatches counts candidate n-grams, each clipped to its count in the
// reference, and the total number of candidate n-grams.
func clippedMatches(reference, candidate []string, n int) (matched, total int) {
	ref := ngramCounts(reference, n)
	for gram, count := range ngramCounts(candidate, n) {
		total += count
		matched += min(count, ref[gram])
	}
	return matched, total
}

func brevityPenalty(refLen, candLen int) float64 {
	if candLen > refLen {
		return 1
	}
	if candLen == 0 {
		return 0
	}
	return math.Exp(1 - float64(refLen)/float64(candLen))
}
