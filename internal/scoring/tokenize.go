package scoring

import (
	"strings"
	"unicode"
)

// standalone runes always become their own token.
const standalone = "?!;:@#$%&()[]{}<>\"`“”«»„"

var contractions = []string{"n't", "'s", "'re", "'ve", "'ll", "'d", "'m"}

// Tokenize lowercases s and splits it into Penn Treebank style word tokens:
// punctuation is separated from words, commas between digits are kept,
// a trailing period is split off unless the word is an abbreviation, and
// English contractions are split ("don't" becomes "do", "n't").
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	var out []string
	for _, field := range strings.Fields(s) {
		out = appendField(out, field)
	}
	return out
}

func appendField(out []string, field string) []string {
	runes := []rune(field)
	var buf []rune
	flush := func() {
		if len(buf) > 0 {
			out = appendWord(out, string(buf))
			buf = buf[:0]
		}
	}
	for i, r := range runes {
		switch {
		case strings.ContainsRune(standalone, r):
			flush()
			out = append(out, string(r))
		case r == ',' && !(i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])):
			flush()
			out = append(out, ",")
		default:
			buf = append(buf, r)
		}
	}
	flush()
	return out
}

func appendWord(out []string, word string) []string {
	var trailing []string
	switch {
	case strings.HasSuffix(word, "..."):
		word = strings.TrimSuffix(word, "...")
		trailing = append(trailing, "...")
	case strings.HasSuffix(word, ".") && strings.Count(word, ".") == 1:
		word = strings.TrimSuffix(word, ".")
		trailing = append(trailing, ".")
	}

	var leading []string
	for strings.HasPrefix(word, "'") && len(word) > 1 {
		leading = append(leading, "'")
		word = word[1:]
	}
	if strings.HasSuffix(word, "'") && len(word) > 1 && !strings.HasSuffix(word, "s'") {
		word = strings.TrimSuffix(word, "'")
		trailing = append([]string{"'"}, trailing...)
	}

	out = append(out, leading...)
	if word != "" {
		out = appendContraction(out, word)
	}
	return append(out, trailing...)
}

func appendContraction(out []string, word string) []string {
	for _, suffix := range contractions {
		if strings.HasSuffix(word, suffix) && len(word) > len(suffix) {
			return append(out, strings.TrimSuffix(word, suffix), suffix)
		}
	}
	return append(out, word)
}
