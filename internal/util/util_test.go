// internal/util/util_test.go
package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "no truncation", in: "hello", max: 10, want: "hello"},
		{name: "exact length", in: "hello", max: 5, want: "hello"},
		{name: "truncate ascii", in: "hello world", max: 5, want: "hello…"},
		{name: "unicode runes", in: "héllo wörld", max: 4, want: "héll…"},
		{name: "newlines flattened", in: "language=English\nlevel=B2", max: 40, want: "language=English level=B2"},
		{name: "zero max keeps text", in: "abc", max: 0, want: "abc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
