package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPreamble(t *testing.T) {
	p := New(t.TempDir(), "grammar_correction")
	if err := os.MkdirAll(p.SystemDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(p.SystemDir(), "improve.txt"), []byte("Fix {language} text."), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := p.Preamble("improve")
	if err != nil {
		t.Fatalf("Preamble returned error: %v", err)
	}
	if got != "Fix {language} text." {
		t.Fatalf("unexpected preamble: %q", got)
	}

	names, err := p.Preambles()
	if err != nil || len(names) != 1 || names[0] != "improve" {
		t.Fatalf("unexpected preamble list: %v (%v)", names, err)
	}
}

func TestPreambleNotFound(t *testing.T) {
	p := New(t.TempDir(), "proj")
	for _, name := range []string{"missing", "", "../escape", ".."} {
		if _, err := p.Preamble(name); !errors.Is(err, ErrPreambleNotFound) {
			t.Fatalf("Preamble(%q): expected ErrPreambleNotFound, got %v", name, err)
		}
	}
}

func TestLayout(t *testing.T) {
	p := New("/data", "proj")
	if p.ReportsDir() != filepath.Join("/data", "proj", "reports") {
		t.Fatalf("unexpected reports dir: %s", p.ReportsDir())
	}
	if p.DatasetPath() != filepath.Join("/data", "proj", "dataset.sqlite3") {
		t.Fatalf("unexpected dataset path: %s", p.DatasetPath())
	}
}
