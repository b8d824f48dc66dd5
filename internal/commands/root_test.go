// internal/commands/root_test.go
package fewshot

import (
	"bytes"
	"strings"
	"testing"
)

// TestRootCmd verifies running the root command with an invalid subcommand reports an error.
func TestRootCmd(t *testing.T) {
	b := new(bytes.Buffer)
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)

	rootCmd.SetArgs([]string{"nonexistent"})
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	_, err := rootCmd.ExecuteC()

	if err == nil {
		t.Error("Expected an error for a nonexistent command, but got none")
	}

	expected := "unknown command \"nonexistent\" for \"fewshot\""
	if !strings.Contains(b.String(), expected) {
		t.Errorf("Expected output to contain '%s', but got '%s'", expected, b.String())
	}
}

func TestListCommands(t *testing.T) {
	var buf bytes.Buffer
	writeCommandTree(&buf, rootCmd)
	out := buf.String()
	for _, want := range []string{"fewshot run", "fewshot batch", "fewshot import", "fewshot compare", "fewshot reports list", "fewshot show config"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in command tree, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "completion") {
		t.Fatalf("completion command should be hidden, got:\n%s", out)
	}
}

func TestParseConditionFlag(t *testing.T) {
	cond, err := parseConditionFlag("language=English,level=B2")
	if err != nil {
		t.Fatalf("parseConditionFlag error: %v", err)
	}
	if cond["language"] != "English" || cond["level"] != "B2" || len(cond) != 2 {
		t.Fatalf("unexpected condition: %v", cond)
	}
	empty, err := parseConditionFlag("  ")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty condition, got %v (%v)", empty, err)
	}
	if _, err := parseConditionFlag("language"); err == nil {
		t.Fatal("expected error for entry without '='")
	}
}
