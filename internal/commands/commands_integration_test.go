// internal/commands/commands_integration_test.go
package fewshot

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// ollamaEcho answers /api/chat with the last user message.
type ollamaEcho struct {
	mu    sync.Mutex
	calls int
}

func (o *ollamaEcho) handler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/chat" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var payload struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Messages) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()

	resp := map[string]any{
		"model":      payload.Model,
		"message":    map[string]string{"role": "assistant", "content": payload.Messages[len(payload.Messages)-1].Content},
		"done":       true,
		"eval_count": 6,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (o *ollamaEcho) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, buf.String())
	}
	return buf.String()
}

// TestImportRunReportCompare drives the commands against a local Ollama stub.
func TestImportRunReportCompare(t *testing.T) {
	stub := &ollamaEcho{}
	server := httptest.NewServer(http.HandlerFunc(stub.handler))
	defer server.Close()

	root := t.TempDir()
	dataDir := filepath.ToSlash(filepath.Join(root, "data"))
	cfgBody, _ := json.Marshal(map[string]any{
		"dataDir":           dataDir,
		"project":           "grammar",
		"provider":          map[string]string{"type": "ollama", "url": server.URL},
		"stream":            false,
		"retryDelaySeconds": 1,
		"maxAttempts":       1,
		"logFile":           filepath.ToSlash(filepath.Join(root, "fewshot.log")),
	})
	configPath := writeTempConfig(t, string(cfgBody))
	useConfig(t, configPath)

	src := filepath.Join(root, "import")
	writeFile(t, filepath.Join(src, "train", "en_1_.txt"), "language=English\n----------\nhelo\n----------\nhello")
	writeFile(t, filepath.Join(src, "test", "en_2_.txt"), "language=English\n----------\nthe cat sat on the mat\n----------\nthe cat sat on the mat")
	writeFile(t, filepath.Join(dataDir, "grammar", "system", "improve.txt"), "Correct the {language} text.")

	out := execute(t, "--config", configPath, "import", src)
	if !strings.Contains(out, "Imported 1 train and 1 test examples") {
		t.Fatalf("unexpected import output: %s", out)
	}

	runArgs := []string{"--config", configPath, "run", "--model", "m", "--preamble", "improve",
		"--condition", "language=English", "--budget", "100", "--repetitions", "1", "--quiet"}
	out = execute(t, runArgs...)
	if !strings.Contains(out, "average=1.0000") {
		t.Fatalf("expected perfect score, got: %s", out)
	}
	if stub.count() != 1 {
		t.Fatalf("expected one provider call, got %d", stub.count())
	}

	execute(t, runArgs...)
	if stub.count() != 1 {
		t.Fatalf("expected rerun to be served from the cache, got %d calls", stub.count())
	}

	out = execute(t, "--config", configPath, "reports", "list")
	if !strings.Contains(out, "improve") || !strings.Contains(out, "1.0000") {
		t.Fatalf("expected report row, got: %s", out)
	}

	chartPath := filepath.Join(root, "chart.html")
	out = execute(t, "--config", configPath, "compare", "--metric", "bleu", "--output", chartPath)
	if !strings.Contains(out, "Compared 1 reports") {
		t.Fatalf("unexpected compare output: %s", out)
	}
	page, err := os.ReadFile(chartPath)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !strings.Contains(string(page), "<svg") {
		t.Fatalf("expected inline svg in chart page")
	}
}
