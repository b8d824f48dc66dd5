// Package report defines the persisted evaluation report and its on-disk store.
package report

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mwiater/fewshot/internal/dataset"
	"github.com/mwiater/fewshot/internal/metrics"
	"github.com/mwiater/fewshot/internal/prompt"
)

// ScoredExample is a test example with the model's answer and its score.
type ScoredExample struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Input     string  `json:"input"`
	Output    string  `json:"output"`
	Generated string  `json:"llm_output"`
	Score     float64 `json:"score"`
}

// Report is the outcome of the best repetition of one evaluation run.
type Report struct {
	SystemMessageFile string            `json:"system_message_file"`
	Model             string            `json:"model"`
	Parameters        dataset.Condition `json:"parameters"`
	K                 int               `json:"k"`
	Metric            string            `json:"metric"`
	History           []float64         `json:"history"`
	metrics.Summary
	Prompt []prompt.Turn    `json:"prompt"`
	Tests  []ScoredExample `json:"tests"`
}

// Identity names the run a report belongs to. Reports with equal identities
// share one file.
type Identity struct {
	Preamble  string
	Condition dataset.Condition
	Model     string
	Budget    int
	Metric    string
}

// Identity returns the identity the report is stored under.
func (r *Report) Identity() Identity {
	return Identity{
		Preamble:  r.SystemMessageFile,
		Condition: r.Parameters,
		Model:     r.Model,
		Budget:    r.K,
		Metric:    r.Metric,
	}
}

// Name returns the file name for id. Every component is query-escaped and
// the fields appear in a fixed order, so distinct identities never share a
// name.
func Name(id Identity) string {
	esc := url.QueryEscape
	var sb strings.Builder
	sb.WriteString("system=")
	sb.WriteString(esc(id.Preamble))
	for _, k := range id.Condition.Keys() {
		sb.WriteByte(' ')
		sb.WriteString(esc(k))
		sb.WriteByte('=')
		sb.WriteString(esc(id.Condition[k]))
	}
	fmt.Fprintf(&sb, " model=%s k=%d metric=%s.json", esc(id.Model), id.Budget, esc(id.Metric))
	return sb.String()
}
