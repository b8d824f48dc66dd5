package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/fatih/color"
)

var (
	consoleMu  sync.Mutex
	consoleOut io.Writer = color.Output

	systemLabel    = color.New(color.FgMagenta, color.Bold)
	userLabel      = color.New(color.FgCyan, color.Bold)
	assistantLabel = color.New(color.FgGreen, color.Bold)
	chunkLabel     = color.New(color.FgYellow)
)

// SetConsole redirects operator-facing output. It returns the previous writer.
func SetConsole(w io.Writer) io.Writer {
	consoleMu.Lock()
	defer consoleMu.Unlock()
	prev := consoleOut
	consoleOut = w
	return prev
}

// Console returns the current operator-facing writer.
func Console() io.Writer {
	consoleMu.Lock()
	defer consoleMu.Unlock()
	return consoleOut
}

func roleLabel(role string) *color.Color {
	switch role {
	case "system":
		return systemLabel
	case "assistant":
		return assistantLabel
	default:
		return userLabel
	}
}

// Turn is the minimal view of a conversation turn the console needs.
type Turn struct {
	Role    string
	Content string
}

// PrintConversation echoes the full transcript about to be sent to a model.
func PrintConversation(model string, temperature float64, turns []Turn) {
	consoleMu.Lock()
	defer consoleMu.Unlock()

	fmt.Fprintf(consoleOut, "Calling model %s with temperature %g...\n", model, temperature)
	for _, turn := range turns {
		fmt.Fprintf(consoleOut, "%s %s\n", roleLabel(turn.Role).Sprint(turn.Role+":"), turn.Content)
	}
	fmt.Fprintln(consoleOut, "--------")
}

// PrintChunk echoes one streamed fragment of a completion.
func PrintChunk(content string) {
	if content == "" {
		return
	}
	consoleMu.Lock()
	defer consoleMu.Unlock()
	fmt.Fprintf(consoleOut, "%s %s\n", chunkLabel.Sprint("Streamed"), content)
}

// PrintCompletion echoes the final text of a completion.
func PrintCompletion(content string) {
	consoleMu.Lock()
	defer consoleMu.Unlock()
	fmt.Fprintln(consoleOut, content)
}

// ProgressBar renders static progress lines for long batch loops.
type ProgressBar struct {
	bar   progress.Model
	label string
	total int
}

// NewProgressBar returns a bar sized for terminal log lines.
func NewProgressBar(label string, total int) *ProgressBar {
	return &ProgressBar{
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		label: label,
		total: total,
	}
}

// Line renders the bar for done out of total items.
func (p *ProgressBar) Line(done int) string {
	pct := 0.0
	if p.total > 0 {
		pct = float64(done) / float64(p.total)
	}
	if pct > 1 {
		pct = 1
	}
	return fmt.Sprintf("%s %s %d/%d", p.label, p.bar.ViewAs(pct), done, p.total)
}

// Print writes the rendered bar to the console.
func (p *ProgressBar) Print(done int) {
	line := p.Line(done)
	consoleMu.Lock()
	defer consoleMu.Unlock()
	fmt.Fprintln(consoleOut, strings.TrimRight(line, " "))
}
