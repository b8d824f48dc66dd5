// internal/commands/list_commands.go
package fewshot

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// commandsCmd implements 'list commands', which prints the command tree.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Run: func(cmd *cobra.Command, args []string) {
		writeCommandTree(cmd.OutOrStdout(), rootCmd)
	},
}

func init() {
	listCmd.AddCommand(commandsCmd)
}

// commandRow is one line of the command tree.
type commandRow struct {
	path  string
	short string
}

// collectCommandRows walks the tree depth-first, indenting two spaces per
// level. The built-in completion and help commands are skipped.
func collectCommandRows(cmd *cobra.Command, depth int) []commandRow {
	if cmd.Name() == "completion" || cmd.Name() == "help" || cmd.Hidden {
		return nil
	}
	rows := []commandRow{{path: strings.Repeat("  ", depth) + cmd.CommandPath(), short: cmd.Short}}
	for _, sub := range cmd.Commands() {
		rows = append(rows, collectCommandRows(sub, depth+1)...)
	}
	return rows
}

func writeCommandTree(out io.Writer, root *cobra.Command) {
	rows := collectCommandRows(root, 0)
	width := 0
	for _, r := range rows {
		width = max(width, len(r.path))
	}
	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, r := range rows {
		fmt.Fprintf(out, "  %-*s  %s\n", width, r.path, r.short)
	}
}
