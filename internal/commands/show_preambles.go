package fewshot

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/fewshot/internal/project"
)

// showPreamblesCmd implements 'show preambles', which lists the preamble
// templates available to the current project.
var showPreamblesCmd = &cobra.Command{
	Use:   "preambles",
	Short: "List the project's preamble templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		proj := project.New(cfg.DataRoot(), cfg.ProjectName())
		names, err := proj.Preambles()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintf(out, "No preambles in %s\n", proj.SystemDir())
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

func init() {
	showCmd.AddCommand(showPreamblesCmd)
}
