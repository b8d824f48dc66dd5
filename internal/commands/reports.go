// internal/commands/reports.go
package fewshot

import (
	"github.com/spf13/cobra"
)

// reportsCmd represents the 'reports' command group for saved reports.
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Group commands for saved evaluation reports",
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}
