// internal/commands/reports_list.go
package fewshot

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mwiater/fewshot/internal/project"
	"github.com/mwiater/fewshot/internal/report"
	"github.com/mwiater/fewshot/internal/util"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// listReportsCmd implements 'reports list', which prints a table of the
// project's saved reports.
var listReportsCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		proj := project.New(cfg.DataRoot(), cfg.ProjectName())
		reports, err := report.NewStore(proj.ReportsDir()).LoadAll()
		if err != nil {
			return err
		}
		renderReportTable(cmd.OutOrStdout(), reports)
		return nil
	},
}

func renderReportTable(out io.Writer, reports []*report.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return
	}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			util.TruncateRunes(r.SystemMessageFile, 24),
			util.TruncateRunes(r.Model, 32),
			util.TruncateRunes(strings.ReplaceAll(r.Parameters.String(), "\n", ","), 40),
			strconv.Itoa(r.K),
			r.Metric,
			fmt.Sprintf("%.4f", r.Average),
			fmt.Sprintf("%.4f", r.Std),
			strconv.Itoa(r.NTests),
			strconv.Itoa(len(r.History)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("PREAMBLE", "MODEL", "CONDITION", "K", "METRIC", "AVERAGE", "STD", "N", "REPS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	fmt.Fprintln(out, t.String())
}

func init() {
	reportsCmd.AddCommand(listReportsCmd)
}
