// internal/commands/compare.go
package fewshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/fewshot/internal/dataset"
	"github.com/mwiater/fewshot/internal/metrics"
	"github.com/mwiater/fewshot/internal/project"
	"github.com/mwiater/fewshot/internal/report"
)

var compareOpts struct {
	metric     string
	preambles  []string
	models     []string
	conditions []string
	budgets    []int
	output     string
}

// compareCmd implements 'compare', which renders a box plot of the score
// distributions of the selected reports as a standalone HTML page.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Render a box plot comparing saved reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		proj := project.New(cfg.DataRoot(), cfg.ProjectName())

		filter := report.Filter{
			Metric:    compareOpts.metric,
			Preambles: compareOpts.preambles,
			Models:    compareOpts.models,
			Budgets:   compareOpts.budgets,
		}
		for _, text := range compareOpts.conditions {
			cond, err := parseConditionFlag(text)
			if err != nil {
				return err
			}
			filter.Conditions = append(filter.Conditions, cond)
		}

		all, err := report.NewStore(proj.ReportsDir()).LoadAll()
		if err != nil {
			return err
		}
		selected := report.Select(all, filter)
		if len(selected) == 0 {
			return errors.New("no reports match the filter")
		}

		page, err := metrics.RenderChartHTML(report.Chart(proj.Name, compareOpts.metric, selected))
		if err != nil {
			return err
		}

		path := compareOpts.output
		if path == "" {
			path = filepath.Join(proj.ChartsDir(), "compare_"+compareOpts.metric+".html")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Compared %d reports: %s\n", len(selected), path)
		return nil
	},
}

// parseConditionFlag reads "k=v,k2=v2". An empty string is the empty condition.
func parseConditionFlag(text string) (dataset.Condition, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return dataset.Condition{}, nil
	}
	return dataset.ParseCondition(strings.ReplaceAll(text, ",", "\n"))
}

func init() {
	compareCmd.Flags().StringVar(&compareOpts.metric, "metric", "bleu", "metric the reports were scored with")
	compareCmd.Flags().StringSliceVar(&compareOpts.preambles, "preamble", nil, "preamble names to include (repeatable)")
	compareCmd.Flags().StringSliceVar(&compareOpts.models, "model", nil, "models to include (repeatable)")
	compareCmd.Flags().StringArrayVar(&compareOpts.conditions, "condition", nil, "condition to include as k=v,k2=v2 (repeatable)")
	compareCmd.Flags().IntSliceVar(&compareOpts.budgets, "budget", nil, "budgets to include (repeatable)")
	compareCmd.Flags().StringVarP(&compareOpts.output, "output", "o", "", "output HTML path (default <project>/charts/compare_<metric>.html)")
	rootCmd.AddCommand(compareCmd)
}
