// internal/commands/batch.go
package fewshot

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/fewshot/internal/evaluation"
)

var batchQuiet bool

// batchCmd implements 'batch', which runs every experiment in a YAML plan
// with one shared completion cache.
var batchCmd = &cobra.Command{
	Use:   "batch <plan.yaml>",
	Short: "Run the experiments listed in a YAML plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := evaluation.LoadPlan(args[0])
		if err != nil {
			return err
		}

		sess, err := openSession(GetConfig(), !batchQuiet)
		if err != nil {
			return err
		}
		defer sess.Close()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		reports, err := sess.runner(batchQuiet).RunPlan(ctx, plan)
		sess.summary()
		for _, rep := range reports {
			printResult(cmd, sess.reports.Path(rep.Identity()), rep)
		}
		return err
	},
}

func init() {
	batchCmd.Flags().BoolVarP(&batchQuiet, "quiet", "q", false, "do not echo conversations; print progress bars instead")
	rootCmd.AddCommand(batchCmd)
}
