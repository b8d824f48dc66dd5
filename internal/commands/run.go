// internal/commands/run.go
package fewshot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mwiater/fewshot/internal/dataset"
	"github.com/mwiater/fewshot/internal/evaluation"
	"github.com/mwiater/fewshot/internal/report"
)

var runOpts struct {
	model       string
	preamble    string
	condition   map[string]string
	budget      int
	metric      string
	repetitions int
	quiet       bool
}

// runCmd implements 'run', which evaluates one preamble, condition, model
// and budget combination and saves the best repetition's report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one few-shot evaluation and save its report",
	Long: `The 'run' command builds a few-shot prompt from the training split, completes every test
example through the configured provider, scores the answers and keeps the best of the requested
repetitions as a JSON report under the project's reports directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := evaluation.Spec{
			Model:       runOpts.model,
			Preamble:    runOpts.preamble,
			Condition:   dataset.Condition(runOpts.condition).Clone(),
			Budget:      runOpts.budget,
			Metric:      runOpts.metric,
			Repetitions: runOpts.repetitions,
		}

		sess, err := openSession(GetConfig(), !runOpts.quiet)
		if err != nil {
			return err
		}
		defer sess.Close()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		rep, err := sess.runner(runOpts.quiet).Run(ctx, spec)
		sess.summary()
		if err != nil {
			return err
		}
		printResult(cmd, sess.reports.Path(rep.Identity()), rep)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOpts.model, "model", "m", "", "model name sent to the provider")
	runCmd.Flags().StringVarP(&runOpts.preamble, "preamble", "p", "", "preamble (system message) name under the project's system directory")
	runCmd.Flags().StringToStringVar(&runOpts.condition, "condition", nil, "condition entries, e.g. language=English,level=B2")
	runCmd.Flags().IntVarP(&runOpts.budget, "budget", "k", 0, "character budget for the few-shot examples")
	runCmd.Flags().StringVar(&runOpts.metric, "metric", "bleu", "scoring metric")
	runCmd.Flags().IntVarP(&runOpts.repetitions, "repetitions", "n", 1, "number of repetitions; the best is kept")
	runCmd.Flags().BoolVarP(&runOpts.quiet, "quiet", "q", false, "do not echo conversations; print progress bars instead")
	_ = runCmd.MarkFlagRequired("model")
	_ = runCmd.MarkFlagRequired("preamble")

	rootCmd.AddCommand(runCmd)
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func printResult(cmd *cobra.Command, path string, rep *report.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report: %s\n", path)
	fmt.Fprintf(out, "  average=%.4f median=%.4f std=%.4f n=%d\n", rep.Average, rep.Median, rep.Std, rep.NTests)
	fmt.Fprintf(out, "  history=%v\n", rep.History)
}
