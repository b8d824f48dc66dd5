// Package evaluation runs few-shot evaluations: it builds a prompt per
// repetition, completes and scores every test example, and keeps the best
// repetition's report on disk.
package evaluation

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/mwiater/fewshot/internal/completion"
	"github.com/mwiater/fewshot/internal/dataset"
	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/metrics"
	"github.com/mwiater/fewshot/internal/prompt"
	"github.com/mwiater/fewshot/internal/report"
	"github.com/mwiater/fewshot/internal/scoring"
)

// Runner executes evaluation runs.
type Runner struct {
	Examples  ExampleSource
	Preambles PreambleSource
	Completer Completer
	Reports   ReportSaver

	Temperature float64
	MaxTokens   int
	Stream      bool

	// Progress prints a progress bar line after every test example.
	Progress bool
	// Lookup resolves metric names. Defaults to scoring.Lookup.
	Lookup func(name string) (scoring.Scorer, error)
}

func (r *Runner) lookup(name string) (scoring.Scorer, error) {
	if r.Lookup != nil {
		return r.Lookup(name)
	}
	return scoring.Lookup(name)
}

// Run evaluates spec for spec.Repetitions repetitions. After every
// repetition the best report so far is saved, carrying the averages of all
// repetitions completed so far in run order. The final best report is
// returned.
func (r *Runner) Run(ctx context.Context, spec Spec) (*report.Report, error) {
	scorer, err := r.lookup(spec.Metric)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	params := completion.Params{
		Model:       spec.Model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
		Stream:      r.Stream,
	}

	var (
		history    []float64
		candidates []*report.Report
	)
	for q := 0; q < spec.Repetitions; q++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cand, err := r.repetition(ctx, spec, q, scorer, params)
		if err != nil {
			return nil, fmt.Errorf("%s: repetition %d: %w", spec, q, err)
		}

		history = append(history, cand.Average)
		logging.LogEvent("[RUN] %s: repetition %d/%d average=%.4f median=%.4f std=%.4f",
			spec, q+1, spec.Repetitions, cand.Average, cand.Median, cand.Std)

		candidates = append(candidates, cand)
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Average > candidates[j].Average
		})

		best := candidates[0]
		best.History = append([]float64(nil), history...)
		if _, err := r.Reports.Save(best); err != nil {
			return nil, err
		}
	}
	return candidates[0], nil
}

func (r *Runner) repetition(ctx context.Context, spec Spec, q int, scorer scoring.Scorer, params completion.Params) (*report.Report, error) {
	template, err := r.Preambles.Preamble(spec.Preamble)
	if err != nil {
		return nil, err
	}
	train, err := r.Examples.Examples(ctx, dataset.Train, spec.Condition)
	if err != nil {
		return nil, err
	}
	test, err := r.Examples.Examples(ctx, dataset.Test, spec.Condition)
	if err != nil {
		return nil, err
	}

	if q > 0 {
		rng := rand.New(rand.NewSource(int64(q)))
		rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	}

	conv := prompt.Build(prompt.RenderPreamble(template, spec.Condition), train, spec.Budget)
	logging.LogEvent("[RUN] %s: repetition %d uses %d of %d training examples", spec, q+1, conv.Shots(), len(train))

	var bar *logging.ProgressBar
	if r.Progress {
		bar = logging.NewProgressBar(fmt.Sprintf("repetition %d/%d", q+1, spec.Repetitions), len(test))
	}

	scored := make([]report.ScoredExample, 0, len(test))
	for i, ex := range test {
		generated, err := r.Completer.Complete(ctx, conv.WithQuery(ex.Input), params)
		if err != nil {
			return nil, fmt.Errorf("test example %d (%s): %w", ex.ID, ex.Name, err)
		}
		scored = append(scored, report.ScoredExample{
			ID:        ex.ID,
			Name:      ex.Name,
			Input:     ex.Input,
			Output:    ex.Output,
			Generated: generated,
			Score:     scorer.Score(ex.Output, generated),
		})
		if bar != nil {
			bar.Print(i + 1)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	scores := make([]float64, len(scored))
	for i, s := range scored {
		scores[i] = s.Score
	}

	return &report.Report{
		SystemMessageFile: spec.Preamble,
		Model:             spec.Model,
		Parameters:        spec.Condition.Clone(),
		K:                 spec.Budget,
		Metric:            spec.Metric,
		Summary:           metrics.Summarize(scores),
		Prompt:            conv.Turns(),
		Tests:             scored,
	}, nil
}
