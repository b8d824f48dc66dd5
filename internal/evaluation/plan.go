package evaluation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mwiater/fewshot/internal/dataset"
	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/report"
)

// Plan is a batch of experiments read from YAML.
type Plan struct {
	Experiments []Experiment `yaml:"experiments" validate:"required,min=1,dive"`
}

// Experiment expands into one run per combination of its preambles,
// models, conditions and budgets.
type Experiment struct {
	Name        string              `yaml:"name"`
	Preambles   []string            `yaml:"preambles" validate:"required,min=1,dive,required"`
	Models      []string            `yaml:"models" validate:"required,min=1,dive,required"`
	Conditions  []map[string]string `yaml:"conditions"`
	Budgets     []int               `yaml:"budgets" validate:"required,min=1,dive,gte=0"`
	Metric      string              `yaml:"metric"`
	Repetitions int                 `yaml:"repetitions" validate:"gte=0"`
}

const (
	defaultMetric      = "bleu"
	defaultRepetitions = 1
)

// LoadPlan reads and validates a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and validates a YAML plan.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := validate.Struct(plan); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &plan, nil
}

// Specs expands the plan in file order. Within an experiment the order is
// preamble, model, condition, budget.
func (p *Plan) Specs() []Spec {
	var specs []Spec
	for _, exp := range p.Experiments {
		metric := exp.Metric
		if metric == "" {
			metric = defaultMetric
		}
		reps := exp.Repetitions
		if reps == 0 {
			reps = defaultRepetitions
		}
		conds := exp.Conditions
		if len(conds) == 0 {
			conds = []map[string]string{{}}
		}
		for _, preamble := range exp.Preambles {
			for _, model := range exp.Models {
				for _, cond := range conds {
					for _, budget := range exp.Budgets {
						specs = append(specs, Spec{
							Model:       model,
							Preamble:    preamble,
							Condition:   dataset.Condition(cond).Clone(),
							Budget:      budget,
							Metric:      metric,
							Repetitions: reps,
						})
					}
				}
			}
		}
	}
	return specs
}

// RunPlan runs every spec of plan in order and stops at the first failure.
// Reports of the runs that finished are returned alongside the error.
func (r *Runner) RunPlan(ctx context.Context, plan *Plan) ([]*report.Report, error) {
	specs := plan.Specs()
	var done []*report.Report
	for i, spec := range specs {
		logging.LogEvent("[BATCH] [%d/%d] %s", i+1, len(specs), spec)
		fmt.Printf("[%d/%d] %s\n", i+1, len(specs), spec)

		rep, err := r.Run(ctx, spec)
		if err != nil {
			return done, err
		}
		done = append(done, rep)
	}
	return done, nil
}
