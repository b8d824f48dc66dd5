package evaluation

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mwiater/fewshot/internal/completion"
	"github.com/mwiater/fewshot/internal/dataset"
	"github.com/mwiater/fewshot/internal/prompt"
	"github.com/mwiater/fewshot/internal/report"
)

// Spec describes one evaluation run.
type Spec struct {
	Model       string            `validate:"required"`
	Preamble    string            `validate:"required"`
	Condition   dataset.Condition `validate:"-"`
	Budget      int               `validate:"gte=0"`
	Metric      string            `validate:"required"`
	Repetitions int               `validate:"gte=1"`
}

var validate = validator.New()

// Validate checks the spec's field constraints.
func (s Spec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid run spec: %w", err)
	}
	return nil
}

// Identity returns the report identity for the spec.
func (s Spec) Identity() report.Identity {
	return report.Identity{
		Preamble:  s.Preamble,
		Condition: s.Condition,
		Model:     s.Model,
		Budget:    s.Budget,
		Metric:    s.Metric,
	}
}

func (s Spec) String() string {
	return strings.TrimSuffix(report.Name(s.Identity()), ".json")
}

// ExampleSource supplies the train and test pools.
type ExampleSource interface {
	Examples(ctx context.Context, split dataset.Split, cond dataset.Condition) ([]dataset.Example, error)
}

// PreambleSource supplies preamble templates by name.
type PreambleSource interface {
	Preamble(name string) (string, error)
}

// Completer obtains a model completion for a conversation.
type Completer interface {
	Complete(ctx context.Context, conv prompt.Conversation, p completion.Params) (string, error)
}

// ReportSaver persists a report, replacing any earlier one with the same identity.
type ReportSaver interface {
	Save(r *report.Report) (string, error)
}
