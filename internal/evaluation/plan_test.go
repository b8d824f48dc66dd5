package evaluation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/fewshot/internal/dataset"
)

const samplePlan = `
experiments:
  - name: budget sweep
    preambles: [improve]
    models: [gpt-4, llama3]
    conditions:
      - language: English
    budgets: [0, 500]
    repetitions: 3
  - preambles: [improve, terse]
    models: [gpt-4]
    budgets: [1000]
`

func TestParsePlanExpandsInOrder(t *testing.T) {
	plan, err := ParsePlan([]byte(samplePlan))
	require.NoError(t, err)

	specs := plan.Specs()
	require.Len(t, specs, 6)

	assert.Equal(t, Spec{
		Model:       "gpt-4",
		Preamble:    "improve",
		Condition:   dataset.Condition{"language": "English"},
		Budget:      0,
		Metric:      "bleu",
		Repetitions: 3,
	}, specs[0])
	assert.Equal(t, 500, specs[1].Budget)
	assert.Equal(t, "llama3", specs[2].Model)

	assert.Equal(t, "terse", specs[5].Preamble)
	assert.Equal(t, 1, specs[5].Repetitions)
	assert.Empty(t, specs[5].Condition)
	for _, s := range specs {
		assert.NoError(t, s.Validate())
	}
}

func TestParsePlanRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no experiments": `experiments: []`,
		"no models":      "experiments:\n  - preambles: [p]\n    budgets: [1]\n",
		"negative budget": "experiments:\n  - preambles: [p]\n    models: [m]\n    budgets: [-1]\n",
		"not yaml":       "experiments: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlan([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadPlanMissingFile(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "plan.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunPlanStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	f.insert(t, dataset.Test, 1, "a", "A")

	plan, err := ParsePlan([]byte(`
experiments:
  - preambles: [improve, missing]
    models: [m]
    conditions:
      - language: English
    budgets: [10]
    metric: numeric
`))
	require.NoError(t, err)

	c := &scriptedCompleter{replies: []string{"0.5", "0.5"}}
	done, err := f.runner(c).RunPlan(context.Background(), plan)
	require.Error(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "improve", done[0].SystemMessageFile)
	assert.Equal(t, 1, c.calls())
}

func TestSpecString(t *testing.T) {
	s := english("gpt-4", 500, 1, "bleu")
	assert.Equal(t, "system=improve language=English model=gpt-4 k=500 metric=bleu", s.String())
}
