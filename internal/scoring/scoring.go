// Package scoring compares generated text with reference text.
package scoring

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedMetric is matched by errors returned for unknown metric names.
var ErrUnsupportedMetric = errors.New("unsupported metric")

// UnsupportedMetricError names a metric that has no Scorer.
type UnsupportedMetricError struct {
	Name string
}

func (e *UnsupportedMetricError) Error() string {
	return fmt.Sprintf("unsupported metric %q (available: %v)", e.Name, Names())
}

// Is lets errors.Is match ErrUnsupportedMetric.
func (e *UnsupportedMetricError) Is(target error) bool {
	return target == ErrUnsupportedMetric
}

// Scorer computes a non-negative similarity between expected and actual
// text. Higher is better.
type Scorer interface {
	Name() string
	Score(expected, actual string) float64
}

var registry = map[string]Scorer{
	BLEU{}.Name(): BLEU{},
}

// Lookup returns the scorer registered under name.
func Lookup(name string) (Scorer, error) {
	s, ok := registry[name]
	if !ok {
		return nil, &UnsupportedMetricError{Name: name}
	}
	return s, nil
}

// Names lists registered metric names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
