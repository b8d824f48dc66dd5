package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mwiater/fewshot/internal/logging"
)

// SectionSeparator divides the condition, input and output sections of an
// example file.
const SectionSeparator = "\n----------\n"

// ParseExampleFile decodes one example file body. The name is not set.
func ParseExampleFile(body string) (Example, error) {
	parts := strings.Split(body, SectionSeparator)
	if len(parts) < 3 {
		return Example{}, fmt.Errorf("expected 3 sections separated by %q, found %d", strings.TrimSpace(SectionSeparator), len(parts))
	}
	cond, err := ParseCondition(parts[0])
	if err != nil {
		return Example{}, err
	}
	return Example{Condition: cond, Input: parts[1], Output: parts[2]}, nil
}

// ExampleName derives an example name from its file name.
func ExampleName(fileName string) string {
	base := filepath.Base(fileName)
	if strings.HasSuffix(base, "_.txt") {
		return strings.TrimSuffix(base, "_.txt")
	}
	return strings.TrimSuffix(base, ".txt")
}

// ReadExampleDir loads every .txt file in dir, sorted by file name, and
// assigns ids starting at 1.
func ReadExampleDir(dir string) ([]Example, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Example, 0, len(names))
	for i, name := range names {
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		ex, err := ParseExampleFile(string(body))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		ex.ID = i + 1
		ex.Name = ExampleName(name)
		out = append(out, ex)
	}
	return out, nil
}

// Truncate removes every row from split.
func (s *Store) Truncate(ctx context.Context, split Split) error {
	if !split.Valid() {
		return fmt.Errorf("dataset: unknown split %q", split)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+string(split)); err != nil {
		return fmt.Errorf("dataset: truncate %s: %w", split, err)
	}
	return nil
}

// ImportDir loads root/train and root/test into the store. When replace is
// set, existing rows are removed first. It returns the row count per split.
func (s *Store) ImportDir(ctx context.Context, root string, replace bool) (map[Split]int, error) {
	if err := s.CreateSchema(ctx); err != nil {
		return nil, err
	}
	counts := make(map[Split]int, 2)
	for _, split := range []Split{Train, Test} {
		examples, err := ReadExampleDir(filepath.Join(root, string(split)))
		if err != nil {
			return nil, fmt.Errorf("dataset: read %s examples: %w", split, err)
		}
		if replace {
			if err := s.Truncate(ctx, split); err != nil {
				return nil, err
			}
		}
		for _, ex := range examples {
			if err := s.Insert(ctx, split, ex); err != nil {
				return nil, err
			}
		}
		counts[split] = len(examples)
		logging.LogEvent("[DATASET] imported %d %s examples from %s", len(examples), split, root)
	}
	return counts, nil
}
