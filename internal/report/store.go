package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mwiater/fewshot/internal/dataset"
	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/prompt"
)

// Store keeps reports as JSON files in one directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory reports are written to.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path for id.
func (s *Store) Path(id Identity) string {
	return filepath.Join(s.dir, Name(id))
}

// Encode renders a report as four-space indented JSON without HTML escaping.
func Encode(r *Report) ([]byte, error) {
	out := *r
	if out.Parameters == nil {
		out.Parameters = dataset.Condition{}
	}
	if out.History == nil {
		out.History = []float64{}
	}
	if out.Prompt == nil {
		out.Prompt = []prompt.Turn{}
	}
	if out.Tests == nil {
		out.Tests = []ScoredExample{}
	}
	if out.Percentiles == nil {
		out.Percentiles = map[string]float64{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(&out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes r to its identity path, replacing any previous file. The
// write goes through a temporary file and a rename, so readers never see a
// partial report.
func (s *Store) Save(r *Report) (string, error) {
	data, err := Encode(r)
	if err != nil {
		return "", fmt.Errorf("report: encode: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create directory: %w", err)
	}

	path := s.Path(r.Identity())
	tmp, err := os.CreateTemp(s.dir, ".report-*.tmp")
	if err != nil {
		return "", fmt.Errorf("report: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("report: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("report: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("report: rename: %w", err)
	}

	logging.LogEvent("[REPORT] saved %s (average=%.4f, history=%v)", path, r.Average, r.History)
	return path, nil
}

// Load reads and validates the report at path.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(path, data)
}

func decode(path string, data []byte) (*Report, error) {
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &r, nil
}

// List returns the paths of all reports in the store, sorted by name. A
// missing directory yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadAll loads every report in the store. Files that are not valid reports
// are logged and skipped; read failures abort.
func (s *Store) LoadAll() ([]*Report, error) {
	paths, err := s.List()
	if err != nil {
		return nil, err
	}
	reports := make([]*Report, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		r, err := decode(p, data)
		if err != nil {
			logging.LogEvent("[REPORT] skipping %s: %v", p, err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}
