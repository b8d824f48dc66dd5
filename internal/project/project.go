// Package project resolves the on-disk layout of an experiment project:
//
//	<data>/<project>/system/<preamble>.txt
//	<data>/<project>/reports/
//	<data>/<project>/dataset.sqlite3
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrPreambleNotFound is returned when a named preamble file does not exist.
var ErrPreambleNotFound = errors.New("preamble not found")

// Project is one experiment namespace under the data directory.
type Project struct {
	Root string
	Name string
}

// New returns the project name under dataDir.
func New(dataDir, name string) Project {
	return Project{Root: filepath.Join(dataDir, name), Name: name}
}

// SystemDir holds the preamble templates.
func (p Project) SystemDir() string { return filepath.Join(p.Root, "system") }

// ReportsDir holds the saved reports.
func (p Project) ReportsDir() string { return filepath.Join(p.Root, "reports") }

// ChartsDir holds rendered comparison charts.
func (p Project) ChartsDir() string { return filepath.Join(p.Root, "charts") }

// DatasetPath is the default SQLite dataset file.
func (p Project) DatasetPath() string { return filepath.Join(p.Root, "dataset.sqlite3") }

// Preamble returns the template text stored for name.
func (p Project) Preamble(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid name %q", ErrPreambleNotFound, name)
	}
	path := filepath.Join(p.SystemDir(), name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrPreambleNotFound, path)
		}
		return "", fmt.Errorf("read preamble %s: %w", path, err)
	}
	return string(data), nil
}

// Preambles lists the available preamble names.
func (p Project) Preambles() ([]string, error) {
	entries, err := os.ReadDir(p.SystemDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".txt"))
	}
	sort.Strings(names)
	return names, nil
}
