// Package dataset reads and writes the labeled train and test examples a
// project evaluates against.
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/mwiater/fewshot/internal/logging"
)

// Split names one of the two example tables.
type Split string

const (
	Train Split = "train"
	Test  Split = "test"
)

// Valid reports whether s names a known table.
func (s Split) Valid() bool {
	return s == Train || s == Test
}

// Example is one labeled record. It is never modified after loading.
type Example struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Condition Condition `json:"-"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
}

// Store is a SQL-backed dataset. SQLite and PostgreSQL are supported.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the dataset. For SQLite the parent directory of dsn is
// created when missing.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite":
		if dsn == "" {
			return nil, fmt.Errorf("dataset: sqlite path is required")
		}
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("dataset: create directory: %w", err)
			}
		}
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("dataset: postgres dsn is required")
		}
	default:
		return nil, fmt.Errorf("dataset: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db, driver: driver}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites '?' placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// CreateSchema creates the train and test tables if they do not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, split := range []Split{Train, Test} {
		stmt := `CREATE TABLE IF NOT EXISTS ` + string(split) + ` (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	parameters TEXT NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL
)`
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("dataset: create table %s: %w", split, err)
		}
	}
	return nil
}

// Insert adds one example to split. The condition is stored as key=value lines
// and must name at least one parameter.
func (s *Store) Insert(ctx context.Context, split Split, ex Example) error {
	if !split.Valid() {
		return fmt.Errorf("dataset: unknown split %q", split)
	}
	if len(ex.Condition) == 0 {
		return fmt.Errorf("dataset: insert %s id=%d: %w: empty condition", split, ex.ID, ErrMalformedCondition)
	}
	query := s.rebind(`INSERT INTO ` + string(split) + ` (id, name, parameters, input, output) VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, ex.ID, ex.Name, ex.Condition.String(), ex.Input, ex.Output); err != nil {
		return fmt.Errorf("dataset: insert %s id=%d: %w", split, ex.ID, err)
	}
	return nil
}

// Examples returns the rows of split whose condition satisfies cond, in id
// order. A row with malformed condition text fails the whole read.
func (s *Store) Examples(ctx context.Context, split Split, cond Condition) ([]Example, error) {
	if !split.Valid() {
		return nil, fmt.Errorf("dataset: unknown split %q", split)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, parameters, input, output FROM `+string(split)+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("dataset: query %s: %w", split, err)
	}
	defer rows.Close()

	var out []Example
	total := 0
	for rows.Next() {
		var (
			ex         Example
			parameters string
		)
		if err := rows.Scan(&ex.ID, &ex.Name, &parameters, &ex.Input, &ex.Output); err != nil {
			return nil, fmt.Errorf("dataset: scan %s: %w", split, err)
		}
		total++
		parsed, err := ParseCondition(parameters)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s row id=%d: %w", split, ex.ID, err)
		}
		if !parsed.Satisfies(cond) {
			continue
		}
		ex.Condition = parsed
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", split, err)
	}

	logging.LogEvent("[DATASET] %s: %d of %d rows match %q", split, len(out), total, cond.String())
	return out, nil
}
