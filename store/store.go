package store

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/nickyhof/MemDB/core"
)

var ErrNoPredicate = errors.New("a predicate is required")

// Predicate selects rows for UpdateRows and DeleteRows.
type Predicate func(row core.Row) bool

type table struct {
	core.Table
	rows []core.Row
}

// Store holds named tables for the lifetime of the process. It is not safe
// for concurrent use; callers serialise access.
type Store struct {
	tables map[string]*table
}

func New() *Store {
	return &Store{
		tables: make(map[string]*table),
	}
}

func (s *Store) lookup(name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownTable, name)
	}
	return t, nil
}

func (s *Store) CreateTable(name string, columns []string) error {
	if _, exists := s.tables[name]; exists {
		return fmt.Errorf("%w: %s", core.ErrDuplicateTable, name)
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	s.tables[name] = &table{
		Table: core.Table{Name: name, Columns: cols},
	}
	return nil
}

func (s *Store) Insert(name string, values []core.Value) error {
	t, err := s.lookup(name)
	if err != nil {
		return err
	}

	if len(values) != len(t.Columns) {
		return fmt.Errorf("%w: table %s has %d columns, got %d values",
			core.ErrColumnArityMismatch, name, len(t.Columns), len(values))
	}

	t.rows = append(t.rows, core.NewRow(t.Columns, values))
	return nil
}

// Scan yields a copy of every row in insertion order.
func (s *Store) Scan(name string) (iter.Seq2[int, core.Row], error) {
	t, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	rows := t.rows
	return func(yield func(int, core.Row) bool) {
		for i, row := range rows {
			if !yield(i, row.Clone()) {
				return
			}
		}
	}, nil
}

// Rows returns a copy of the table's rows.
func (s *Store) Rows(name string) ([]core.Row, error) {
	t, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	rows := make([]core.Row, len(t.rows))
	for i, row := range t.rows {
		rows[i] = row.Clone()
	}
	return rows, nil
}

// Columns returns the declared column list of a table.
func (s *Store) Columns(name string) ([]string, error) {
	t, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	return cols, nil
}

func (s *Store) HasColumn(name, column string) (bool, error) {
	t, err := s.lookup(name)
	if err != nil {
		return false, err
	}
	for _, col := range t.Columns {
		if col == column {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Len(name string) (int, error) {
	t, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	return len(t.rows), nil
}

// TableNames returns every table name in sorted order.
func (s *Store) TableNames() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render formats a table as a " | "-joined header line followed by one line
// per row.
func (s *Store) Render(name string) (string, error) {
	t, err := s.lookup(name)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(t.rows)+1)
	lines = append(lines, strings.Join(t.Columns, " | "))
	for _, row := range t.rows {
		lines = append(lines, strings.Join(row.Strings(), " | "))
	}
	return strings.Join(lines, "\n"), nil
}

// UpdateRows sets column to value on every row matching predicate and returns
// the number of rows changed.
func (s *Store) UpdateRows(name string, predicate Predicate, column string, value core.Value) (int, error) {
	t, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	if predicate == nil {
		return 0, fmt.Errorf("update %s: %w", name, ErrNoPredicate)
	}
	if ok, _ := s.HasColumn(name, column); !ok {
		return 0, fmt.Errorf("%w: %s.%s", core.ErrUnknownColumn, name, column)
	}

	count := 0
	for _, row := range t.rows {
		if !predicate(row) {
			continue
		}
		if err := row.Set(column, value); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// DeleteRows removes every row matching predicate, keeping the survivors in
// order, and returns the number removed.
func (s *Store) DeleteRows(name string, predicate Predicate) (int, error) {
	t, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	if predicate == nil {
		return 0, fmt.Errorf("delete from %s: %w", name, ErrNoPredicate)
	}

	kept := t.rows[:0]
	for _, row := range t.rows {
		if !predicate(row) {
			kept = append(kept, row)
		}
	}
	removed := len(t.rows) - len(kept)
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = core.Row{}
	}
	t.rows = kept
	return removed, nil
}

// Snapshot returns the table shape together with a copy of its rows.
func (s *Store) Snapshot(name string) (core.Table, []core.Row, error) {
	t, err := s.lookup(name)
	if err != nil {
		return core.Table{}, nil, err
	}
	rows, _ := s.Rows(name)
	cols, _ := s.Columns(name)
	return core.Table{Name: t.Name, Columns: cols}, rows, nil
}
