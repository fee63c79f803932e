package op

import (
	"iter"
	"log"

	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/journal"
	"github.com/nickyhof/MemDB/store"
)

// TableOp binds one table of a store to an optional journal. Every write
// goes to the store first and is then recorded as a journal commit.
type TableOp struct {
	Table   core.Table
	Store   *store.Store
	Journal *journal.Journal
}

func CreateTable(table core.Table, st *store.Store, jnl *journal.Journal, identity core.Identity, message string) (journal.Transaction, *TableOp, error) {
	if err := st.CreateTable(table.Name, table.Columns); err != nil {
		return journal.Transaction{}, nil, err
	}

	tableOp := &TableOp{
		Table:   table,
		Store:   st,
		Journal: jnl,
	}

	return tableOp.record(identity, message), tableOp, nil
}

func GetTable(name string, st *store.Store, jnl *journal.Journal) (*TableOp, error) {
	columns, err := st.Columns(name)
	if err != nil {
		return nil, err
	}

	return &TableOp{
		Table:   core.Table{Name: name, Columns: columns},
		Store:   st,
		Journal: jnl,
	}, nil
}

// HasColumn reports whether the table declares column.
func (op *TableOp) HasColumn(column string) bool {
	for _, col := range op.Table.Columns {
		if col == column {
			return true
		}
	}
	return false
}

func (op *TableOp) Count() int {
	n, _ := op.Store.Len(op.Table.Name)
	return n
}

// Scan yields copies of the rows in insertion order.
func (op *TableOp) Scan() iter.Seq2[int, core.Row] {
	rows, err := op.Store.Scan(op.Table.Name)
	if err != nil {
		return func(yield func(int, core.Row) bool) {}
	}
	return rows
}

// ScanWithFilter yields only the rows accepted by filter.
func (op *TableOp) ScanWithFilter(filter store.Predicate) iter.Seq2[int, core.Row] {
	return func(yield func(int, core.Row) bool) {
		for i, row := range op.Scan() {
			if filter != nil && !filter(row) {
				continue
			}
			if !yield(i, row) {
				return
			}
		}
	}
}

func (op *TableOp) Insert(values []core.Value, identity core.Identity, message string) (journal.Transaction, error) {
	if err := op.Store.Insert(op.Table.Name, values); err != nil {
		return journal.Transaction{}, err
	}
	return op.record(identity, message), nil
}

// Update sets column to value on every row accepted by predicate. Nothing
// is recorded when no row matched.
func (op *TableOp) Update(predicate store.Predicate, column string, value core.Value, identity core.Identity, message string) (int, journal.Transaction, error) {
	n, err := op.Store.UpdateRows(op.Table.Name, predicate, column, value)
	if err != nil || n == 0 {
		return n, journal.Transaction{}, err
	}
	return n, op.record(identity, message), nil
}

// Delete removes every row accepted by predicate. Nothing is recorded when
// no row matched.
func (op *TableOp) Delete(predicate store.Predicate, identity core.Identity, message string) (int, journal.Transaction, error) {
	n, err := op.Store.DeleteRows(op.Table.Name, predicate)
	if err != nil || n == 0 {
		return n, journal.Transaction{}, err
	}
	return n, op.record(identity, message), nil
}

// AsOf returns the rows of the table as they were after transaction id.
func (op *TableOp) AsOf(id string) ([]core.Row, error) {
	if op.Journal == nil {
		return nil, ErrNoJournal
	}
	snapshot, err := op.Journal.TableAt(id, op.Table.Name)
	if err != nil {
		return nil, err
	}
	return snapshot.CoreRows(), nil
}

// record commits the current table state. A journal failure never undoes
// the store write; it is logged and the zero Transaction returned.
func (op *TableOp) record(identity core.Identity, message string) journal.Transaction {
	if op.Journal == nil {
		return journal.Transaction{}
	}

	table, rows, err := op.Store.Snapshot(op.Table.Name)
	if err != nil {
		log.Printf("journal: snapshot %s: %v", op.Table.Name, err)
		return journal.Transaction{}
	}

	txn, err := op.Journal.Record(identity, message, journal.NewSnapshot(table, rows))
	if err != nil {
		log.Printf("journal: record %s: %v", op.Table.Name, err)
		return journal.Transaction{}
	}

	return txn
}
