// Package op provides table and catalog operations on top of the store.
//
// The op package sits between the execution engine (db/) and the table
// store (store/). Writes made through it are also recorded in the journal
// when one is attached.
//
// # TableOp
//
//	tableOp, err := op.GetTable("users", st, jnl)
//
//	for _, row := range tableOp.Scan() {
//	    // rows in insertion order
//	}
//	txn, err := tableOp.Insert(values, identity, "INSERT INTO users ...")
//	n, txn, err := tableOp.Delete(predicate, identity, "DELETE FROM users ...")
//	rows, err := tableOp.AsOf(txn.Id)
//
// # CatalogOp
//
//	catalog := op.GetCatalog(st, jnl)
//	names := catalog.TableNames()
//	history, err := catalog.History()
//
// # Architecture
//
//	Parser (sql/)
//	     ↓
//	Engine (db/)
//	     ↓
//	Operations (op/)     ← This package
//	     ↓                ↘
//	Store (store/)        Journal (journal/)
package op
