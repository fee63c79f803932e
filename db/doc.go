// Package db provides the execution engine for MemDB.
//
// The Engine type is the main entry point for executing statements. It
// parses text (caching parsed statements), runs the statement against the
// store and returns a result.
//
// # Engine Usage
//
//	engine := db.NewEngine(store.New(), nil, identity)
//	result, err := engine.Execute("SELECT * FROM users WHERE name = 'Alice'")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display()
//
// # Result Types
//
// There are two result types:
//   - QueryResult: Returned by SELECT, with or without JOIN
//   - CommitResult: Returned by CREATE TABLE, INSERT, UPDATE and DELETE
//
// QueryResult carries the result rows and execution metrics. CommitResult
// carries counts of affected rows and, when a journal is attached, the
// transaction that recorded the change.
//
// # Scripts
//
// SplitStatements, ReadScript and Engine.ExecuteScript run multi-statement
// scripts loaded from local files, HTTP or S3. Engine.ExportTable writes a
// rendered table to a local file or S3.
package db
