// Package MemDB provides an in-memory relational store driven by a small
// SQL dialect.
//
// Tables live in memory for the lifetime of the process. Every successful
// CREATE TABLE, INSERT, UPDATE or DELETE can optionally be recorded in a
// journal, an in-memory git history holding a snapshot of each changed
// table, so earlier states stay inspectable.
//
// # Quick Start
//
//	instance, _ := MemDB.OpenMemory(true)
//	engine := instance.Engine(core.Identity{Name: "App", Email: "app@example.com"})
//
//	engine.Execute("CREATE TABLE users (id, name)")
//	engine.Execute("INSERT INTO users VALUES (1, 'Alice')")
//
//	result, _ := engine.Execute("SELECT * FROM users")
//	result.Display()
//
// # Supported SQL
//
//   - CREATE TABLE name (col, ...)
//   - INSERT INTO name VALUES (literal, ...)
//   - SELECT cols | * | COUNT(*) FROM name with WHERE, GROUP BY, HAVING,
//     ORDER BY [ASC|DESC] and LIMIT
//   - SELECT ... FROM a JOIN b ON a.col = b.col, an inner equi-join
//   - UPDATE name SET col = literal WHERE col = literal
//   - DELETE FROM name WHERE col = literal
//
// Conditions are a single column = literal equality. Literals are integers
// or strings; quoted text is a string, a run of digits is an integer.
package MemDB
