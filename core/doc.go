// Package core provides core types used throughout MemDB.
//
// The package defines the Value and Row model, the Table shape, the Identity
// used to author journal entries, and the sentinel errors every layer wraps.
//
// # Values
//
// A Value is either an integer or a string. Literals are cast with
// CastLiteral:
//
//	core.CastLiteral(`"Alice"`) // StringValue("Alice")
//	core.CastLiteral("42")      // IntValue(42)
//	core.CastLiteral("active")  // StringValue("active")
//
// Equality is kind-sensitive, so IntValue(1) never equals StringValue("1").
//
// # Rows
//
// A Row keeps its columns in table order:
//
//	row := core.NewRow([]string{"id", "name"}, []core.Value{core.IntValue(1), core.StringValue("Alice")})
//	name, err := row.Get("name")
//
// # Errors
//
// Every failure is reported by wrapping one of ErrUnrecognizedStatement,
// ErrDuplicateTable, ErrUnknownTable, ErrColumnArityMismatch,
// ErrUnknownColumn or ErrTypeMismatch; match them with errors.Is.
package core
