// Package store holds the in-memory tables MemDB executes against.
//
// A Store maps table names to tables. Each table has a fixed column list and
// an insertion-ordered sequence of rows; every row carries exactly the
// table's columns.
//
//	s := store.New()
//	s.CreateTable("users", []string{"id", "name"})
//	s.Insert("users", []core.Value{core.IntValue(1), core.StringValue("Alice")})
//
//	rows, _ := s.Scan("users")
//	for _, row := range rows {
//	    // process row
//	}
//
//	fmt.Println(s.Render("users"))
//
// UpdateRows and DeleteRows take a Predicate and report how many rows they
// touched. There is no locking: the store is owned by a single caller.
package store
